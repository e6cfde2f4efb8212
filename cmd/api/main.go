package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/api/handlers"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/api/middleware"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/ingest"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/ledger"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/logger"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/oracle"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/reports"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/workflow"
)

func main() {
	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	var (
		port          = flag.String("port", envOr("PORT", "8080"), "HTTP server port")
		companyName   = flag.String("company-name", os.Getenv("COMPANY_NAME"), "Company name forwarded to the oracle (or set COMPANY_NAME)")
		companyCNPJ   = flag.String("company-cnpj", os.Getenv("COMPANY_CNPJ"), "Company CNPJ forwarded to the oracle (or set COMPANY_CNPJ)")
		knownAccounts = flag.String("known-accounts", os.Getenv("COMPANY_KNOWN_ACCOUNTS"), "Free-text list of known accounts, PIX keys and group companies (or set COMPANY_KNOWN_ACCOUNTS)")
	)
	flag.Parse()

	log := logger.New("api")

	if os.Getenv("GEMINI_API_KEY") == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set - oracle calls will fail")
	}

	ctx := context.Background()
	tax := taxonomy.Default()

	client, err := oracle.NewGemini(ctx, tax, logger.New("oracle"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create oracle client")
	}

	var company *domain.CompanyContext
	if *companyName != "" || *companyCNPJ != "" || *knownAccounts != "" {
		company = &domain.CompanyContext{Name: *companyName, CNPJ: *companyCNPJ, KnownAccounts: *knownAccounts}
	}

	store := ledger.NewStore()
	ingestSvc := ingest.NewService(client, logger.New("ingest"))
	bsCfg := reports.DefaultBalanceSheetConfig()
	flow := workflow.New(client, store, tax, logger.New("workflow"),
		workflow.WithCompany(company),
		workflow.WithBalanceSheetConfig(bsCfg))

	transactionsHandler := handlers.NewTransactionsHandler(store, tax, log)
	statementsHandler := handlers.NewStatementsHandler(ingestSvc, store, company, log)
	reportsHandler := handlers.NewReportsHandler(store, tax, bsCfg)
	closingHandler := handlers.NewClosingHandler(flow, log)

	mux := http.NewServeMux()

	// Ledger endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodPatch:
			transactionsHandler.Update(w, r, id)
		case http.MethodDelete:
			transactionsHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Statement ingestion
	mux.HandleFunc("/api/statements/process", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.Process(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Chart of accounts and live financial views
	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reportsHandler.Accounts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/reports/trial-balance", requireGet(reportsHandler.TrialBalance))
	mux.HandleFunc("/api/reports/dre", requireGet(reportsHandler.DRE))
	mux.HandleFunc("/api/reports/balance-sheet", requireGet(reportsHandler.BalanceSheet))

	// Closing flow
	mux.HandleFunc("/api/closing", requireGet(closingHandler.Status))

	mux.HandleFunc("/api/closing/audit", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			closingHandler.RunAudit(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/closing/corrections", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			closingHandler.ProposeCorrections(w, r)
		case http.MethodDelete:
			closingHandler.CancelCorrections(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/closing/corrections/toggle", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			closingHandler.ToggleCorrection(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/closing/corrections/toggle-all", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			closingHandler.ToggleAllCorrections(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/closing/corrections/apply", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			closingHandler.ApplyCorrections(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/closing/reports", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			closingHandler.ListReports(w, r)
		case http.MethodPost:
			closingHandler.GenerateReports(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/closing/reports/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		reportType := strings.TrimPrefix(r.URL.Path, "/api/closing/reports/")
		if reportType == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Report type is required")
			return
		}
		closingHandler.DownloadReport(w, r, reportType)
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Server stopped")
}

func requireGet(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
