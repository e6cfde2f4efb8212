package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/export"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/ingest"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/logger"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/oracle"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/reports"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("cli")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		runProcess(log)
	case "audit":
		runAudit(log)
	case "close":
		runClose(log)
	case "accounts":
		runAccounts()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Contador AI CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  process   Classify bank statement files into accounting entries")
	fmt.Println("  audit     Classify statements and run the trial balance audit")
	fmt.Println("  close     Process statements and write the full report set")
	fmt.Println("  accounts  Print the chart of accounts")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runProcess(log zerolog.Logger) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	files := fs.String("files", "", "Comma-separated statement files (PDF, OFX, CSV or TXT)")
	companyName := fs.String("company", "", "Company name forwarded to the oracle")
	companyCNPJ := fs.String("cnpj", "", "Company CNPJ forwarded to the oracle")
	knownAccounts := fs.String("known-accounts", "", "Free-text list of known accounts, PIX keys and group companies")
	fs.Parse(os.Args[2:])

	txs := processFiles(log, *files, *companyName, *companyCNPJ, *knownAccounts)

	fmt.Print(export.CSV(export.TransactionsTable(txs)))
	fmt.Println()
}

func runClose(log zerolog.Logger) {
	fs := flag.NewFlagSet("close", flag.ExitOnError)
	files := fs.String("files", "", "Comma-separated statement files (PDF, OFX, CSV or TXT)")
	outDir := fs.String("out", "relatorios", "Output directory for the generated reports")
	companyName := fs.String("company", "", "Company name forwarded to the oracle")
	companyCNPJ := fs.String("cnpj", "", "Company CNPJ forwarded to the oracle")
	knownAccounts := fs.String("known-accounts", "", "Free-text list of known accounts, PIX keys and group companies")
	fs.Parse(os.Args[2:])

	txs := processFiles(log, *files, *companyName, *companyCNPJ, *knownAccounts)

	tb := reports.BuildTrialBalance(txs)
	if tb.Balanced() {
		log.Info().Float64("total_debit", tb.TotalDebit).Float64("total_credit", tb.TotalCredit).Msg("Trial balance is balanced")
	} else {
		log.Warn().Float64("difference", tb.Difference()).Msg("Trial balance is not balanced")
	}

	artifacts, err := export.GenerateAll(txs, taxonomy.Default(), reports.DefaultBalanceSheetConfig(), time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("Report generation failed")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", *outDir).Msg("Failed to create output directory")
	}
	for _, a := range artifacts {
		path := filepath.Join(*outDir, a.Filename)
		if err := os.WriteFile(path, a.Content, 0o644); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to write report")
		}
		fmt.Println(path)
	}
}

func runAccounts() {
	for _, account := range taxonomy.Default().Accounts() {
		fmt.Println(account)
	}
}

func runAudit(log zerolog.Logger) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	files := fs.String("files", "", "Comma-separated statement files (PDF, OFX, CSV or TXT)")
	companyName := fs.String("company", "", "Company name forwarded to the oracle")
	companyCNPJ := fs.String("cnpj", "", "Company CNPJ forwarded to the oracle")
	knownAccounts := fs.String("known-accounts", "", "Free-text list of known accounts, PIX keys and group companies")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	client := newOracle(ctx, log)
	company := companyContext(*companyName, *companyCNPJ, *knownAccounts)
	txs := classify(ctx, log, client, *files, company)

	findings, err := client.AuditTrialBalance(ctx, txs, company)
	if err != nil {
		log.Fatal().Err(err).Msg("Audit failed")
	}

	if len(findings) == 0 {
		fmt.Println("Nenhum apontamento: lançamentos consistentes.")
		return
	}
	for _, f := range findings {
		if f.TransactionID != "" {
			fmt.Printf("[%s] %s (lançamento %s)\n", f.Type, f.Message, f.TransactionID)
		} else {
			fmt.Printf("[%s] %s\n", f.Type, f.Message)
		}
	}
}

// processFiles reads and classifies the given statement files, exiting on
// fatal errors.
func processFiles(log zerolog.Logger, files, companyName, companyCNPJ, knownAccounts string) []domain.Transaction {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	client := newOracle(ctx, log)
	return classify(ctx, log, client, files, companyContext(companyName, companyCNPJ, knownAccounts))
}

func newOracle(ctx context.Context, log zerolog.Logger) *oracle.Gemini {
	client, err := oracle.NewGemini(ctx, taxonomy.Default(), logger.New("oracle"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create oracle client")
	}
	return client
}

func companyContext(name, cnpj, knownAccounts string) *domain.CompanyContext {
	if name == "" && cnpj == "" && knownAccounts == "" {
		return nil
	}
	return &domain.CompanyContext{Name: name, CNPJ: cnpj, KnownAccounts: knownAccounts}
}

func classify(ctx context.Context, log zerolog.Logger, client oracle.Client, files string, company *domain.CompanyContext) []domain.Transaction {
	if files == "" {
		log.Fatal().Msg("Error: -files is required")
	}

	var docs []domain.StatementDocument
	for _, path := range strings.Split(files, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to read statement file")
		}
		docs = append(docs, domain.StatementDocument{
			Name:     filepath.Base(path),
			MIMEType: mimeTypeFor(path),
			Data:     data,
		})
	}

	result, err := ingest.NewService(client, logger.New("ingest")).ProcessStatements(ctx, docs, company)
	if err != nil {
		log.Fatal().Err(err).Msg("Statement processing failed")
	}
	for _, f := range result.Failures {
		log.Warn().Str("document", f.Document).Str("reason", f.Message).Msg("Document skipped")
	}

	log.Info().
		Int("transactions", len(result.Transactions)).
		Str("bank", result.Bank).
		Float64("final_balance", result.FinalBalance).
		Msg("Statements processed")

	return result.Transactions
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv"
	case ".ofx":
		return "application/x-ofx"
	default:
		return "text/plain"
	}
}
