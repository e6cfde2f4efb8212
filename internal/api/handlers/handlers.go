// Package handlers holds the HTTP handlers of the workbench API: ledger
// CRUD, statement ingestion, the three live financial views and the closing
// flow.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/api/middleware"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/export"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/ingest"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/ledger"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/oracle"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/reports"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/workflow"
)

// maxStatementUpload bounds a single multipart ingestion request.
const maxStatementUpload = 32 << 20 // 32 MiB

// TransactionsHandler serves ledger CRUD.
type TransactionsHandler struct {
	store *ledger.Store
	tax   taxonomy.Taxonomy
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store *ledger.Store, tax taxonomy.Taxonomy, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: store, tax: tax, log: log}
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	txs := h.store.SortedByDate()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions":  txs,
		"count":         len(txs),
		"ledgerVersion": h.store.Version(),
	})
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var tx domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if tx.Description == "" {
		middleware.WriteError(w, http.StatusBadRequest, "description is required")
		return
	}
	if tx.Value == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "value must be non-zero")
		return
	}
	if tx.Classification != "" && !h.tax.Contains(tx.Classification) {
		middleware.WriteError(w, http.StatusBadRequest, "classification is not in the chart of accounts")
		return
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	h.store.Add(tx)
	h.log.Info().Str("transaction_id", tx.ID).Msg("Transaction created")
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// Update handles PATCH /api/transactions/{id}
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var patch domain.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if patch.IsZero() {
		middleware.WriteError(w, http.StatusBadRequest, "patch is empty")
		return
	}
	if patch.Value != nil && *patch.Value == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "value must be non-zero")
		return
	}
	if patch.Classification != nil && !h.tax.Contains(*patch.Classification) {
		middleware.WriteError(w, http.StatusBadRequest, "classification is not in the chart of accounts")
		return
	}

	if !h.store.Update(id, patch) {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	tx, _ := h.store.Get(id)
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if !h.store.Remove(id) {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatementsHandler serves statement ingestion.
type StatementsHandler struct {
	svc     *ingest.Service
	store   *ledger.Store
	company *domain.CompanyContext
	log     zerolog.Logger
}

// NewStatementsHandler creates a new statements handler.
func NewStatementsHandler(svc *ingest.Service, store *ledger.Store, company *domain.CompanyContext, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{svc: svc, store: store, company: company, log: log}
}

// Process handles POST /api/statements/process. It accepts one or more
// multipart files under the "files" field, runs them through the
// classification oracle and appends the resulting entries to the ledger.
func (h *StatementsHandler) Process(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxStatementUpload); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "At least one file is required")
		return
	}

	docs := make([]domain.StatementDocument, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		docs = append(docs, domain.StatementDocument{
			Name:     fh.Filename,
			MIMEType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	result, err := h.svc.ProcessStatements(r.Context(), docs, h.company)
	if err != nil {
		h.log.Error().Err(err).Int("documents", len(docs)).Msg("Statement processing failed")
		middleware.WriteError(w, oracleErrorStatus(err), err.Error())
		return
	}

	for _, tx := range result.Transactions {
		h.store.Add(tx)
	}

	h.log.Info().
		Int("documents", len(docs)).
		Int("transactions", len(result.Transactions)).
		Int("failures", len(result.Failures)).
		Str("bank", result.Bank).
		Msg("Statements processed")

	middleware.WriteJSON(w, http.StatusOK, result)
}

// ReportsHandler serves the live financial views derived from the ledger.
type ReportsHandler struct {
	store *ledger.Store
	tax   taxonomy.Taxonomy
	cfg   reports.BalanceSheetConfig
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(store *ledger.Store, tax taxonomy.Taxonomy, cfg reports.BalanceSheetConfig) *ReportsHandler {
	return &ReportsHandler{store: store, tax: tax, cfg: cfg}
}

// TrialBalance handles GET /api/reports/trial-balance. With ?format=html it
// returns a printable document instead of JSON.
func (h *ReportsHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	tb := reports.BuildTrialBalance(h.store.All())
	if wantsHTML(r) {
		writeHTML(w, export.RenderTableHTML("Balancete de Verificação", "Débitos e créditos agregados por conta.", export.TrialBalanceTable(tb), time.Now()))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trialBalance": tb,
		"difference":   tb.Difference(),
		"balanced":     tb.Balanced(),
	})
}

// DRE handles GET /api/reports/dre. With ?format=html it returns a printable
// document instead of JSON.
func (h *ReportsHandler) DRE(w http.ResponseWriter, r *http.Request) {
	dre := reports.BuildDRE(h.store.All(), h.tax)
	if wantsHTML(r) {
		writeHTML(w, export.RenderTableHTML("DRE - Demonstração do Resultado", "Visão dos lucros e perdas do período.", export.DRETable(dre), time.Now()))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dre)
}

// BalanceSheet handles GET /api/reports/balance-sheet. With ?format=html it
// returns a printable document instead of JSON.
func (h *ReportsHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	bs := reports.BuildBalanceSheet(h.store.All(), h.tax, h.cfg)
	if wantsHTML(r) {
		writeHTML(w, export.RenderBalanceSheetHTML("Balanço Patrimonial", "Foto da saúde financeira da empresa.", bs, time.Now()))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, bs)
}

func wantsHTML(r *http.Request) bool {
	return r.URL.Query().Get("format") == "html"
}

func writeHTML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, doc)
}

// Accounts handles GET /api/accounts
func (h *ReportsHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.tax.Accounts()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// ClosingHandler serves the audit and report generation flow.
type ClosingHandler struct {
	flow *workflow.Workflow
	log  zerolog.Logger
}

// NewClosingHandler creates a new closing handler.
func NewClosingHandler(flow *workflow.Workflow, log zerolog.Logger) *ClosingHandler {
	return &ClosingHandler{flow: flow, log: log}
}

// Status handles GET /api/closing
func (h *ClosingHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.flow.Snapshot())
}

// RunAudit handles POST /api/closing/audit
func (h *ClosingHandler) RunAudit(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.RunAudit(r.Context()); err != nil {
		h.writeFlowError(w, err, "Audit failed")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.flow.Snapshot())
}

// ProposeCorrections handles POST /api/closing/corrections
func (h *ClosingHandler) ProposeCorrections(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.ProposeCorrections(r.Context()); err != nil {
		h.writeFlowError(w, err, "Correction proposal failed")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.flow.Snapshot())
}

// ToggleCorrection handles POST /api/closing/corrections/toggle
func (h *ClosingHandler) ToggleCorrection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransactionID string `json:"transactionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "transactionId is required")
		return
	}

	if err := h.flow.ToggleSelection(req.TransactionID); err != nil {
		h.writeFlowError(w, err, "Toggle failed")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.flow.Snapshot())
}

// ToggleAllCorrections handles POST /api/closing/corrections/toggle-all
func (h *ClosingHandler) ToggleAllCorrections(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.ToggleAll(); err != nil {
		h.writeFlowError(w, err, "Toggle failed")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.flow.Snapshot())
}

// ApplyCorrections handles POST /api/closing/corrections/apply
func (h *ClosingHandler) ApplyCorrections(w http.ResponseWriter, r *http.Request) {
	applied, err := h.flow.ApplyCorrections()
	if err != nil {
		h.writeFlowError(w, err, "Apply failed")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"applied": applied,
		"state":   h.flow.State(),
	})
}

// CancelCorrections handles DELETE /api/closing/corrections
func (h *ClosingHandler) CancelCorrections(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.CancelProposals(); err != nil {
		h.writeFlowError(w, err, "Cancel failed")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.flow.Snapshot())
}

// GenerateReports handles POST /api/closing/reports
func (h *ClosingHandler) GenerateReports(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.GenerateReports(r.Context()); err != nil {
		h.writeFlowError(w, err, "Report generation failed")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"state":   h.flow.State(),
		"catalog": export.Catalog(),
	})
}

// ListReports handles GET /api/closing/reports
func (h *ClosingHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.flow.Artifacts()
	if err != nil {
		h.writeFlowError(w, err, "Reports unavailable")
		return
	}

	out := make([]map[string]string, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, map[string]string{
			"type":        string(a.Type),
			"filename":    a.Filename,
			"contentType": a.ContentType,
		})
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": out,
		"count":   len(out),
	})
}

// DownloadReport handles GET /api/closing/reports/{type}
func (h *ClosingHandler) DownloadReport(w http.ResponseWriter, r *http.Request, reportType string) {
	a, err := h.flow.Artifact(export.ReportType(reportType))
	if err != nil {
		h.writeFlowError(w, err, "Report not found")
		return
	}

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+a.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(a.Content)
}

func (h *ClosingHandler) writeFlowError(w http.ResponseWriter, err error, context string) {
	h.log.Warn().Err(err).Msg(context)
	middleware.WriteError(w, flowErrorStatus(err), err.Error())
}

// flowErrorStatus maps workflow errors onto HTTP statuses.
func flowErrorStatus(err error) int {
	switch {
	case errors.Is(err, workflow.ErrRequestInFlight),
		errors.Is(err, workflow.ErrStaleLedger),
		errors.Is(err, workflow.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrNoActionableFindings),
		errors.Is(err, workflow.ErrEmptyLedger),
		errors.Is(err, workflow.ErrNothingSelected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// oracleErrorStatus maps ingestion errors onto HTTP statuses.
func oracleErrorStatus(err error) int {
	var validation *oracle.ValidationError
	var empty *oracle.EmptyResultError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &empty):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
