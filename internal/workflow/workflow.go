// Package workflow drives the closing sequence: audit the ledger, propose
// and selectively apply oracle corrections, then generate the report
// artifacts. A single Workflow serializes the whole flow; at most one
// oracle or generation request runs at a time.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/export"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/ledger"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/oracle"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/reports"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
)

// State is the current phase of the closing flow.
type State string

const (
	StateIdle          State = "idle"
	StateAuditing      State = "auditing"
	StateAuditComplete State = "audit_complete"
	StateProposing     State = "proposing_corrections"
	StateGenerating    State = "generating"
	StateReportsReady  State = "reports_ready"
)

var (
	// ErrRequestInFlight rejects a second audit, proposal or generation
	// while one is still running.
	ErrRequestInFlight = errors.New("workflow: another request is in flight")

	// ErrStaleLedger means the ledger changed while the oracle was working,
	// so the result was discarded.
	ErrStaleLedger = errors.New("workflow: ledger changed during request")

	// ErrInvalidState rejects an operation that is not legal in the current
	// phase, for example applying corrections before any were proposed.
	ErrInvalidState = errors.New("workflow: operation not allowed in current state")

	// ErrNoActionableFindings means no audit finding references a specific
	// transaction, so there is nothing for the correction oracle to fix.
	ErrNoActionableFindings = errors.New("workflow: no findings reference a transaction")

	// ErrEmptyLedger rejects starting an audit over zero transactions.
	ErrEmptyLedger = errors.New("workflow: ledger is empty")

	// ErrNothingSelected rejects applying corrections with an empty
	// selection.
	ErrNothingSelected = errors.New("workflow: no corrections selected")
)

// auditFailedMessage is the synthetic finding shown when the audit oracle
// itself errors. The failure degrades to a visible finding instead of
// blocking the flow.
const auditFailedMessage = "A auditoria da IA falhou. Tente novamente ou prossiga com a revisão manual."

// Workflow owns the state machine. All fields behind mu; oracle calls run
// with the mutex released and their results are discarded when the ledger
// version moved underneath them.
type Workflow struct {
	oracle  oracle.Client
	store   *ledger.Store
	tax     taxonomy.Taxonomy
	bsCfg   reports.BalanceSheetConfig
	company *domain.CompanyContext
	log     zerolog.Logger
	now     func() time.Time

	mu             sync.Mutex
	state          State
	busy           bool
	auditedVersion uint64
	findings       []domain.AuditFinding
	proposals      []domain.ProposedChange
	selected       map[string]bool
	artifacts      []export.Artifact
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithCompany attaches the company context forwarded to every oracle call.
func WithCompany(c *domain.CompanyContext) Option {
	return func(w *Workflow) { w.company = c }
}

// WithBalanceSheetConfig overrides the fixed balance sheet figures used
// during report generation.
func WithBalanceSheetConfig(cfg reports.BalanceSheetConfig) Option {
	return func(w *Workflow) { w.bsCfg = cfg }
}

// WithClock injects the time source. Tests use it to pin artifact filenames.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// New wires the workflow to the store. Any ledger change resets the flow to
// idle: findings, proposals and artifacts describe a ledger that no longer
// exists.
func New(client oracle.Client, store *ledger.Store, tax taxonomy.Taxonomy, log zerolog.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		oracle:   client,
		store:    store,
		tax:      tax,
		bsCfg:    reports.DefaultBalanceSheetConfig(),
		log:      log,
		now:      time.Now,
		state:    StateIdle,
		selected: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	store.OnChange(w.onLedgerChanged)
	return w
}

// onLedgerChanged invalidates every derived result. Runs outside the store
// lock, so re-locking the workflow here is safe.
func (w *Workflow) onLedgerChanged(version uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateIdle && len(w.findings) == 0 && len(w.artifacts) == 0 {
		return
	}
	w.log.Debug().Uint64("ledger_version", version).Str("state", string(w.state)).Msg("ledger changed, resetting flow")
	w.resetLocked()
}

// resetLocked drops all derived state. Caller holds mu. An in-flight oracle
// request is not interrupted; its result is discarded by the version check
// when it returns.
func (w *Workflow) resetLocked() {
	w.state = StateIdle
	w.findings = nil
	w.proposals = nil
	w.selected = make(map[string]bool)
	w.artifacts = nil
	w.auditedVersion = 0
}

// Snapshot is a consistent view of the flow for the API layer.
type Snapshot struct {
	State         State                   `json:"state"`
	LedgerVersion uint64                  `json:"ledgerVersion"`
	Findings      []domain.AuditFinding   `json:"findings"`
	Proposals     []domain.ProposedChange `json:"proposals"`
	Selected      []string                `json:"selected"`
}

// Snapshot returns a copy of the current flow state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		State:         w.state,
		LedgerVersion: w.store.Version(),
		Findings:      append([]domain.AuditFinding(nil), w.findings...),
		Proposals:     append([]domain.ProposedChange(nil), w.proposals...),
	}
	for id, on := range w.selected {
		if on {
			snap.Selected = append(snap.Selected, id)
		}
	}
	return snap
}

// State returns the current phase.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// RunAudit sends the current ledger to the audit oracle. Legal from idle,
// audit_complete and reports_ready; a failing oracle degrades to a single
// synthetic error finding rather than an error return, so the accountant
// always reaches the findings screen.
func (w *Workflow) RunAudit(ctx context.Context) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrRequestInFlight
	}
	switch w.state {
	case StateIdle, StateAuditComplete, StateReportsReady:
	default:
		w.mu.Unlock()
		return fmt.Errorf("RunAudit from %s: %w", w.state, ErrInvalidState)
	}
	if w.store.Len() == 0 {
		w.mu.Unlock()
		return ErrEmptyLedger
	}

	version := w.store.Version()
	txs := w.store.SortedByDate()
	w.busy = true
	w.resetLocked()
	w.state = StateAuditing
	w.mu.Unlock()

	findings, err := w.oracle.AuditTrialBalance(ctx, txs, w.company)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if ctx.Err() != nil {
		w.state = StateIdle
		return fmt.Errorf("RunAudit: %w", ctx.Err())
	}
	if w.store.Version() != version {
		w.resetLocked()
		return ErrStaleLedger
	}
	if err != nil {
		w.log.Warn().Err(err).Msg("audit oracle failed, degrading to synthetic finding")
		findings = []domain.AuditFinding{{Type: domain.FindingError, Message: auditFailedMessage}}
	}

	w.findings = findings
	w.auditedVersion = version
	w.state = StateAuditComplete
	w.log.Info().Int("findings", len(findings)).Uint64("ledger_version", version).Msg("audit complete")
	return nil
}

// ProposeCorrections asks the oracle for fixes to the findings that point at
// a transaction. On success the flow moves to proposing_corrections with
// every proposal selected; on failure it falls back to audit_complete.
func (w *Workflow) ProposeCorrections(ctx context.Context) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrRequestInFlight
	}
	if w.state != StateAuditComplete {
		w.mu.Unlock()
		return fmt.Errorf("ProposeCorrections from %s: %w", w.state, ErrInvalidState)
	}

	var actionable []domain.AuditFinding
	for _, f := range w.findings {
		if f.TransactionID != "" {
			actionable = append(actionable, f)
		}
	}
	if len(actionable) == 0 {
		w.mu.Unlock()
		return ErrNoActionableFindings
	}

	version := w.auditedVersion
	txs := w.store.SortedByDate()
	w.busy = true
	w.state = StateProposing
	w.mu.Unlock()

	proposals, err := w.oracle.ProposeCorrections(ctx, txs, actionable, w.company)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if w.store.Version() != version {
		w.resetLocked()
		return ErrStaleLedger
	}
	if ctx.Err() != nil {
		w.state = StateAuditComplete
		return fmt.Errorf("ProposeCorrections: %w", ctx.Err())
	}
	if err != nil {
		w.state = StateAuditComplete
		return fmt.Errorf("ProposeCorrections: %w", err)
	}

	w.proposals = proposals
	w.selected = make(map[string]bool, len(proposals))
	for _, p := range proposals {
		w.selected[p.TransactionID] = true
	}
	w.log.Info().Int("proposals", len(proposals)).Msg("corrections proposed")
	return nil
}

// ToggleSelection flips whether the proposal for the given transaction will
// be applied.
func (w *Workflow) ToggleSelection(transactionID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateProposing {
		return fmt.Errorf("ToggleSelection from %s: %w", w.state, ErrInvalidState)
	}
	for _, p := range w.proposals {
		if p.TransactionID == transactionID {
			w.selected[transactionID] = !w.selected[transactionID]
			return nil
		}
	}
	return fmt.Errorf("ToggleSelection: no proposal for transaction %q", transactionID)
}

// ToggleAll selects every proposal, or clears the selection when everything
// is already selected.
func (w *Workflow) ToggleAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateProposing {
		return fmt.Errorf("ToggleAll from %s: %w", w.state, ErrInvalidState)
	}

	all := true
	for _, p := range w.proposals {
		if !w.selected[p.TransactionID] {
			all = false
			break
		}
	}
	w.selected = make(map[string]bool, len(w.proposals))
	if !all {
		for _, p := range w.proposals {
			w.selected[p.TransactionID] = true
		}
	}
	return nil
}

// CancelProposals discards the proposals and returns to the findings screen.
func (w *Workflow) CancelProposals() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateProposing {
		return fmt.Errorf("CancelProposals from %s: %w", w.state, ErrInvalidState)
	}
	w.proposals = nil
	w.selected = make(map[string]bool)
	w.state = StateAuditComplete
	return nil
}

// ApplyCorrections patches the selected transactions in the ledger and
// reports how many were applied. The resulting ledger change resets the
// whole flow to idle, forcing a fresh audit over the corrected data.
func (w *Workflow) ApplyCorrections() (int, error) {
	type patch struct {
		id      string
		updates domain.Patch
	}

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return 0, ErrRequestInFlight
	}
	if w.state != StateProposing {
		w.mu.Unlock()
		return 0, fmt.Errorf("ApplyCorrections from %s: %w", w.state, ErrInvalidState)
	}
	var patches []patch
	for _, p := range w.proposals {
		if w.selected[p.TransactionID] {
			patches = append(patches, patch{id: p.TransactionID, updates: p.Updates})
		}
	}
	// Release before touching the store: each update fires the change hook,
	// which takes this mutex again.
	w.mu.Unlock()

	if len(patches) == 0 {
		return 0, ErrNothingSelected
	}

	applied := 0
	for _, p := range patches {
		if w.store.Update(p.id, p.updates) {
			applied++
		}
	}
	w.log.Info().Int("applied", applied).Int("selected", len(patches)).Msg("corrections applied")
	return applied, nil
}

// GenerateReports renders the full report catalog from the audited ledger.
// Legal only from audit_complete; on success the artifacts are retained and
// the flow reaches reports_ready.
func (w *Workflow) GenerateReports(ctx context.Context) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrRequestInFlight
	}
	if w.state != StateAuditComplete {
		w.mu.Unlock()
		return fmt.Errorf("GenerateReports from %s: %w", w.state, ErrInvalidState)
	}

	version := w.auditedVersion
	txs := w.store.SortedByDate()
	w.busy = true
	w.state = StateGenerating
	w.mu.Unlock()

	var artifacts []export.Artifact
	now := w.now()
	var genErr error
	for _, spec := range export.Catalog() {
		if ctx.Err() != nil {
			genErr = ctx.Err()
			break
		}
		a, err := export.Generate(spec, txs, w.tax, w.bsCfg, now)
		if err != nil {
			genErr = err
			break
		}
		artifacts = append(artifacts, a)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if w.store.Version() != version {
		w.resetLocked()
		return ErrStaleLedger
	}
	if genErr != nil {
		w.state = StateAuditComplete
		return fmt.Errorf("GenerateReports: %w", genErr)
	}

	w.artifacts = artifacts
	w.state = StateReportsReady
	w.log.Info().Int("artifacts", len(artifacts)).Msg("reports ready")
	return nil
}

// Artifacts returns the generated report files. Only valid in reports_ready.
func (w *Workflow) Artifacts() ([]export.Artifact, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateReportsReady {
		return nil, fmt.Errorf("Artifacts from %s: %w", w.state, ErrInvalidState)
	}
	return append([]export.Artifact(nil), w.artifacts...), nil
}

// Artifact returns one generated report by type. Only valid in reports_ready.
func (w *Workflow) Artifact(t export.ReportType) (export.Artifact, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateReportsReady {
		return export.Artifact{}, fmt.Errorf("Artifact from %s: %w", w.state, ErrInvalidState)
	}
	for _, a := range w.artifacts {
		if a.Type == t {
			return a, nil
		}
	}
	return export.Artifact{}, fmt.Errorf("Artifact: no artifact of type %q", t)
}
