package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/export"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/ledger"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/oracle"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
)

type fakeOracle struct {
	findings   []domain.AuditFinding
	auditErr   error
	proposals  []domain.ProposedChange
	proposeErr error

	// onAudit runs inside AuditTrialBalance, before returning. Tests use it
	// to mutate the ledger mid-request or to block until released.
	onAudit func()
}

var _ oracle.Client = (*fakeOracle)(nil)

func (f *fakeOracle) ProcessStatement(context.Context, domain.StatementDocument, *domain.CompanyContext) (*domain.StatementResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeOracle) AuditTrialBalance(ctx context.Context, txs []domain.Transaction, company *domain.CompanyContext) ([]domain.AuditFinding, error) {
	if f.onAudit != nil {
		f.onAudit()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.findings, f.auditErr
}

func (f *fakeOracle) ProposeCorrections(ctx context.Context, txs []domain.Transaction, findings []domain.AuditFinding, company *domain.CompanyContext) ([]domain.ProposedChange, error) {
	return f.proposals, f.proposeErr
}

func seededStore(t *testing.T) *ledger.Store {
	t.Helper()
	s := ledger.NewStore()
	s.Add(domain.Transaction{ID: "t1", Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Description: "Recebimento NF 101", Value: 5000, Classification: "Vendas de Produtos"})
	s.Add(domain.Transaction{ID: "t2", Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), Description: "Folha de pagamento", Value: -1200, Classification: "Aluguel"})
	return s
}

func newWorkflow(t *testing.T, fake *fakeOracle, store *ledger.Store) *Workflow {
	t.Helper()
	return New(fake, store, taxonomy.Default(), zerolog.Nop(),
		WithClock(func() time.Time { return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC) }))
}

func TestRunAuditStoresFindings(t *testing.T) {
	fake := &fakeOracle{findings: []domain.AuditFinding{
		{Type: domain.FindingWarning, Message: "Aluguel incomum para o período", TransactionID: "t2"},
	}}
	w := newWorkflow(t, fake, seededStore(t))

	require.NoError(t, w.RunAudit(context.Background()))

	snap := w.Snapshot()
	assert.Equal(t, StateAuditComplete, snap.State)
	require.Len(t, snap.Findings, 1)
	assert.Equal(t, "t2", snap.Findings[0].TransactionID)
}

func TestRunAuditEmptyLedger(t *testing.T) {
	w := newWorkflow(t, &fakeOracle{}, ledger.NewStore())
	err := w.RunAudit(context.Background())
	assert.ErrorIs(t, err, ErrEmptyLedger)
	assert.Equal(t, StateIdle, w.State())
}

func TestRunAuditOracleFailureDegradesToFinding(t *testing.T) {
	fake := &fakeOracle{auditErr: &oracle.TransportError{Op: "AuditTrialBalance", Err: errors.New("timeout")}}
	w := newWorkflow(t, fake, seededStore(t))

	require.NoError(t, w.RunAudit(context.Background()))

	snap := w.Snapshot()
	assert.Equal(t, StateAuditComplete, snap.State)
	require.Len(t, snap.Findings, 1)
	assert.Equal(t, domain.FindingError, snap.Findings[0].Type)
	assert.Empty(t, snap.Findings[0].TransactionID)
}

func TestRunAuditStaleLedgerDiscardsResult(t *testing.T) {
	store := seededStore(t)
	fake := &fakeOracle{findings: []domain.AuditFinding{{Type: domain.FindingError, Message: "x"}}}
	fake.onAudit = func() {
		store.Add(domain.Transaction{ID: "t3", Value: 10, Classification: "Aluguel"})
	}
	w := newWorkflow(t, fake, store)

	err := w.RunAudit(context.Background())
	assert.ErrorIs(t, err, ErrStaleLedger)

	snap := w.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Findings)
}

func TestRunAuditRejectsConcurrentRequest(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	fake := &fakeOracle{onAudit: func() {
		close(entered)
		<-release
	}}
	w := newWorkflow(t, fake, seededStore(t))

	done := make(chan error, 1)
	go func() { done <- w.RunAudit(context.Background()) }()
	<-entered

	assert.ErrorIs(t, w.RunAudit(context.Background()), ErrRequestInFlight)
	assert.ErrorIs(t, w.GenerateReports(context.Background()), ErrRequestInFlight)

	close(release)
	require.NoError(t, <-done)
}

func TestRunAuditCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakeOracle{onAudit: cancel}
	w := newWorkflow(t, fake, seededStore(t))

	err := w.RunAudit(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateIdle, w.State())
}

func auditedWorkflow(t *testing.T, fake *fakeOracle, store *ledger.Store) *Workflow {
	t.Helper()
	w := newWorkflow(t, fake, store)
	require.NoError(t, w.RunAudit(context.Background()))
	require.Equal(t, StateAuditComplete, w.State())
	return w
}

func TestProposeCorrectionsRequiresActionableFindings(t *testing.T) {
	fake := &fakeOracle{findings: []domain.AuditFinding{
		{Type: domain.FindingWarning, Message: "balanço desequilibrado"},
	}}
	w := auditedWorkflow(t, fake, seededStore(t))

	err := w.ProposeCorrections(context.Background())
	assert.ErrorIs(t, err, ErrNoActionableFindings)
	assert.Equal(t, StateAuditComplete, w.State())
}

func TestProposeCorrectionsSelectsEverything(t *testing.T) {
	cls := "Vendas de Produtos"
	fake := &fakeOracle{
		findings: []domain.AuditFinding{{Type: domain.FindingError, Message: "conta errada", TransactionID: "t2"}},
		proposals: []domain.ProposedChange{
			{TransactionID: "t2", Reason: "reclassificar", Updates: domain.Patch{Classification: &cls}},
		},
	}
	w := auditedWorkflow(t, fake, seededStore(t))

	require.NoError(t, w.ProposeCorrections(context.Background()))

	snap := w.Snapshot()
	assert.Equal(t, StateProposing, snap.State)
	require.Len(t, snap.Proposals, 1)
	assert.Equal(t, []string{"t2"}, snap.Selected)
}

func TestProposeCorrectionsFailureFallsBack(t *testing.T) {
	fake := &fakeOracle{
		findings:   []domain.AuditFinding{{Type: domain.FindingError, Message: "x", TransactionID: "t1"}},
		proposeErr: &oracle.EmptyResultError{Op: "ProposeCorrections"},
	}
	w := auditedWorkflow(t, fake, seededStore(t))

	err := w.ProposeCorrections(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateAuditComplete, w.State())
	assert.Empty(t, w.Snapshot().Proposals)
}

func proposedWorkflow(t *testing.T) (*Workflow, *ledger.Store) {
	t.Helper()
	store := seededStore(t)
	cls := "Vendas de Produtos"
	desc := "Recebimento NF 102"
	fake := &fakeOracle{
		findings: []domain.AuditFinding{
			{Type: domain.FindingError, Message: "conta errada", TransactionID: "t1"},
			{Type: domain.FindingWarning, Message: "descrição vaga", TransactionID: "t2"},
		},
		proposals: []domain.ProposedChange{
			{TransactionID: "t1", Reason: "ajustar descrição", Updates: domain.Patch{Description: &desc}},
			{TransactionID: "t2", Reason: "reclassificar", Updates: domain.Patch{Classification: &cls}},
		},
	}
	w := auditedWorkflow(t, fake, store)
	require.NoError(t, w.ProposeCorrections(context.Background()))
	return w, store
}

func TestToggleSelection(t *testing.T) {
	w, _ := proposedWorkflow(t)

	require.NoError(t, w.ToggleSelection("t1"))
	assert.Equal(t, []string{"t2"}, w.Snapshot().Selected)

	require.NoError(t, w.ToggleSelection("t1"))
	assert.Len(t, w.Snapshot().Selected, 2)

	assert.Error(t, w.ToggleSelection("missing"))
}

func TestToggleAll(t *testing.T) {
	w, _ := proposedWorkflow(t)

	require.NoError(t, w.ToggleAll())
	assert.Empty(t, w.Snapshot().Selected)

	require.NoError(t, w.ToggleAll())
	assert.Len(t, w.Snapshot().Selected, 2)
}

func TestCancelProposals(t *testing.T) {
	w, _ := proposedWorkflow(t)

	require.NoError(t, w.CancelProposals())
	snap := w.Snapshot()
	assert.Equal(t, StateAuditComplete, snap.State)
	assert.Empty(t, snap.Proposals)
	assert.Len(t, snap.Findings, 2)
}

func TestApplyCorrectionsPatchesSelectedOnly(t *testing.T) {
	w, store := proposedWorkflow(t)
	require.NoError(t, w.ToggleSelection("t1"))

	applied, err := w.ApplyCorrections()
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	t1, _ := store.Get("t1")
	assert.Equal(t, "Recebimento NF 101", t1.Description, "deselected proposal must not apply")
	t2, _ := store.Get("t2")
	assert.Equal(t, "Vendas de Produtos", t2.Classification)

	// The ledger change resets the flow for a fresh audit.
	snap := w.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Findings)
	assert.Empty(t, snap.Proposals)
}

func TestApplyCorrectionsNothingSelected(t *testing.T) {
	w, _ := proposedWorkflow(t)
	require.NoError(t, w.ToggleAll())

	_, err := w.ApplyCorrections()
	assert.ErrorIs(t, err, ErrNothingSelected)
	assert.Equal(t, StateProposing, w.State())
}

func TestGenerateReportsProducesCatalog(t *testing.T) {
	fake := &fakeOracle{}
	w := auditedWorkflow(t, fake, seededStore(t))

	require.NoError(t, w.GenerateReports(context.Background()))
	assert.Equal(t, StateReportsReady, w.State())

	artifacts, err := w.Artifacts()
	require.NoError(t, err)
	assert.Len(t, artifacts, len(export.Catalog()))

	a, err := w.Artifact(export.ReportSPEDECD)
	require.NoError(t, err)
	assert.Equal(t, "SPED_ECD_2024-05-10.txt", a.Filename)

	_, err = w.Artifact(export.ReportType("PDF"))
	assert.Error(t, err)
}

func TestGenerateReportsRequiresAuditComplete(t *testing.T) {
	w := newWorkflow(t, &fakeOracle{}, seededStore(t))
	err := w.GenerateReports(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestArtifactsUnavailableBeforeReady(t *testing.T) {
	w := auditedWorkflow(t, &fakeOracle{}, seededStore(t))
	_, err := w.Artifacts()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLedgerChangeResetsFlow(t *testing.T) {
	store := seededStore(t)
	fake := &fakeOracle{findings: []domain.AuditFinding{{Type: domain.FindingWarning, Message: "x"}}}
	w := auditedWorkflow(t, fake, store)

	store.Add(domain.Transaction{ID: "t9", Value: 42, Classification: "Aluguel"})

	snap := w.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Findings)
}

func TestRunAuditAllowedAfterReportsReady(t *testing.T) {
	fake := &fakeOracle{}
	w := auditedWorkflow(t, fake, seededStore(t))
	require.NoError(t, w.GenerateReports(context.Background()))

	require.NoError(t, w.RunAudit(context.Background()))
	assert.Equal(t, StateAuditComplete, w.State())

	_, err := w.Artifacts()
	assert.ErrorIs(t, err, ErrInvalidState, "re-audit discards previous artifacts")
}
