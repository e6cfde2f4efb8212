// Package oracle defines the external AI capability the engine consumes and
// its Gemini-backed implementation. The engine never knows how
// classifications, findings or corrections are produced; it only depends on
// the Client interface, which tests substitute with a fake.
package oracle

import (
	"context"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
)

// Client is the oracle capability: statement classification, trial balance
// audit and correction proposal. Implementations must be safe for concurrent
// use; every call honors context cancellation.
type Client interface {
	// ProcessStatement classifies one bank statement document into
	// transactions plus the extracted bank name and final balance. An empty
	// transaction list and a missing bank name are both valid answers.
	ProcessStatement(ctx context.Context, doc domain.StatementDocument, company *domain.CompanyContext) (*domain.StatementResult, error)

	// AuditTrialBalance reviews the full transaction set and returns an
	// ordered list of findings. An empty list means no issues. Returns a
	// *ValidationError when txs is empty.
	AuditTrialBalance(ctx context.Context, txs []domain.Transaction, company *domain.CompanyContext) ([]domain.AuditFinding, error)

	// ProposeCorrections answers the findings that reference a transaction
	// with an ordered list of proposed changes. Returns a *ValidationError
	// when txs or findings is empty.
	ProposeCorrections(ctx context.Context, txs []domain.Transaction, findings []domain.AuditFinding, company *domain.CompanyContext) ([]domain.ProposedChange, error)
}
