package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
)

// cleanModelJSON strips Markdown code fences and surrounding noise when the
// model ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// wireTransaction is one transaction as the model emits it.
type wireTransaction struct {
	Date            string   `json:"date"`
	Description     string   `json:"description"`
	Value           float64  `json:"value"`
	Classification  string   `json:"classification"`
	ConfidenceScore *float64 `json:"confidenceScore"`
	NeedsReview     *bool    `json:"needsReview"`
}

func (w wireTransaction) toDomain(i int) (domain.Transaction, error) {
	date, err := time.Parse("2006-01-02", w.Date)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d: invalid date %q: %w", i, w.Date, err)
	}
	if strings.TrimSpace(w.Description) == "" {
		return domain.Transaction{}, fmt.Errorf("transaction %d: missing description", i)
	}
	return domain.Transaction{
		Date:            date,
		Description:     w.Description,
		Value:           w.Value,
		Classification:  w.Classification,
		ConfidenceScore: w.ConfidenceScore,
		NeedsReview:     w.NeedsReview,
	}, nil
}

type statementPayload struct {
	Banco      string            `json:"banco"`
	SaldoFinal float64           `json:"saldoFinal"`
	Transacoes []wireTransaction `json:"transacoes"`
}

// decodeStatementResult parses the classification oracle's raw text.
// Zero-value records are dropped: the ledger never stores a transaction with
// value zero. IDs are left empty; ingestion assigns them.
func decodeStatementResult(raw string) (*domain.StatementResult, error) {
	var payload statementPayload
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal statement payload: %w", err)
	}

	result := &domain.StatementResult{
		Bank:         payload.Banco,
		FinalBalance: payload.SaldoFinal,
		Transactions: make([]domain.Transaction, 0, len(payload.Transacoes)),
	}
	for i, w := range payload.Transacoes {
		if w.Value == 0 {
			continue
		}
		tx, err := w.toDomain(i)
		if err != nil {
			return nil, err
		}
		result.Transactions = append(result.Transactions, tx)
	}
	return result, nil
}

type wireFinding struct {
	Type          string `json:"type"`
	Message       string `json:"message"`
	TransactionID string `json:"transactionId"`
}

// decodeFindings parses the audit oracle's raw text into findings. An
// unrecognized severity is a malformed response, not a new category.
func decodeFindings(raw string) ([]domain.AuditFinding, error) {
	var wire []wireFinding
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &wire); err != nil {
		return nil, fmt.Errorf("unmarshal findings: %w", err)
	}

	findings := make([]domain.AuditFinding, 0, len(wire))
	for i, w := range wire {
		f := domain.AuditFinding{
			Type:          domain.FindingType(w.Type),
			Message:       w.Message,
			TransactionID: w.TransactionID,
		}
		if !f.Type.Valid() {
			return nil, fmt.Errorf("finding %d: unknown severity %q", i, w.Type)
		}
		if strings.TrimSpace(f.Message) == "" {
			return nil, fmt.Errorf("finding %d: missing message", i)
		}
		findings = append(findings, f)
	}
	return findings, nil
}

type wireUpdates struct {
	Date           *string  `json:"date"`
	Description    *string  `json:"description"`
	Value          *float64 `json:"value"`
	Classification *string  `json:"classification"`
}

type wireProposal struct {
	TransactionID string      `json:"transactionId"`
	Reason        string      `json:"reason"`
	Updates       wireUpdates `json:"updates"`
}

// decodeProposals parses the correction oracle's raw text. A proposal
// without a transaction id, or whose updates change nothing, is malformed.
func decodeProposals(raw string) ([]domain.ProposedChange, error) {
	var wire []wireProposal
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &wire); err != nil {
		return nil, fmt.Errorf("unmarshal proposals: %w", err)
	}

	proposals := make([]domain.ProposedChange, 0, len(wire))
	for i, w := range wire {
		if strings.TrimSpace(w.TransactionID) == "" {
			return nil, fmt.Errorf("proposal %d: missing transactionId", i)
		}

		patch := domain.Patch{
			Description:    w.Updates.Description,
			Value:          w.Updates.Value,
			Classification: w.Updates.Classification,
		}
		if w.Updates.Date != nil {
			date, err := time.Parse("2006-01-02", *w.Updates.Date)
			if err != nil {
				return nil, fmt.Errorf("proposal %d: invalid date %q: %w", i, *w.Updates.Date, err)
			}
			patch.Date = &date
		}
		if patch.IsZero() {
			return nil, fmt.Errorf("proposal %d: empty updates", i)
		}

		proposals = append(proposals, domain.ProposedChange{
			TransactionID: w.TransactionID,
			Reason:        w.Reason,
			Updates:       patch,
		})
	}
	return proposals, nil
}
