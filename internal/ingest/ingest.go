// Package ingest turns uploaded bank statements into ledger-ready
// transactions via the classification oracle, tolerating partial failures
// across documents and applying the closing-balance adjustment.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/oracle"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
)

// DocumentFailure records one document the oracle could not process.
// Failures never discard what other documents extracted successfully.
type DocumentFailure struct {
	Document string `json:"document"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

// Result is the outcome of processing a batch of statements. Transactions
// are sorted by date and already carry ids and the closing-balance
// adjustment entry when one applies.
type Result struct {
	Transactions []domain.Transaction `json:"transactions"`
	Bank         string               `json:"bank"`
	FinalBalance float64              `json:"finalBalance"`
	Failures     []DocumentFailure    `json:"failures,omitempty"`
}

// Service processes statement batches. The oracle is injected so tests run
// with a fake and never touch the network.
type Service struct {
	oracle oracle.Client
	log    zerolog.Logger
	now    func() time.Time
}

// NewService creates an ingestion service.
func NewService(client oracle.Client, log zerolog.Logger) *Service {
	return &Service{oracle: client, log: log, now: time.Now}
}

// ProcessStatements classifies each document independently and merges the
// results. One document failing must not discard the others; failures are
// reported alongside whatever was extracted. When nothing at all could be
// extracted the error is an *oracle.EmptyResultError.
func (s *Service) ProcessStatements(ctx context.Context, docs []domain.StatementDocument, company *domain.CompanyContext) (*Result, error) {
	if len(docs) == 0 {
		return nil, &oracle.ValidationError{Msg: "ProcessStatements: no documents supplied"}
	}

	result := &Result{}
	for _, doc := range docs {
		stmt, err := s.oracle.ProcessStatement(ctx, doc, company)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("ProcessStatements: %w", ctx.Err())
			}
			s.log.Warn().Err(err).Str("document", doc.Name).Msg("Statement processing failed")
			result.Failures = append(result.Failures, DocumentFailure{
				Document: doc.Name,
				Message:  err.Error(),
				Err:      err,
			})
			continue
		}

		for _, tx := range stmt.Transactions {
			tx.ID = uuid.NewString()
			result.Transactions = append(result.Transactions, tx)
		}
		// The last statement with extracted bank info wins, matching the
		// single-session model where one bank's documents arrive together.
		if stmt.Bank != "" || stmt.FinalBalance != 0 {
			result.Bank = stmt.Bank
			result.FinalBalance = stmt.FinalBalance
		}
	}

	if len(result.Transactions) == 0 {
		return nil, &oracle.EmptyResultError{Op: "ProcessStatements"}
	}

	sort.SliceStable(result.Transactions, func(i, j int) bool {
		return result.Transactions[i].Date.Before(result.Transactions[j].Date)
	})

	if adj := s.closingBalanceAdjustment(result); adj != nil {
		result.Transactions = append(result.Transactions, *adj)
	}

	s.log.Info().
		Int("documents", len(docs)).
		Int("failures", len(result.Failures)).
		Int("transactions", len(result.Transactions)).
		Msg("Statement batch processed")
	return result, nil
}

// closingBalanceAdjustment synthesizes the entry that keeps the ledger's
// cash matched to the external statement. A positive external balance books
// as a debit (negative value), a negative one as a credit; a zero balance
// needs no entry.
func (s *Service) closingBalanceAdjustment(result *Result) *domain.Transaction {
	if result.FinalBalance == 0 {
		return nil
	}

	// Sign inversion: a positive external balance needs a debit (negative
	// value) and a negative one a credit, so the entry is always -balance.
	value := -result.FinalBalance

	date := s.now().Truncate(24 * time.Hour)
	if n := len(result.Transactions); n > 0 {
		date = result.Transactions[n-1].Date
	}

	bank := result.Bank
	if bank == "" {
		bank = "Banco não identificado"
	}

	score := 1.0
	review := false
	return &domain.Transaction{
		ID:              "balance-" + uuid.NewString(),
		Date:            date,
		Description:     "Ajuste de Saldo Final - " + bank,
		Value:           value,
		Classification:  taxonomy.BankMovementAccount,
		ConfidenceScore: &score,
		NeedsReview:     &review,
	}
}
