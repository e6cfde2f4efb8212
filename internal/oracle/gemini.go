package oracle

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
)

const (
	// DefaultStatementModel handles bulk statement extraction.
	DefaultStatementModel = "gemini-2.5-flash"
	// DefaultAuditModel handles the deeper audit and correction reasoning.
	DefaultAuditModel = "gemini-2.5-pro"
)

// Gemini implements Client on top of the Google GenAI API. The API key is
// taken from the environment by the genai client (GEMINI_API_KEY).
type Gemini struct {
	client         *genai.Client
	statementModel string
	auditModel     string
	taxonomy       taxonomy.Taxonomy
	log            zerolog.Logger
}

// GeminiOption customizes the Gemini client.
type GeminiOption func(*Gemini)

// WithModels overrides the default model names.
func WithModels(statementModel, auditModel string) GeminiOption {
	return func(g *Gemini) {
		g.statementModel = statementModel
		g.auditModel = auditModel
	}
}

// NewGemini creates the Gemini-backed oracle client. The taxonomy is baked
// into the classification prompt so the model only emits chart accounts.
func NewGemini(ctx context.Context, tax taxonomy.Taxonomy, log zerolog.Logger, opts ...GeminiOption) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGemini: create genai client: %w", err)
	}

	g := &Gemini{
		client:         client,
		statementModel: DefaultStatementModel,
		auditModel:     DefaultAuditModel,
		taxonomy:       tax,
		log:            log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// generate runs one request and returns the raw text answer. Transport
// failures and empty answers are classified per the engine error taxonomy.
func (g *Gemini) generate(ctx context.Context, op, model string, contents []*genai.Content) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}

	raw := resp.Text()
	if raw == "" {
		return "", &ResponseError{Op: op, Err: fmt.Errorf("empty response from model %s", model)}
	}
	return raw, nil
}

// ProcessStatement implements Client.
func (g *Gemini) ProcessStatement(ctx context.Context, doc domain.StatementDocument, company *domain.CompanyContext) (*domain.StatementResult, error) {
	const op = "ProcessStatement"

	parts := []*genai.Part{{Text: statementPrompt(company, g.taxonomy)}}
	if doc.IsBinary() {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: doc.MIMEType, Data: doc.Data},
		})
	} else {
		parts = append(parts, &genai.Part{
			Text: fmt.Sprintf("\n\n--- INÍCIO DO EXTRATO ---\n\n%s\n\n--- FIM DO EXTRATO ---", doc.Data),
		})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	raw, err := g.generate(ctx, op, g.statementModel, contents)
	if err != nil {
		return nil, err
	}

	result, err := decodeStatementResult(raw)
	if err != nil {
		return nil, &ResponseError{Op: op, Err: err}
	}

	g.log.Info().
		Str("document", doc.Name).
		Str("bank", result.Bank).
		Int("transactions", len(result.Transactions)).
		Float64("final_balance", result.FinalBalance).
		Msg("Statement processed")
	return result, nil
}

// AuditTrialBalance implements Client.
func (g *Gemini) AuditTrialBalance(ctx context.Context, txs []domain.Transaction, company *domain.CompanyContext) ([]domain.AuditFinding, error) {
	const op = "AuditTrialBalance"

	if len(txs) == 0 {
		return nil, &ValidationError{Msg: op + ": transaction set is empty"}
	}

	prompt, err := auditPrompt(txs, company)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := g.generate(ctx, op, g.auditModel, textContent(prompt))
	if err != nil {
		return nil, err
	}

	findings, err := decodeFindings(raw)
	if err != nil {
		return nil, &ResponseError{Op: op, Err: err}
	}

	g.log.Info().Int("findings", len(findings)).Msg("Audit completed")
	return findings, nil
}

// ProposeCorrections implements Client.
func (g *Gemini) ProposeCorrections(ctx context.Context, txs []domain.Transaction, findings []domain.AuditFinding, company *domain.CompanyContext) ([]domain.ProposedChange, error) {
	const op = "ProposeCorrections"

	if len(txs) == 0 {
		return nil, &ValidationError{Msg: op + ": transaction set is empty"}
	}
	if len(findings) == 0 {
		return nil, &ValidationError{Msg: op + ": no findings to correct"}
	}

	prompt, err := correctionsPrompt(txs, findings, company)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := g.generate(ctx, op, g.auditModel, textContent(prompt))
	if err != nil {
		return nil, err
	}

	proposals, err := decodeProposals(raw)
	if err != nil {
		return nil, &ResponseError{Op: op, Err: err}
	}

	g.log.Info().Int("proposals", len(proposals)).Msg("Corrections proposed")
	return proposals, nil
}

func textContent(text string) []*genai.Content {
	return []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: text}}}}
}

// Ensure Gemini implements the Client interface.
var _ Client = (*Gemini)(nil)
