package domain

import (
	"time"
)

// Transaction is one ledger entry for the working session. The sign of Value
// is the only debit/credit signal: negative books as a debit (money out),
// positive as a credit (money in). A zero value is never stored.
type Transaction struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	Description    string    `json:"description"`
	Value          float64   `json:"value"`
	Classification string    `json:"classification"`

	// ConfidenceScore and NeedsReview come from the classification oracle
	// and are display-only: the engine surfaces them but never re-derives
	// them (the 0.85 review threshold lives in the oracle prompt).
	ConfidenceScore *float64 `json:"confidenceScore,omitempty"`
	NeedsReview     *bool    `json:"needsReview,omitempty"`
}

// Patch is a partial update to a Transaction. Nil fields are left untouched;
// the ID is never patchable.
type Patch struct {
	Date            *time.Time `json:"date,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Value           *float64   `json:"value,omitempty"`
	Classification  *string    `json:"classification,omitempty"`
	ConfidenceScore *float64   `json:"confidenceScore,omitempty"`
	NeedsReview     *bool      `json:"needsReview,omitempty"`
}

// IsZero reports whether the patch would change nothing.
func (p Patch) IsZero() bool {
	return p.Date == nil && p.Description == nil && p.Value == nil &&
		p.Classification == nil && p.ConfidenceScore == nil && p.NeedsReview == nil
}

// Apply merges the patch into tx, overwriting only the fields present.
func (p Patch) Apply(tx Transaction) Transaction {
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	if p.Value != nil {
		tx.Value = *p.Value
	}
	if p.Classification != nil {
		tx.Classification = *p.Classification
	}
	if p.ConfidenceScore != nil {
		score := *p.ConfidenceScore
		tx.ConfidenceScore = &score
	}
	if p.NeedsReview != nil {
		review := *p.NeedsReview
		tx.NeedsReview = &review
	}
	return tx
}

// CompanyContext is the opaque client-side hint forwarded to every oracle
// call: the principal tax id and a free-text list of known accounts, PIX
// keys and group company names used to spot internal transfers.
type CompanyContext struct {
	Name          string `json:"name"`
	CNPJ          string `json:"cnpj"`
	KnownAccounts string `json:"knownAccounts"`
}

// StatementDocument is one uploaded bank statement ready for classification.
// Binary payloads (PDF, images) carry their MIME type; anything else is
// treated as plain text.
type StatementDocument struct {
	Name     string
	MIMEType string
	Data     []byte
}

// IsBinary reports whether the document must be sent to the oracle as an
// inline blob rather than inlined into the prompt text.
func (d StatementDocument) IsBinary() bool {
	switch {
	case d.MIMEType == "application/pdf":
		return true
	case len(d.MIMEType) > 6 && d.MIMEType[:6] == "image/":
		return true
	}
	return false
}

// StatementResult is the classification oracle's answer for one document.
// Bank may be empty and Transactions may be an empty list; both are valid.
type StatementResult struct {
	Bank         string        `json:"bank"`
	FinalBalance float64       `json:"finalBalance"`
	Transactions []Transaction `json:"transactions"`
}
