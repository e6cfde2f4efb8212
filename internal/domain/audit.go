package domain

// FindingType is the severity tag of an audit finding.
type FindingType string

const (
	FindingError      FindingType = "error"
	FindingWarning    FindingType = "warning"
	FindingSuggestion FindingType = "suggestion"
)

// Valid reports whether t is one of the three known severities.
func (t FindingType) Valid() bool {
	switch t {
	case FindingError, FindingWarning, FindingSuggestion:
		return true
	}
	return false
}

// AuditFinding is one issue reported by the audit oracle. TransactionID is
// empty for ledger-wide findings (for example a double-entry imbalance that
// cannot be pinned on a single entry). Findings are immutable once received.
type AuditFinding struct {
	Type          FindingType `json:"type"`
	Message       string      `json:"message"`
	TransactionID string      `json:"transactionId,omitempty"`
}

// ProposedChange is one correction proposed by the correction oracle for a
// specific transaction. Updates carries only the fields that should change;
// it must never be applied to any transaction other than the referenced one.
type ProposedChange struct {
	TransactionID string `json:"transactionId"`
	Reason        string `json:"reason"`
	Updates       Patch  `json:"updates"`
}
