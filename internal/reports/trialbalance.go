// Package reports derives financial statements from a transaction snapshot.
// Generators are pure functions over the snapshot plus an injected taxonomy;
// consumers pull fresh values after every ledger change rather than caching.
package reports

import (
	"math"
	"sort"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
)

// BalanceTolerance is the two-decimal currency tolerance used by both the
// trial balance imbalance check and the balance sheet identity check.
const BalanceTolerance = 0.01

// TrialBalanceRow aggregates one classification. Debit and Credit are both
// non-negative sums of absolute values.
type TrialBalanceRow struct {
	Account string  `json:"account"`
	Debit   float64 `json:"debit"`
	Credit  float64 `json:"credit"`
}

// TrialBalance is the per-classification debit/credit aggregation. Imbalance
// is never an error here: Balanced and Difference are always-computed values
// surfaced to the caller.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  float64           `json:"totalDebit"`
	TotalCredit float64           `json:"totalCredit"`
}

// Difference returns totalDebit - totalCredit, which by construction equals
// the negated sum of all transaction values.
func (tb TrialBalance) Difference() float64 {
	return tb.TotalDebit - tb.TotalCredit
}

// Balanced reports whether the double-entry identity holds within the
// two-decimal currency tolerance.
func (tb TrialBalance) Balanced() bool {
	return math.Abs(tb.Difference()) < BalanceTolerance
}

// BuildTrialBalance groups the snapshot by classification. A negative value
// adds its absolute amount to the row's debit side, a positive value adds to
// credit. Rows are sorted lexicographically by account for determinism;
// classifications outside the chart of accounts aggregate like any other.
func BuildTrialBalance(txs []domain.Transaction) TrialBalance {
	byAccount := make(map[string]*TrialBalanceRow)
	for _, tx := range txs {
		row, ok := byAccount[tx.Classification]
		if !ok {
			row = &TrialBalanceRow{Account: tx.Classification}
			byAccount[tx.Classification] = row
		}
		if tx.Value < 0 {
			row.Debit += math.Abs(tx.Value)
		} else {
			row.Credit += tx.Value
		}
	}

	tb := TrialBalance{Rows: make([]TrialBalanceRow, 0, len(byAccount))}
	for _, row := range byAccount {
		tb.Rows = append(tb.Rows, *row)
		tb.TotalDebit += row.Debit
		tb.TotalCredit += row.Credit
	}
	sort.Slice(tb.Rows, func(i, j int) bool {
		return tb.Rows[i].Account < tb.Rows[j].Account
	})
	return tb
}
