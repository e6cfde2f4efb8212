// Package export encodes statement data into downloadable artifacts: CSV,
// SPED-style fixed-record text and tabular HTML for print.
package export

import (
	"fmt"
	"strconv"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/reports"
)

// Table is the row-oriented shape every flat report reduces to: a header row
// followed by uniform data rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Empty reports whether the table carries no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// TransactionsTable flattens the ledger for the analytical export. Oracle
// bookkeeping fields (id, confidence, review flag) are intentionally
// dropped, matching what an accountant hands over.
func TransactionsTable(txs []domain.Transaction) Table {
	t := Table{Headers: []string{"date", "description", "value", "classification"}}
	for _, tx := range txs {
		t.Rows = append(t.Rows, []string{
			tx.Date.Format("2006-01-02"),
			tx.Description,
			strconv.FormatFloat(tx.Value, 'f', 2, 64),
			tx.Classification,
		})
	}
	return t
}

// DRETable renders the income statement's fixed three-line structure.
func DRETable(dre reports.DRE) Table {
	t := Table{Headers: []string{"item", "valor"}}
	for _, line := range dre.Lines {
		t.Rows = append(t.Rows, []string{line.Item, line.Valor})
	}
	return t
}

// TrialBalanceTable renders the per-account aggregation plus a totals row.
func TrialBalanceTable(tb reports.TrialBalance) Table {
	t := Table{Headers: []string{"account", "debit", "credit"}}
	for _, row := range tb.Rows {
		t.Rows = append(t.Rows, []string{
			row.Account,
			strconv.FormatFloat(row.Debit, 'f', 2, 64),
			strconv.FormatFloat(row.Credit, 'f', 2, 64),
		})
	}
	if len(tb.Rows) > 0 {
		t.Rows = append(t.Rows, []string{
			"Totais",
			strconv.FormatFloat(tb.TotalDebit, 'f', 2, 64),
			strconv.FormatFloat(tb.TotalCredit, 'f', 2, 64),
		})
	}
	return t
}

func formatCurrency(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}
