package reports

import (
	"fmt"
	"math"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
)

// DRELine is one row of the income statement's fixed three-line structure.
type DRELine struct {
	Item  string `json:"item"`
	Valor string `json:"valor"`
}

// DRE is the simplified income statement (Demonstração do Resultado do
// Exercício). Only positive revenue-account values and negative
// expense-account values contribute; equity/transit and unknown
// classifications are excluded from both sums, which is what keeps internal
// transfers and unclassified noise out of the result.
type DRE struct {
	Lines         []DRELine `json:"data"`
	TotalRevenue  float64   `json:"totalRevenue"`
	TotalExpenses float64   `json:"totalExpenses"`
	NetIncome     float64   `json:"netIncome"`
}

// BuildDRE computes the income statement for the snapshot.
func BuildDRE(txs []domain.Transaction, tax taxonomy.Taxonomy) DRE {
	var revenue, expenses float64
	for _, tx := range txs {
		switch tax.Classify(tx.Classification) {
		case taxonomy.Revenue:
			if tx.Value > 0 {
				revenue += tx.Value
			}
		case taxonomy.Expense:
			if tx.Value < 0 {
				expenses += math.Abs(tx.Value)
			}
		}
	}

	net := revenue - expenses
	return DRE{
		Lines: []DRELine{
			{Item: "Receita Operacional Bruta", Valor: fmt.Sprintf("R$ %.2f", revenue)},
			{Item: "(-) Despesas Totais", Valor: fmt.Sprintf("R$ (%.2f)", expenses)},
			{Item: "(=) Resultado Líquido do Período", Valor: fmt.Sprintf("R$ %.2f", net)},
		},
		TotalRevenue:  revenue,
		TotalExpenses: expenses,
		NetIncome:     net,
	}
}
