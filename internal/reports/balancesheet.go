package reports

import (
	"math"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
)

// BalanceSheetConfig parameterizes the illustrative fixed figures the
// cash-basis construction cannot derive from the ledger. They stand in for
// asset and liability detail this engine does not model.
type BalanceSheetConfig struct {
	// FixedAssets is added to non-current assets (imobilizado).
	FixedAssets float64 `json:"fixedAssets"`
	// SupplierPayables is added to current liabilities (fornecedores).
	SupplierPayables float64 `json:"supplierPayables"`
	// LongTermFinancing is added to non-current liabilities.
	LongTermFinancing float64 `json:"longTermFinancing"`
}

// DefaultBalanceSheetConfig returns the reference figures.
func DefaultBalanceSheetConfig() BalanceSheetConfig {
	return BalanceSheetConfig{
		FixedAssets:       50000,
		SupplierPayables:  15000,
		LongTermFinancing: 20000,
	}
}

// LineItem is one named value inside a balance sheet group.
type LineItem struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Group is a titled section of one balance sheet column.
type Group struct {
	Name  string     `json:"group"`
	Items []LineItem `json:"items"`
}

// Totals carries the column totals and the grand total used by the identity
// check.
type Totals struct {
	Assets               float64 `json:"assets"`
	Liabilities          float64 `json:"liabilities"`
	Equity               float64 `json:"equity"`
	LiabilitiesAndEquity float64 `json:"liabilitiesAndEquity"`
}

// BalanceSheet is the simplified cash-basis balance sheet. Capital stock is
// a plug: it is defined as assets minus liabilities minus retained earnings,
// so the accounting identity holds by construction for every input.
type BalanceSheet struct {
	Assets      []Group `json:"assets"`
	Liabilities []Group `json:"liabilities"`
	Equity      []Group `json:"equity"`
	Totals      Totals  `json:"totals"`
}

// IdentityHolds reports whether assets equal liabilities plus equity within
// the currency tolerance. Renderers surface this as a pass/fail line; it is
// never a hard failure.
func (bs BalanceSheet) IdentityHolds() bool {
	return math.Abs(bs.Totals.Assets-bs.Totals.LiabilitiesAndEquity) < BalanceTolerance
}

// BuildBalanceSheet derives the balance sheet from the snapshot. Every
// transaction affects cash regardless of classification; a positive cash sum
// books as a current asset, a negative one as an overdraft liability.
func BuildBalanceSheet(txs []domain.Transaction, tax taxonomy.Taxonomy, cfg BalanceSheetConfig) BalanceSheet {
	var cash float64
	for _, tx := range txs {
		cash += tx.Value
	}

	currentAssets := math.Max(cash, 0)
	currentLiabilities := math.Max(-cash, 0) + cfg.SupplierPayables
	nonCurrentAssets := cfg.FixedAssets
	nonCurrentLiabilities := cfg.LongTermFinancing

	totalAssets := currentAssets + nonCurrentAssets
	totalLiabilities := currentLiabilities + nonCurrentLiabilities

	retainedEarnings := BuildDRE(txs, tax).NetIncome
	capitalStock := totalAssets - totalLiabilities - retainedEarnings
	totalEquity := capitalStock + retainedEarnings

	return BalanceSheet{
		Assets: []Group{
			{Name: "ATIVO CIRCULANTE", Items: []LineItem{
				{Name: "Caixa e Equivalentes", Value: currentAssets},
			}},
			{Name: "ATIVO NÃO CIRCULANTE", Items: []LineItem{
				{Name: "Imobilizado", Value: nonCurrentAssets},
			}},
		},
		Liabilities: []Group{
			{Name: "PASSIVO CIRCULANTE", Items: []LineItem{
				{Name: "Fornecedores e Obrigações", Value: currentLiabilities},
			}},
			{Name: "PASSIVO NÃO CIRCULANTE", Items: []LineItem{
				{Name: "Financiamentos", Value: nonCurrentLiabilities},
			}},
		},
		Equity: []Group{
			{Name: "PATRIMÔNIO LÍQUIDO", Items: []LineItem{
				{Name: "Capital Social", Value: capitalStock},
				{Name: "Resultado do Período", Value: retainedEarnings},
			}},
		},
		Totals: Totals{
			Assets:               totalAssets,
			Liabilities:          totalLiabilities,
			Equity:               totalEquity,
			LiabilitiesAndEquity: totalLiabilities + totalEquity,
		},
	}
}
