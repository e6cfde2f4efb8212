// Package taxonomy holds the chart-of-accounts partition used to derive
// financial statements. A Taxonomy is an immutable value constructed once and
// injected into every generator; there is no package-level mutable state.
package taxonomy

import (
	"sort"
)

// Kind is the statement role of a classification name.
type Kind int

const (
	// Unknown marks a classification outside the chart of accounts. It is a
	// data-quality signal, never an error: unknown names still aggregate in
	// the trial balance but are excluded from the income statement.
	Unknown Kind = iota
	Revenue
	Expense
	// EquityTransit covers capital movements and transit accounts (internal
	// transfers, reversals, the bank movement account). These affect cash
	// but never the income statement.
	EquityTransit
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Revenue:
		return "revenue"
	case Expense:
		return "expense"
	case EquityTransit:
		return "equity_transit"
	default:
		return "unknown"
	}
}

// BankMovementAccount is the transit account used for the synthetic
// closing-balance adjustment entry.
const BankMovementAccount = "Bancos Conta Movimento"

// Taxonomy is a disjoint partition of classification names into revenue,
// expense and equity/transit sets.
type Taxonomy struct {
	kinds    map[string]Kind
	accounts []string
}

// New builds a Taxonomy from the three account name sets. Input slices are
// copied; later changes to them do not affect the returned value. If a name
// appears in more than one set the later set wins, matching declaration
// order revenue < expense < equity/transit.
func New(revenue, expense, equityTransit []string) Taxonomy {
	kinds := make(map[string]Kind, len(revenue)+len(expense)+len(equityTransit))
	for _, name := range revenue {
		kinds[name] = Revenue
	}
	for _, name := range expense {
		kinds[name] = Expense
	}
	for _, name := range equityTransit {
		kinds[name] = EquityTransit
	}

	accounts := make([]string, 0, len(kinds))
	for name := range kinds {
		accounts = append(accounts, name)
	}
	sort.Strings(accounts)

	return Taxonomy{kinds: kinds, accounts: accounts}
}

// Classify resolves a classification name to its statement role. Names
// outside the chart resolve to Unknown; there is no failure mode.
func (t Taxonomy) Classify(name string) Kind {
	return t.kinds[name]
}

// Contains reports whether name belongs to the chart of accounts.
func (t Taxonomy) Contains(name string) bool {
	_, ok := t.kinds[name]
	return ok
}

// Accounts returns the full chart of accounts sorted lexicographically.
// The returned slice is a copy.
func (t Taxonomy) Accounts() []string {
	out := make([]string, len(t.accounts))
	copy(out, t.accounts)
	return out
}

// Default is the standard Brazilian small-business chart of accounts the
// classification oracle is prompted with.
func Default() Taxonomy {
	revenue := []string{
		"Vendas de Produtos",
		"Vendas de Mercadorias",
		"Prestação de Serviços",
		"Receita de Assinaturas",
		"Juros Ativos (Rendimentos)",
		"Outras Receitas",
	}
	expense := []string{
		"Custo das Mercadorias Vendidas (CMV)",
		"Salários e Ordenados",
		"Encargos Sociais",
		"Aluguel",
		"Energia Elétrica / Água",
		"Telefonia / Internet",
		"Propaganda e Marketing",
		"Material de Escritório",
		"Honorários Contábeis",
		"Impostos e Tributos",
		"Despesas Bancárias / IOF",
		"Juros Passivos (Empréstimos)",
		"Frete sobre Vendas",
		"Outras Despesas Operacionais",
	}
	equityTransit := []string{
		BankMovementAccount,
		"Transferência Interna",
		"Compra de Ativo Imobilizado",
		"Pagamento de Fornecedores",
		"Pagamento de Empréstimos",
		"Aporte de Capital / Adiantamento",
		"Distribuição de Lucros / Retirada",
		"Ajustes e Estornos",
	}
	return New(revenue, expense, equityTransit)
}
