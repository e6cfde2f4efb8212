package taxonomy

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tax := Default()

	tests := []struct {
		name           string
		classification string
		want           Kind
	}{
		{"revenue account", "Vendas de Mercadorias", Revenue},
		{"expense account", "Aluguel", Expense},
		{"transit account", "Ajustes e Estornos", EquityTransit},
		{"bank movement account", BankMovementAccount, EquityTransit},
		{"unknown account", "Conta Inventada", Unknown},
		{"empty name", "", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tax.Classify(tt.classification))
		})
	}
}

func TestAccountsSortedAndCopied(t *testing.T) {
	tax := Default()

	accounts := tax.Accounts()
	assert.True(t, sort.StringsAreSorted(accounts))
	assert.Len(t, accounts, 28)

	// Mutating the returned slice must not leak into the taxonomy.
	accounts[0] = "mutated"
	assert.NotEqual(t, "mutated", tax.Accounts()[0])
}

func TestNewCopiesInput(t *testing.T) {
	revenue := []string{"Vendas"}
	tax := New(revenue, []string{"Aluguel"}, nil)

	revenue[0] = "Outra Coisa"
	assert.Equal(t, Revenue, tax.Classify("Vendas"))
	assert.Equal(t, Unknown, tax.Classify("Outra Coisa"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "revenue", Revenue.String())
	assert.Equal(t, "expense", Expense.String())
	assert.Equal(t, "equity_transit", EquityTransit.String())
	assert.Equal(t, "unknown", Unknown.String())
}
