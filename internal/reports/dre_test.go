package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
)

func TestBuildDREScenario(t *testing.T) {
	txs := []domain.Transaction{
		entry(5000, "Vendas de Mercadorias"),
		entry(-1200, "Aluguel"),
		entry(-800, "Ajustes e Estornos"), // transit, excluded
	}

	dre := BuildDRE(txs, taxonomy.Default())

	assert.Equal(t, 5000.0, dre.TotalRevenue)
	assert.Equal(t, 1200.0, dre.TotalExpenses)
	assert.Equal(t, 3800.0, dre.NetIncome)

	require.Len(t, dre.Lines, 3)
	assert.Equal(t, "Receita Operacional Bruta", dre.Lines[0].Item)
	assert.Equal(t, "R$ 5000.00", dre.Lines[0].Valor)
	assert.Equal(t, "R$ (1200.00)", dre.Lines[1].Valor)
	assert.Equal(t, "R$ 3800.00", dre.Lines[2].Valor)
}

func TestDREExclusions(t *testing.T) {
	tax := taxonomy.Default()

	tests := []struct {
		name string
		tx   domain.Transaction
	}{
		{"positive transit value", entry(900, "Transferência Interna")},
		{"negative transit value", entry(-900, "Ajustes e Estornos")},
		{"positive unknown classification", entry(900, "Conta Desconhecida")},
		{"negative unknown classification", entry(-900, "Conta Desconhecida")},
		{"negative value on revenue account", entry(-900, "Vendas de Mercadorias")},
		{"positive value on expense account", entry(900, "Aluguel")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dre := BuildDRE([]domain.Transaction{tt.tx}, tax)
			assert.Zero(t, dre.TotalRevenue)
			assert.Zero(t, dre.TotalExpenses)
			assert.Zero(t, dre.NetIncome)
		})
	}
}

func TestDREEmptySet(t *testing.T) {
	dre := BuildDRE(nil, taxonomy.Default())
	assert.Zero(t, dre.TotalRevenue)
	assert.Zero(t, dre.TotalExpenses)
	assert.Zero(t, dre.NetIncome)
	require.Len(t, dre.Lines, 3)
	assert.Equal(t, "R$ 0.00", dre.Lines[0].Valor)
}
