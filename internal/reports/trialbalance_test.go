package reports

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
)

func entry(value float64, classification string) domain.Transaction {
	return domain.Transaction{
		ID:             classification,
		Date:           time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		Description:    classification,
		Value:          value,
		Classification: classification,
	}
}

func TestBuildTrialBalanceGroupsAndTotals(t *testing.T) {
	txs := []domain.Transaction{
		entry(5000, "Vendas de Mercadorias"),
		entry(-1200, "Aluguel"),
		entry(-800, "Ajustes e Estornos"),
	}

	tb := BuildTrialBalance(txs)

	require.Len(t, tb.Rows, 3)
	// Lexicographic row order.
	assert.Equal(t, "Ajustes e Estornos", tb.Rows[0].Account)
	assert.Equal(t, "Aluguel", tb.Rows[1].Account)
	assert.Equal(t, "Vendas de Mercadorias", tb.Rows[2].Account)

	assert.Equal(t, 800.0, tb.Rows[0].Debit)
	assert.Equal(t, 0.0, tb.Rows[0].Credit)
	assert.Equal(t, 2000.0, tb.TotalDebit)
	assert.Equal(t, 5000.0, tb.TotalCredit)
	assert.InDelta(t, -3000.0, tb.Difference(), 1e-9)
	assert.False(t, tb.Balanced())
}

func TestTrialBalanceIdentity(t *testing.T) {
	// For any transaction set, totalDebit - totalCredit == -sum(values).
	sets := [][]domain.Transaction{
		{},
		{entry(100, "A")},
		{entry(-100, "A")},
		{entry(100, "A"), entry(-100, "B")},
		{entry(123.45, "A"), entry(-67.89, "B"), entry(-55.56, "A"), entry(0.005, "C")},
	}

	for _, txs := range sets {
		var sum float64
		for _, tx := range txs {
			sum += tx.Value
		}
		tb := BuildTrialBalance(txs)
		assert.InDelta(t, -sum, tb.Difference(), 1e-9)
	}
}

func TestTrialBalanceBalancedWithinTolerance(t *testing.T) {
	txs := []domain.Transaction{
		entry(100.004, "A"),
		entry(-100, "B"),
	}
	tb := BuildTrialBalance(txs)
	assert.True(t, tb.Balanced())
	assert.True(t, math.Abs(tb.Difference()) < BalanceTolerance)
}

func TestTrialBalanceEmptySet(t *testing.T) {
	tb := BuildTrialBalance(nil)
	assert.Empty(t, tb.Rows)
	assert.Zero(t, tb.TotalDebit)
	assert.Zero(t, tb.TotalCredit)
	assert.True(t, tb.Balanced())
}

func TestTrialBalanceUnknownClassificationStillAggregates(t *testing.T) {
	tb := BuildTrialBalance([]domain.Transaction{entry(-42, "Conta Fora do Plano")})
	require.Len(t, tb.Rows, 1)
	assert.Equal(t, "Conta Fora do Plano", tb.Rows[0].Account)
	assert.Equal(t, 42.0, tb.Rows[0].Debit)
}
