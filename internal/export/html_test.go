package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/reports"
)

var renderTime = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func TestRenderTableHTMLEscapesCells(t *testing.T) {
	table := Table{
		Headers: []string{"description"},
		Rows:    [][]string{{`<script>alert("x")</script>`}},
	}
	out := RenderTableHTML("Livro Razão", "Movimentações", table, renderTime)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "Data de Geração: 10/05/2024")
}

func TestRenderTableHTMLEmpty(t *testing.T) {
	out := RenderTableHTML("DRE", "Resultado", Table{Headers: []string{"item"}}, renderTime)
	assert.Contains(t, out, "Relatório Vazio")
	assert.NotContains(t, out, "<table>")
}

func TestRenderTableHTMLHeaderTitleCase(t *testing.T) {
	out := RenderTableHTML("Razão", "", Table{
		Headers: []string{"date", "classification", "época de apuração"},
		Rows:    [][]string{{"2024-05-10", "Receitas de Vendas", "2024"}},
	}, renderTime)
	assert.Contains(t, out, "<th>Date</th>")
	assert.Contains(t, out, "<th>Classification</th>")
	assert.Contains(t, out, "<th>Época De Apuração</th>")
}

func TestRenderBalanceSheetHTMLIdentity(t *testing.T) {
	balanced := reports.BalanceSheet{
		Assets: []reports.Group{{Name: "ATIVO CIRCULANTE", Items: []reports.LineItem{{Name: "Caixa e Equivalentes", Value: 100}}}},
		Totals: reports.Totals{Assets: 100, LiabilitiesAndEquity: 100},
	}
	out := RenderBalanceSheetHTML("Balanço Patrimonial", "", balanced, renderTime)
	assert.Contains(t, out, "check-pass")
	assert.Contains(t, out, "Verificação: Ativo (R$ 100.00) = Passivo + PL (R$ 100.00)")
	assert.Contains(t, out, "TOTAL DO ATIVO")
	assert.Contains(t, out, "TOTAL PASSIVO + PL")

	broken := reports.BalanceSheet{Totals: reports.Totals{Assets: 100, LiabilitiesAndEquity: 60}}
	out = RenderBalanceSheetHTML("Balanço Patrimonial", "", broken, renderTime)
	assert.Contains(t, out, "check-fail")
	assert.Contains(t, out, "≠")
}
