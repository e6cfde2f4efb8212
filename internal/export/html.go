package export

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/reports"
)

const htmlStyle = `body { font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; margin: 0; padding: 2.5em; color: #333; }
.report-title { text-align: center; margin-bottom: 2em; }
table { width: 100%; border-collapse: collapse; font-size: 0.9em; }
th, td { border: 1px solid #e2e8f0; padding: 0.75em; text-align: left; }
th { background-color: #f7fafc; font-weight: 600; }
.currency { text-align: right; }
.total-row td { font-weight: bold; background-color: #f7fafc; border-top: 2px solid #cbd5e0; }
.grand-total-row td { font-weight: bold; font-size: 1.1em; background-color: #e2e8f0; }
.columns { display: flex; justify-content: space-between; gap: 2em; }
.column { width: 48%; }
.check-pass { color: green; text-align: center; font-weight: bold; margin-top: 2em; }
.check-fail { color: red; text-align: center; font-weight: bold; margin-top: 2em; }`

func htmlPage(title, description, body string, now time.Time) string {
	var b strings.Builder
	b.WriteString("<html>\n<head>\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n<style>\n")
	b.WriteString(htmlStyle)
	b.WriteString("\n</style>\n</head>\n<body>\n")
	fmt.Fprintf(&b, "<div class=\"report-title\"><h2>%s</h2><p>%s</p><p>Data de Geração: %s</p></div>\n",
		html.EscapeString(title), html.EscapeString(description), now.Format("02/01/2006"))
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// RenderTableHTML converts any flat row-oriented report into a single-table
// print document, with headers auto-derived from the table.
func RenderTableHTML(title, description string, t Table, now time.Time) string {
	if t.Empty() {
		return htmlPage(title, description, "<h1>Relatório Vazio</h1><p>Não há dados para exibir.</p>\n", now)
	}

	var b strings.Builder
	b.WriteString("<table>\n<thead>\n<tr>")
	for _, h := range t.Headers {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(titleCase(h)))
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	return htmlPage(title, description, b.String(), now)
}

// RenderBalanceSheetHTML renders the two-column asset / liability+equity
// layout with group headers, totals and the identity verification line.
func RenderBalanceSheetHTML(title, description string, bs reports.BalanceSheet, now time.Time) string {
	var b strings.Builder
	b.WriteString("<div class=\"columns\">\n<div class=\"column\">\n<table>\n")
	writeGroups(&b, bs.Assets)
	writeTotalRow(&b, "TOTAL DO ATIVO", bs.Totals.Assets, "total-row")
	b.WriteString("</table>\n</div>\n<div class=\"column\">\n<table>\n")
	writeGroups(&b, bs.Liabilities)
	writeTotalRow(&b, "TOTAL DO PASSIVO", bs.Totals.Liabilities, "total-row")
	writeGroups(&b, bs.Equity)
	writeTotalRow(&b, "TOTAL DO PATRIMÔNIO LÍQUIDO", bs.Totals.Equity, "total-row")
	writeTotalRow(&b, "TOTAL PASSIVO + PL", bs.Totals.LiabilitiesAndEquity, "grand-total-row")
	b.WriteString("</table>\n</div>\n</div>\n")

	check, symbol := "check-pass", "="
	if !bs.IdentityHolds() {
		check, symbol = "check-fail", "≠"
	}
	fmt.Fprintf(&b, "<p class=\"%s\">Verificação: Ativo (%s) %s Passivo + PL (%s)</p>\n",
		check, formatCurrency(bs.Totals.Assets), symbol, formatCurrency(bs.Totals.LiabilitiesAndEquity))

	return htmlPage(title, description, b.String(), now)
}

func writeGroups(b *strings.Builder, groups []reports.Group) {
	for _, g := range groups {
		fmt.Fprintf(b, "<tr><th colspan=\"2\">%s</th></tr>\n", html.EscapeString(g.Name))
		for _, item := range g.Items {
			fmt.Fprintf(b, "<tr><td>%s</td><td class=\"currency\">%s</td></tr>\n",
				html.EscapeString(item.Name), formatCurrency(item.Value))
		}
	}
}

func writeTotalRow(b *strings.Builder, label string, value float64, class string) {
	fmt.Fprintf(b, "<tr class=\"%s\"><td>%s</td><td class=\"currency\">%s</td></tr>\n",
		class, html.EscapeString(label), formatCurrency(value))
}

// titleCase uppercases the first letter of each underscore- or
// space-separated word for display headers.
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
