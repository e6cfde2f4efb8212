package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/reports"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
)

// ReportType identifies one of the closing reports in the catalog.
type ReportType string

const (
	ReportDRE          ReportType = "DRE"
	ReportBalanceSheet ReportType = "BalanceSheet"
	ReportTransactions ReportType = "Transactions"
	ReportSPEDECD      ReportType = "SPED_ECD"
	ReportSPEDEFD      ReportType = "SPED_EFD"
	ReportSPEDECF      ReportType = "SPED_ECF"
)

// ReportSpec describes a catalog entry shown to the accountant.
type ReportSpec struct {
	Type        ReportType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

// Catalog lists the closing reports in presentation order.
func Catalog() []ReportSpec {
	return []ReportSpec{
		{Type: ReportDRE, Title: "DRE - Demonstração do Resultado", Description: "Visão dos lucros e perdas do período."},
		{Type: ReportBalanceSheet, Title: "Balanço Patrimonial", Description: "Foto da saúde financeira da empresa."},
		{Type: ReportTransactions, Title: "Livro Razão (Analítico)", Description: "Detalhes de todas as movimentações por conta."},
		{Type: ReportSPEDECD, Title: "SPED ECD", Description: "Escrituração Contábil Digital (.txt)"},
		{Type: ReportSPEDEFD, Title: "SPED EFD", Description: "Escrituração Fiscal Digital (.txt)"},
		{Type: ReportSPEDECF, Title: "SPED ECF", Description: "Escrituração Contábil Fiscal (.txt)"},
	}
}

// Artifact is a generated report file ready to be served or written to disk.
type Artifact struct {
	Type        ReportType `json:"type"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"contentType"`
	Content     []byte     `json:"-"`
}

// byteOrderMark makes spreadsheet software open UTF-8 CSVs with accents intact.
const byteOrderMark = "\ufeff"

// Generate produces the artifact for one catalog entry from the current ledger.
func Generate(spec ReportSpec, txs []domain.Transaction, tax taxonomy.Taxonomy, cfg reports.BalanceSheetConfig, now time.Time) (Artifact, error) {
	switch spec.Type {
	case ReportDRE:
		dre := reports.BuildDRE(txs, tax)
		return csvArtifact(spec, DRETable(dre)), nil
	case ReportBalanceSheet:
		bs := reports.BuildBalanceSheet(txs, tax, cfg)
		content := RenderBalanceSheetHTML(spec.Title, spec.Description, bs, now)
		return Artifact{
			Type:        spec.Type,
			Filename:    csvBaseName(spec.Title) + ".html",
			ContentType: "text/html; charset=utf-8",
			Content:     []byte(content),
		}, nil
	case ReportTransactions:
		return csvArtifact(spec, TransactionsTable(txs)), nil
	case ReportSPEDECD, ReportSPEDEFD, ReportSPEDECF:
		spedType := SPEDType(strings.TrimPrefix(string(spec.Type), "SPED_"))
		content := SPED(spedType, txs, now)
		return Artifact{
			Type:        spec.Type,
			Filename:    fmt.Sprintf("%s_%s.txt", spec.Type, now.Format("2006-01-02")),
			ContentType: "text/plain; charset=utf-8",
			Content:     []byte(content),
		}, nil
	default:
		return Artifact{}, fmt.Errorf("Generate: unknown report type %q", spec.Type)
	}
}

// GenerateAll renders every catalog entry in order.
func GenerateAll(txs []domain.Transaction, tax taxonomy.Taxonomy, cfg reports.BalanceSheetConfig, now time.Time) ([]Artifact, error) {
	catalog := Catalog()
	artifacts := make([]Artifact, 0, len(catalog))
	for _, spec := range catalog {
		a, err := Generate(spec, txs, tax, cfg, now)
		if err != nil {
			return nil, fmt.Errorf("GenerateAll: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

func csvArtifact(spec ReportSpec, t Table) Artifact {
	return Artifact{
		Type:        spec.Type,
		Filename:    csvBaseName(spec.Title) + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Content:     []byte(byteOrderMark + CSV(t)),
	}
}

// csvBaseName sanitizes a report title into a filename: each character
// outside [a-z0-9] becomes an underscore.
func csvBaseName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
