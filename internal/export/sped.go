package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
)

// SPEDType selects the regulatory-style export variant. The encoding is a
// structural illustration of the SPED record layout (pipe-delimited lines,
// block open/close sentinels, one line pair per transaction), not a
// compliant fiscal file.
type SPEDType string

const (
	SPEDECD SPEDType = "ECD"
	SPEDEFD SPEDType = "EFD"
	SPEDECF SPEDType = "ECF"
)

// contentBlock returns the block letter holding the per-transaction records.
func (t SPEDType) contentBlock() string {
	switch t {
	case SPEDEFD:
		return "C"
	case SPEDECF:
		return "Y"
	default:
		return "I"
	}
}

// SPED encodes the transaction set as a fixed-record text file: block 0
// envelope, one content block with a record pair per transaction, block 9
// closing.
func SPED(t SPEDType, txs []domain.Transaction, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "|0000|LE%s|%s|...|1|\n", t, now.Format("02/01/2006"))
	b.WriteString("|0001|0|\n")
	b.WriteString("|0005|Dados Complementares do Estabelecimento|\n")
	b.WriteString("|0990|Encerramento do Bloco 0|\n")

	block := t.contentBlock()
	fmt.Fprintf(&b, "|%s001|0|\n", block)
	for i, tx := range txs {
		fmt.Fprintf(&b, "|%s200|Lançamento Contábil %d|\n", block, i+1)
		fmt.Fprintf(&b, "|%s250|Partida do Lançamento: %s|\n", block, tx.Description)
	}
	fmt.Fprintf(&b, "|%s990|Encerramento do Bloco %s|\n", block, block)

	b.WriteString("|9001|0|\n")
	b.WriteString("|9999|Encerramento do Arquivo Digital|\n")
	return b.String()
}
