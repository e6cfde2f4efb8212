package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVEscaping(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string
	}{
		{name: "plain", cell: "salario", want: "salario"},
		{name: "comma and quote", cell: `a,b"c`, want: `"a,b""c"`},
		{name: "only quote", cell: `PIX "urgente"`, want: `"PIX ""urgente"""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := CSV(Table{Headers: []string{"h"}, Rows: [][]string{{tt.cell}}})
			lines := strings.Split(out, "\r\n")
			require.Len(t, lines, 2)
			assert.Equal(t, tt.want, lines[1])
		})
	}
}

func TestCSVEmbeddedNewline(t *testing.T) {
	// In CRLF mode the writer quotes the field and rewrites the bare \n
	// to \r\n; reading it back normalizes the line break again.
	out := CSV(Table{Headers: []string{"h"}, Rows: [][]string{{"linha1\nlinha2"}}})
	assert.Equal(t, "h\r\n\"linha1\r\nlinha2\"", out)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "linha1\nlinha2", records[1][0])
}

func TestCSVRoundTrip(t *testing.T) {
	in := Table{
		Headers: []string{"date", "description", "value"},
		Rows: [][]string{
			{"2024-05-10", `Pagamento, "fornecedor"`, "-1200.00"},
			{"2024-05-11", "Recebimento PIX", "5000.00"},
		},
	}

	r := csv.NewReader(strings.NewReader(CSV(in)))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, in.Headers, records[0])
	assert.Equal(t, in.Rows[0], records[1])
	assert.Equal(t, in.Rows[1], records[2])
}

func TestCSVEmptyTable(t *testing.T) {
	assert.Equal(t, "", CSV(Table{Headers: []string{"a", "b"}}))
}

func TestCSVUsesCRLFWithoutTrailingBreak(t *testing.T) {
	out := CSV(Table{Headers: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}})
	assert.Equal(t, "a\r\n1\r\n2", out)
}
