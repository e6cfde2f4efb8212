package export

import (
	"bytes"
	"encoding/csv"
	"strings"
)

// CSV encodes the table with CRLF row separators. Fields containing a
// comma, quote or newline are wrapped in quotes with internal quotes
// doubled. An empty table (no data rows) yields an empty string.
func CSV(t Table) string {
	if t.Empty() {
		return ""
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	// Writes to a bytes.Buffer cannot fail.
	_ = w.Write(t.Headers)
	_ = w.WriteAll(t.Rows)
	w.Flush()

	return strings.TrimSuffix(buf.String(), "\r\n")
}
