package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterEmitsComponentField(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("ledger", &buf)

	log.Info().Str("op", "add").Msg("transaction added")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ledger", line["component"])
	assert.Equal(t, "add", line["op"])
	assert.Equal(t, "transaction added", line["message"])
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("workflow", &buf)

	ctx := WithContext(context.Background(), log)
	stored := FromContext(ctx)
	stored.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"workflow"`)
}

func TestFromContextFallsBack(t *testing.T) {
	// Must not panic or return a disabled logger when nothing is stored.
	log := FromContext(context.Background())
	assert.NotPanics(t, func() { log.Debug().Msg("fallback") })
}
