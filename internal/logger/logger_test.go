package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json")
	log.Info().Str("component", "grading_service").Msg("graded")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "graded", line["message"])
	assert.Equal(t, "grading_service", line["component"])
	assert.Contains(t, line, "time")
	assert.Contains(t, line, "caller")
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	prettyLog := New(&buf, "pretty")
	prettyLog.Info().Msg("graded")
	assert.Contains(t, buf.String(), "graded")
	assert.False(t, json.Valid(buf.Bytes()))

	// A buffer is never a terminal.
	buf.Reset()
	autoLog := New(&buf, "auto")
	autoLog.Info().Msg("graded")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
