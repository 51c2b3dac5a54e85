package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToBuffers(t *testing.T) {
	t.Setenv(FormatEnv, "")
	var buf bytes.Buffer
	l, err := New(&buf, "info", "assign")
	require.NoError(t, err)
	l.Debug().Msg("hidden")
	l.Warn().Str("slot", "Garbage").Msg("could not parse")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"component":"assign"`)
	assert.Contains(t, out, `"slot":"Garbage"`)
}

func TestNewConsoleFormat(t *testing.T) {
	t.Setenv(FormatEnv, "console")
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	l, err := New(&buf, "debug", "stats")
	require.NoError(t, err)
	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, lvl)

	_, err = ParseLevel("loud")
	require.Error(t, err)

	_, err = New(&bytes.Buffer{}, "loud", "x")
	require.Error(t, err)
}
