package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_JSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	Initialize("warn", "json", &buf)

	log := For("store")
	log.Info().Msg("hidden")
	log.Warn().Str("vault", "beefy-weth").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "exactly one JSON line expected, got %q", buf.String())
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "beefy-weth", entry["vault"])
	assert.Equal(t, "shown", entry["message"])
}

func TestInitialize_UnknownLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	Initialize("chatty", "console", &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Get().Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}
