package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, false, "debug")
	log.Debug().Str("component", "test").Msg("hello")

	record := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["message"])
	assert.Equal(t, "test", record["component"])
	assert.Contains(t, record, "time")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, false, "chatty")
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
}

func TestNew_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, true, "info")
	log.Info().Msg("readable")
	assert.Contains(t, buf.String(), "readable")
	assert.False(t, json.Valid(buf.Bytes()))
}
