package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(Options{Level: "info", Format: "xml"})
	require.Error(t, err)

	_, err = New(Options{Level: "loud", Format: "json"})
	require.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	log, err := New(Options{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log.Info().Str("component", "test").Msg("hello file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())
}
