package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mistralhub", cfg.ServiceName)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, ":9091", cfg.MetricsAddr())
	assert.Equal(t, "https://api.mistral.ai/v1", cfg.MistralBaseURL)
	assert.Equal(t, 120*time.Second, cfg.RelayStreamTimeout)
	assert.False(t, cfg.StrictModelCatalog)
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:3000")
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "test-key")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("METRICS_PORT", "0")
	t.Setenv("RELAY_STREAM_TIMEOUT", "0s")
	t.Setenv("STRICT_MODEL_CATALOG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "", cfg.MetricsAddr())
	assert.Equal(t, time.Duration(0), cfg.RelayStreamTimeout)
	assert.True(t, cfg.StrictModelCatalog)
}

func TestValidate(t *testing.T) {
	base := Config{HTTPPort: 8080, MetricsPort: 9091, MistralBaseURL: "https://api.mistral.ai/v1"}
	require.NoError(t, base.Validate())

	samePorts := base
	samePorts.MetricsPort = 8080
	assert.Error(t, samePorts.Validate())

	badURL := base
	badURL.MistralBaseURL = "api.mistral.ai"
	assert.Error(t, badURL.Validate())

	negative := base
	negative.RelayStreamTimeout = -time.Second
	assert.Error(t, negative.Validate())
}
