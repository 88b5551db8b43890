package bootstrap

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clustermaster/clustermaster-ui/config"
)

func TestGetEnabledServices(t *testing.T) {
	tests := []struct {
		name     string
		services string
		want     []string
	}{
		{"stable order", "refresh,http,notifications", []string{"http", "notifications", "refresh"}},
		{"single", "notifications", []string{"notifications"}},
		{"invalid", "http,rules-engine", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetEnabledServices(&config.AppConfig{Services: tt.services}))
		})
	}
	assert.Empty(t, GetEnabledServices(nil))
}

func TestValidateServiceConfig(t *testing.T) {
	require.Error(t, ValidateServiceConfig(nil))
	require.Error(t, ValidateServiceConfig(&config.AppConfig{Services: ""}))
	require.Error(t, ValidateServiceConfig(&config.AppConfig{Services: "scheduler"}))
	require.NoError(t, ValidateServiceConfig(&config.AppConfig{Services: "http"}))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVICES", "http")
	t.Setenv("BACKEND_URL", "http://backend.test:8000/")
	t.Setenv("HTTP_COMPRESSION_LEVEL", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Services)
	assert.Equal(t, "http://backend.test:8000", cfg.Backend.BaseURL, "sanitized")
	assert.Equal(t, 1, cfg.HTTP.CompressionLevel)
}

func TestLoadConfig_InvalidAuthMode(t *testing.T) {
	t.Setenv("AUTH_MODE", "kerberos")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "parse config")
}

func TestInitLoggerWritesJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := initLogger(&buf, slog.LevelInfo)
	logger.Debug("hidden")
	slog.Info("visible", "component", "test")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"visible"`)
	assert.Contains(t, buf.String(), `"component":"test"`)
}
