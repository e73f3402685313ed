package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "http://localhost:8080", cfg.Transport.BaseURL)
	assert.Equal(t, "/api/chat", cfg.Transport.Path)
	assert.Equal(t, 5*time.Minute, cfg.Transport.Timeout)
	assert.Equal(t, 4096, cfg.Stream.ReadSize)
	assert.Equal(t, 16, cfg.Stream.WatchBuffer)
	assert.Equal(t, "./.sanbao/system.log", cfg.Logging.LogFile)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Preserve)
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "test-settings.yaml")

	configContent := `
transport:
  base_url: https://api.sanbao.test
  timeout: "2m"
stream:
  read_size: 512
logging:
  log_file: /tmp/test.log
  preserve: true
  level: debug
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	viper.Reset()

	cfg, err := Load(configFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://api.sanbao.test", cfg.Transport.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.Transport.Timeout)
	assert.Equal(t, "/api/chat", cfg.Transport.Path, "unset keys keep defaults")
	assert.Equal(t, 512, cfg.Stream.ReadSize)
	assert.Equal(t, "/tmp/test.log", cfg.Logging.LogFile)
	assert.True(t, cfg.Logging.Preserve)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	viper.Reset()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.Stream.ReadSize)
}

func TestEnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("SANBAO_TRANSPORT_BASE_URL", "http://env-host:9000")
	t.Setenv("SANBAO_STREAM_WATCH_BUFFER", "4")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://env-host:9000", cfg.Transport.BaseURL)
	assert.Equal(t, 4, cfg.Stream.WatchBuffer)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		expectErr bool
	}{
		{
			name:      "valid",
			config:    &Config{Stream: StreamConfig{ReadSize: 1, WatchBuffer: 0}},
			expectErr: false,
		},
		{
			name:      "zero read size",
			config:    &Config{Stream: StreamConfig{ReadSize: 0}},
			expectErr: true,
		},
		{
			name:      "negative watch buffer",
			config:    &Config{Stream: StreamConfig{ReadSize: 10, WatchBuffer: -1}},
			expectErr: true,
		},
		{
			name: "negative timeout",
			config: &Config{
				Stream:    StreamConfig{ReadSize: 10},
				Transport: TransportConfig{Timeout: -time.Second},
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.config)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGet(t *testing.T) {
	cfg = nil

	assert.Panics(t, func() {
		Get()
	})
	assert.False(t, IsLoaded())

	viper.Reset()
	_, err := Load("")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		c := Get()
		assert.NotNil(t, c)
	})
	assert.True(t, IsLoaded())
}

func TestBuildSettingsPath(t *testing.T) {
	viper.Reset()
	viper.Set("config.path", "/etc/sanbao")

	assert.Equal(t, "/etc/sanbao/system.log", BuildSettingsPath("system.log"))
}
