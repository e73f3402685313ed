package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Transport TransportConfig `mapstructure:"transport"`
	Stream    StreamConfig    `mapstructure:"stream"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile  string `mapstructure:"log_file"`
	Preserve bool   `mapstructure:"preserve"`
	Level    string `mapstructure:"level"`
}

// TransportConfig holds the chat backend connection settings
type TransportConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
	Token   string        `mapstructure:"token"`
}

// StreamConfig holds stream consumption settings
type StreamConfig struct {
	// ReadSize is the maximum fragment size read from the response body.
	ReadSize int `mapstructure:"read_size"`
	// WatchBuffer is the channel capacity for live snapshot watchers.
	WatchBuffer int `mapstructure:"watch_buffer"`
}

// EnvPrefix is the prefix for environment variable overrides (SANBAO_TRANSPORT_BASE_URL etc.)
const EnvPrefix = "SANBAO"

var cfg *Config

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// IsLoaded reports whether Load has completed successfully
func IsLoaded() bool {
	return cfg != nil
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}

		viper.AddConfigPath("./.sanbao")                            // Project directory first
		viper.AddConfigPath(filepath.Join(xdgConfigHome, "sanbao")) // Then XDG config location
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine, defaults and environment still apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(loaded); err != nil {
		return nil, err
	}

	cfg = loaded
	return cfg, nil
}

// SetDefaults sets all default configuration values
func SetDefaults() {
	viper.SetDefault("logging.log_file", "./.sanbao/system.log")
	viper.SetDefault("logging.preserve", false)
	viper.SetDefault("logging.level", "info")

	viper.SetDefault("transport.base_url", "http://localhost:8080")
	viper.SetDefault("transport.path", "/api/chat")
	viper.SetDefault("transport.timeout", "5m")
	viper.SetDefault("transport.token", "")

	viper.SetDefault("stream.read_size", 4096)
	viper.SetDefault("stream.watch_buffer", 16)
}

func validate(c *Config) error {
	if c.Stream.ReadSize <= 0 {
		return fmt.Errorf("invalid stream.read_size: %d", c.Stream.ReadSize)
	}
	if c.Stream.WatchBuffer < 0 {
		return fmt.Errorf("invalid stream.watch_buffer: %d", c.Stream.WatchBuffer)
	}
	if c.Transport.Timeout < 0 {
		return fmt.Errorf("invalid transport.timeout: %s", c.Transport.Timeout)
	}
	return nil
}
