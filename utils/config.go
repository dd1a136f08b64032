// File: utils/config.go
package utils

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFilename is the file looked up when no path is given.
	DefaultConfigFilename = "reminders.yaml"
	// DefaultRequestTimeout bounds every request/reply exchange.
	DefaultRequestTimeout = 5 * time.Second
	// DefaultListenAddress is where the HTTP server listens.
	DefaultListenAddress = ":3001"
	// DefaultShutdownTimeout bounds engine and HTTP shutdown.
	DefaultShutdownTimeout = 2 * time.Second
	// DefaultRestartWindow is the window MaxRestarts is counted over.
	DefaultRestartWindow = 5 * time.Second
)

var errNegativeRestarts = errors.New("supervisor.max_restarts must not be negative")

// Config holds all configurable service parameters.
type Config struct {
	// ListenAddress is the HTTP/WebSocket listen address.
	ListenAddress string `yaml:"listen_address"`
	// RequestTimeout bounds client calls and timer cancellation.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// ShutdownTimeout bounds graceful shutdown of the server and the engine.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Supervisor controls coordinator restarts.
	Supervisor SupervisorConfig `yaml:"supervisor"`
}

// SupervisorConfig is the restart intensity of the supervisor.
type SupervisorConfig struct {
	// MaxRestarts is the number of restarts tolerated within RestartWindow.
	// Zero restarts forever.
	MaxRestarts int `yaml:"max_restarts"`
	// RestartWindow is the sliding window MaxRestarts applies to.
	RestartWindow time.Duration `yaml:"restart_window"`
}

// DefaultConfig returns a Config struct with default values.
func DefaultConfig() Config {
	return Config{
		ListenAddress:   DefaultListenAddress,
		RequestTimeout:  DefaultRequestTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		LogLevel:        "info",
		Supervisor: SupervisorConfig{
			MaxRestarts:   0,
			RestartWindow: DefaultRestartWindow,
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. A missing file at
// the default location is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks cfg and fills zero values with defaults.
func Validate(cfg *Config) error {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", cfg.ListenAddress, err)
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Supervisor.MaxRestarts < 0 {
		return errNegativeRestarts
	}
	if cfg.Supervisor.RestartWindow <= 0 {
		cfg.Supervisor.RestartWindow = DefaultRestartWindow
	}

	return nil
}
