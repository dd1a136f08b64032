package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lguibr/reminders/logger"
	"github.com/lguibr/reminders/utils"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured log level when set.
	logLevel string
	// serverURL is the base URL the client commands talk to.
	serverURL string

	// rootCmd is the base command; every subcommand hangs off it.
	rootCmd = &cobra.Command{
		Use:   "reminders",
		Short: "Named reminders that fire after a timeout and notify every subscriber.",
		Long: `reminders runs an actor-based reminder service and talks to it.

"reminders serve" starts the service: a supervised coordinator, one timer
actor per pending event and an HTTP/WebSocket front end. The add, cancel,
list and listen commands are clients of a running server.`,
		SilenceUsage: true,
	}
)

// Execute runs the reminders CLI and exits with non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("path to configuration file (default %s if present)", utils.DefaultConfigFilename))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost"+utils.DefaultListenAddress,
		"base URL of a running reminders server")

	rootCmd.AddCommand(serveCmd, addCmd, cancelCmd, listCmd, listenCmd)
}

// loadConfig reads the configuration and applies the global log level.
func loadConfig() (utils.Config, error) {
	cfg, err := utils.LoadConfig(configPath)
	if err != nil {
		return utils.Config{}, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return utils.Config{}, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	logger.SetLevel(level)

	return cfg, nil
}
