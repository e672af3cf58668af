// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devjuank/FinanceService/internal/config"
	"github.com/devjuank/FinanceService/internal/container"
	"github.com/devjuank/FinanceService/internal/logging"
)

// GlobalFlags holds the flags shared by every command.
type GlobalFlags struct {
	ConfigFile   string
	LogLevel     string
	LogFormat    string
	ReportFormat string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.NewLogrusAdapter("info", "text")

	// AppConfig is loaded before any subcommand runs.
	AppConfig *config.Config

	// AppContainer is built on first use by GetContainer so subcommands can
	// adjust AppConfig from their own flags first.
	AppContainer *container.Container

	// Flags holds the persistent flag values.
	Flags = GlobalFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "finledger",
		Short: "Consolidate and reconcile bank, wallet and card statements into one ledger.",
		Long: `finledger reads statements from every configured source, normalizes them into
one transaction ledger, removes duplicates, applies categorization rules and
neutralizes transfers between your own accounts.`,
		SilenceUsage:      true,
		PersistentPreRunE: persistentPreRun,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to release resources")
			}
			AppContainer = nil
		},
	}
)

func init() {
	Cmd.PersistentFlags().StringVar(&Flags.ConfigFile, "config", "", "Config file (default is ./config.yaml or $HOME/.finledger/config.yaml)")
	Cmd.PersistentFlags().StringVar(&Flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&Flags.LogFormat, "log-format", "", "Log format (text, json)")
	Cmd.PersistentFlags().StringVar(&Flags.ReportFormat, "report-format", "text", "Run report format (text, json)")
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.InitializeConfig(Flags.ConfigFile)
	if err != nil {
		return err
	}
	if Flags.LogLevel != "" {
		cfg.Log.Level = Flags.LogLevel
	}
	if Flags.LogFormat != "" {
		cfg.Log.Format = Flags.LogFormat
	}

	AppConfig = cfg
	AppContainer = nil
	Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	Log.Debug("Configuration loaded", logging.F("sources", len(cfg.Sources)))
	return nil
}

// GetConfig returns the loaded configuration, or nil before the root
// command has run.
func GetConfig() *config.Config {
	return AppConfig
}

// GetLogger returns the shared command logger.
func GetLogger() logging.Logger {
	return Log
}

// GetContainer builds the container from AppConfig on first use.
func GetContainer() (*container.Container, error) {
	if AppContainer != nil {
		return AppContainer, nil
	}
	if AppConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	c, err := container.NewContainer(AppConfig, container.WithLogger(Log))
	if err != nil {
		return nil, err
	}
	AppContainer = c
	return c, nil
}
