package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/datapull/internal/config"
	"github.com/nao1215/datapull/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for datapull.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datapull",
		Short: "Download and preview tabular datasets",
		Long: `datapull downloads tabular datasets and prints a short preview.

Remote files may be CSV, JSON, Parquet, XLSX or XLS, optionally wrapped in a
zip or tar.gz archive holding exactly one file. Credentials and locations are
read from the environment (or a .env file):

  DATA_ROOT       directory containing local dataset folders
  DATA_BASE_URL   prefix for relative dataset paths
  DATA_API_TOKEN  sent as "Authorization: Bearer <token>"
  DATA_USERNAME   HTTP basic auth user (with DATA_PASSWORD)
  DATA_PASSWORD   HTTP basic auth password`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("env-file", "e", "",
		"Environment file path (default: .env in current directory or XDG config directory)")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Dataset registry path (default: .datapull.yaml in current or home directory)")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	// Add subcommands
	cmd.AddCommand(NewPullCmd())
	cmd.AddCommand(NewHiggsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getBoolFlag retrieves a flag from the command or, failing that, the
// root's persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getStringFlag is the string counterpart of getBoolFlag.
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// setupLogger creates the secure logger writing to the command's stderr.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getBoolFlag(cmd, "verbose")
	if getBoolFlag(cmd, "log-json") {
		return log.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}

// loadSettings loads the .env file, if any, and reads Settings from the
// environment. An env file named by cfg.EnvFilePath must exist.
func loadSettings(cfg *config.Config, logger *slog.Logger) (config.Settings, error) {
	explicit := cfg.EnvFilePath
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return config.Settings{}, fmt.Errorf("env file not found: %s", explicit)
		}
	}

	path := config.FindEnvFile(explicit)
	if err := config.LoadEnvFile(path); err != nil {
		return config.Settings{}, err
	}

	settings := config.SettingsFromEnv()
	logger.Debug("settings loaded", "env_file", path, "settings", settings)
	return settings, nil
}

// loadRegistry loads the dataset registry. A registry named by
// cfg.ConfigFilePath must exist; otherwise a missing registry yields an
// empty one.
func loadRegistry(cfg *config.Config) (*config.File, error) {
	explicit := cfg.ConfigFilePath
	path := config.FindConfigFile(explicit)

	switch {
	case path != "":
		cf, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		return cf, nil
	case explicit != "":
		return nil, fmt.Errorf("configuration file not found: %s", explicit)
	default:
		return &config.File{Datasets: make(map[string]config.DatasetConfig)}, nil
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
