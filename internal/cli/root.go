// Package cli provides the command-line interface for metabulo.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"metabulo/internal/config"
	"metabulo/internal/infrastructure"
	"metabulo/pkg/contracts"
)

// envKey carries the loaded configuration and logger through the command context
type envKey struct{}

// env is what every subcommand needs
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "metabulo",
		Short: "metabulo - metabolomics table processing",
		Long: `metabulo stores uploaded metabolomics tables, lets clients label their
rows and columns, validates them and applies normalization, transformation
and scaling before download. It can also process a local file offline.`,
		Version: contracts.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			// Only serve keeps stdout for logs; the others write results there
			if cmd.Name() != "serve" && cfg.Logging.Output == "console" {
				cfg.Logging.Output = "stderr"
			}

			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			// One trace ID correlates every log line of an invocation
			ctx := infrastructure.EnsureTraceID(cmd.Context())
			ctx = context.WithValue(ctx, envKey{}, &env{cfg: cfg, logger: logger})
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = infrastructure.CloseLogFile()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml, then ./configs/config.yaml)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newCreateTablesCommand())
	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

// newLogger installs the process-wide logger for serve. Other commands get
// their own so that repeated in-process runs do not share one.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	if cmd.Name() == "serve" {
		return infrastructure.InitializeLogger(cfg.Logging)
	}
	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

func envFrom(cmd *cobra.Command) *env {
	if e, ok := cmd.Context().Value(envKey{}).(*env); ok {
		return e
	}
	return &env{cfg: config.Default(), logger: slog.Default()}
}
