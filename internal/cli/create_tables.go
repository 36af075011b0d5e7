package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"metabulo/internal/infrastructure"
	"metabulo/internal/storage"
)

func newCreateTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-tables",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := envFrom(cmd)
			ctx := cmd.Context()

			store, err := storage.Open(ctx, e.cfg.Database, e.logger)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return err
			}

			version, err := store.MigrationVersion(ctx)
			if err != nil {
				return err
			}

			infrastructure.WithComponent(e.logger, "create_tables").InfoContext(ctx, "schema ready",
				slog.String("driver", store.Driver()),
				slog.Int64("version", version))
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema version %d\n", store.Driver(), version)
			return nil
		},
	}
}
