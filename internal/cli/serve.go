package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"metabulo/internal/app"
)

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Start the HTTP API and block until interrupted.

The schema is not created here; run create-tables against the database first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := envFrom(cmd)
			if cmd.Flags().Changed("port") {
				e.cfg.Server.Port = port
			}

			application, err := app.New(cmd.Context(), e.cfg, e.logger)
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}
			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}
