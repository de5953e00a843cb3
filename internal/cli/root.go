// Package cli implements the riskdash command line client: login/logout
// against the dashboard backend, a notification watch loop, and the local
// stub backend.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/arklim/riskdash-client/internal/infra/config"
)

// RootOptions carries state shared by all subcommands.
type RootOptions struct {
	Config *config.AppConfig
}

// NewRootCommand creates the riskdash root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "riskdash",
		Short: "Client for the transaction-risk dashboard backend",
		Long: `riskdash talks to the transaction-risk dashboard backend: it manages the
authenticated session, polls for notifications, and raises alerts for newly
arrived high and medium priority items.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.Config = cfg
			return nil
		},
	}

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewStubCommand(opts))

	return cmd
}
