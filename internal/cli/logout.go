package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arklim/riskdash-client/internal/infra/app"
)

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the server session and clear local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(rootOpts.Config, nil)
			if err != nil {
				return err
			}
			defer func() { _ = application.Close(cmd.Context()) }()

			// Best-effort remote revocation; local teardown always runs.
			application.Coordinator.Logout(cmd.Context())

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
