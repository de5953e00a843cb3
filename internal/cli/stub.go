package cli

import (
	"github.com/spf13/cobra"

	"github.com/arklim/riskdash-client/internal/infra/logger"
	"github.com/arklim/riskdash-client/internal/stubserver"
)

// NewStubCommand creates the stub command, which serves the local
// development backend.
func NewStubCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stub",
		Short: "Run the local stub backend",
		Long: `Serve an in-memory stand-in for the dashboard backend. With seeding
enabled (the default) a demo account exists as ` + stubserver.SeedEmail + `
with password ` + stubserver.SeedPassword + `.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(rootOpts.Config.App.Env)
			if err != nil {
				return err
			}

			server := stubserver.New(stubserver.Options{
				JWTSecret:  rootOpts.Config.Stub.JWTSecret,
				SessionTTL: rootOpts.Config.Stub.SessionTTL,
				Env:        rootOpts.Config.App.Env,
				Logger:     log,
				Seed:       rootOpts.Config.Stub.Seed,
			})

			return server.Run(rootOpts.Config.Stub.Addr)
		},
	}
}
