package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arklim/riskdash-client/internal/core/domain"
	"github.com/arklim/riskdash-client/internal/infra/app"
	"github.com/arklim/riskdash-client/internal/infra/logger"
)

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	*RootOptions
	Email    string
	Password string
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the dashboard backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *LoginOptions) error {
	application, err := app.New(opts.Config, nil)
	if err != nil {
		return err
	}
	defer func() { _ = application.Close(cmd.Context()) }()

	identity, err := application.Coordinator.Login(cmd.Context(), domain.Credentials{
		Email:    opts.Email,
		Password: opts.Password,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s (%s, role %s)\n",
		identity.FullName(), logger.MaskEmail(identity.Email), identity.Role)
	return nil
}
