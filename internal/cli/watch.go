package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arklim/riskdash-client/internal/core/domain"
	"github.com/arklim/riskdash-client/internal/infra/app"
	"github.com/arklim/riskdash-client/internal/state"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Email    string
	Password string
}

// NewWatchCommand creates the watch command: it authenticates, then keeps
// the notification store synchronized and prints alerts until interrupted.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll notifications and print alerts for new arrivals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(opts.Config, &terminalAlerter{out: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer func() { _ = application.Close(context.Background()) }()

	identity, err := application.Coordinator.Login(ctx, domain.Credentials{
		Email:    opts.Email,
		Password: opts.Password,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Watching notifications for %s (ctrl-c to stop)\n", identity.FullName())

	unsubscribe := application.Notifications.Subscribe(func(snap state.NotificationSnapshot) {
		fmt.Fprintf(cmd.OutOrStdout(), "   %d notifications, %d unread\n",
			len(snap.Notifications), snap.UnreadCount)
	})
	defer unsubscribe()

	stop := application.Sync.Watch(ctx)
	defer stop()

	<-ctx.Done()

	// Clean logout so the server session does not outlive the watcher.
	application.Coordinator.Logout(context.Background())
	return nil
}
