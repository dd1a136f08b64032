package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lguibr/reminders/reminder"
)

var (
	// listenFor bounds how long listen waits; zero waits until interrupted.
	listenFor time.Duration

	listenCmd = &cobra.Command{
		Use:   "listen",
		Short: "Print completion notifications from a running server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if listenFor > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, listenFor)
				defer cancel()
			}

			out := cmd.OutOrStdout()
			return newAPIClient(serverURL).Listen(ctx, func(note reminder.EventNotification) {
				fmt.Fprintf(out, "%s\t%s\t%s\n", time.Now().Format(time.TimeOnly), note.Name, note.Description)
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	listenCmd.Flags().DurationVarP(&listenFor, "for", "f", 0, "stop listening after this long, 0 waits until interrupted")
}
