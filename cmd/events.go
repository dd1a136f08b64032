package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lguibr/reminders/server"
)

var (
	// description attached to an added event.
	description string
	// timeout after which an added event fires.
	timeout time.Duration
	// deadline at which an added event fires, RFC3339.
	deadline string

	addCmd = &cobra.Command{
		Use:   "add <name>",
		Short: "Schedule a named event on a running server.",
		Long: `Schedule a named event. The event fires after --timeout (whole seconds)
or at --deadline (RFC3339). Adding an existing name replaces it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := server.AddEventBody{
				Name:        args[0],
				Description: description,
				Timeout:     int64(timeout / time.Second),
				Deadline:    deadline,
			}
			if err := newAPIClient(serverURL).AddEvent(cmd.Context(), body); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", args[0])
			return nil
		},
	}

	cancelCmd = &cobra.Command{
		Use:   "cancel <name>",
		Short: "Cancel a pending event on a running server.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient(serverURL).Cancel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled %s\n", args[0])
			return nil
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List pending events on a running server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := newAPIClient(serverURL).Events(cmd.Context())
			if err != nil {
				return err
			}
			return printEvents(cmd.OutOrStdout(), view)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	addCmd.Flags().StringVarP(&description, "description", "d", "", "event description")
	addCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "fire after this long, e.g. 90s or 10m")
	addCmd.Flags().StringVar(&deadline, "deadline", "", "fire at this RFC3339 time, overrides --timeout")
	addCmd.MarkFlagsOneRequired("timeout", "deadline")
}

func printEvents(out io.Writer, view server.EventsView) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFIRES AT\tDESCRIPTION")
	for _, ev := range view.Events {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ev.Name, ev.FiresAt.Local().Format(time.RFC3339), ev.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d pending, %d subscribers\n", len(view.Events), view.Subscribers)
	return err
}
