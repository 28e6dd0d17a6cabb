package scorepad

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	After uint64
	Limit int
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print events from the log, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.After, "after", 0, "only events above this height")
	cmd.Flags().IntVar(&opts.Limit, "limit", 100, "maximum number of events to print")
	return cmd
}

func runLog(cmd *cobra.Command, opts *LogOptions) error {
	application, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer application.Close()

	events, err := application.store.ListEvents(cmd.Context(), opts.After, opts.Limit)
	if err != nil {
		return err
	}
	for _, evt := range events {
		line, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %d: %w", evt.Height, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(line))
	}
	return nil
}
