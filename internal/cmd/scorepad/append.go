package scorepad

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/louisbranch/scorepad/internal/platform/id"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
)

// AppendOptions holds flags for the append command.
type AppendOptions struct {
	*RootOptions
	EventID string
	Payload string
}

// NewAppendCommand creates the append command.
func NewAppendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AppendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "append <type> [payload-json]",
		Short: "Append one event to the log",
		Long: `Append one event to the log and print its assigned height.

The event id defaults to a fresh random id; pass --id to retry a previous
append idempotently. Re-appending a committed id prints the original
height without writing a duplicate.

Example:
  scorepad append player.added '{"player_id":"p1","name":"Ada"}'
  scorepad append round.bid_set '{"round":1,"player_id":"p1","bid":3}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppend(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.EventID, "id", "", "event id for idempotent retries (default: random)")
	return cmd
}

func runAppend(cmd *cobra.Command, opts *AppendOptions, args []string) error {
	application, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := cmd.Context()
	if err := application.rehydrate(ctx); err != nil {
		return err
	}

	eventID := opts.EventID
	if eventID == "" {
		eventID, err = id.NewID()
		if err != nil {
			return err
		}
	}
	var payload []byte
	if len(args) > 1 {
		payload = []byte(args[1])
	}

	height, err := application.engine.Append(ctx, event.Event{
		EventID:     eventID,
		Type:        event.Type(args[0]),
		PayloadJSON: payload,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "height %d (event %s)\n", height, eventID)
	return nil
}
