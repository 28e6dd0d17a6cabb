package scorepad

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/louisbranch/scorepad/internal/scorepad/domain/state"
)

// StateOptions holds flags for the state command.
type StateOptions struct {
	*RootOptions
	Height uint64
}

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the derived state as JSON",
		Long: `Print the derived state as JSON. By default the state at the log's
current end; pass --height to reconstruct the state as of an earlier
height instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(cmd, opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.Height, "height", 0, "reconstruct state as of this height (0 = current)")
	return cmd
}

func runState(cmd *cobra.Command, opts *StateOptions) error {
	application, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := cmd.Context()
	if err := application.rehydrate(ctx); err != nil {
		return err
	}

	var (
		current state.AppState
		height  uint64
	)
	if opts.Height > 0 {
		current, err = application.engine.StateAtHeight(ctx, opts.Height)
		if err != nil {
			return err
		}
		height = opts.Height
	} else {
		current = application.engine.GetState()
		height = application.engine.GetHeight()
	}

	encoded, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "height %d\n%s\n", height, encoded)
	return nil
}
