// Package scorepad implements the scorepad CLI: append events, inspect
// state and the log, and manage archived games.
package scorepad

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	DBPath     string
	SignalPath string
	Verbose    bool
}

// NewRootCommand creates the scorepad root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "scorepad",
		Short:         "Local-first event log for trick-taking scorecards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (default $SCOREPAD_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.SignalPath, "signal", "", "path to the cross-process signal file (default <db>.signal)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewAppendCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewArchiveCommand(opts))
	cmd.AddCommand(NewGamesCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewDeleteGameCommand(opts))

	return cmd
}
