package scorepad

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ArchiveOptions holds flags for the archive command.
type ArchiveOptions struct {
	*RootOptions
	Title string
}

// NewArchiveCommand creates the archive command.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Archive the current game and reset the log",
		Long: `Archive the current game and reset the log.

The full event log is stored as an archived game, then the live log is
reseeded with the surviving rosters so the same players can start the
next game immediately. An empty log is reset without writing a record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "title for the archived game (default: finish date)")
	return cmd
}

func runArchive(cmd *cobra.Command, opts *ArchiveOptions) error {
	application, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer application.Close()

	record, err := application.archive.ArchiveCurrentGameAndReset(cmd.Context(), opts.Title)
	if err != nil {
		return err
	}
	if record.ID == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "log was empty; reset without archiving")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "archived game %s (%s)\n", record.ID, record.Title)
	return nil
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <game-id>",
		Short: "Replace the live log with an archived game",
		Long: `Replace the live log with an archived game's events, preserving their
original heights. The archived record stays in place; archive the
restored game again to re-save it after further play.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.archive.RestoreGame(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored game %s\n", args[0])
			return nil
		},
	}
	return cmd
}

// NewDeleteGameCommand creates the delete-game command.
func NewDeleteGameCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-game <game-id>",
		Short: "Permanently delete an archived game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.archive.DeleteGame(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted game %s\n", args[0])
			return nil
		},
	}
	return cmd
}
