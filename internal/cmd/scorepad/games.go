package scorepad

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewGamesCommand creates the games command.
func NewGamesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "List archived games, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer application.Close()

			records, err := application.archive.ListGames(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no archived games")
				return nil
			}
			for _, record := range records {
				winner := record.Summary.WinnerID
				if name, ok := record.Summary.Players[winner]; ok {
					winner = name
				}
				if winner == "" {
					winner = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d events  %d players  winner: %s\n",
					record.ID,
					record.FinishedAt.Format("2006-01-02 15:04"),
					len(record.Bundle.Events),
					len(record.Summary.Players),
					winner,
				)
			}
			return nil
		},
	}
	return cmd
}
