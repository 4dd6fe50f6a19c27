package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"swing-trader/internal/store"
)

// addRotationCommands adds rotation history and watchlist commands.
func addRotationCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "rotation",
		Short: "Universe rotation management",
		Long:  "Inspect applied rotations and the force-close watchlist.",
	}

	cmd.AddCommand(newRotationHistoryCmd(app))
	cmd.AddCommand(newWatchlistCmd(app))

	rootCmd.AddCommand(cmd)
}

func newRotationHistoryCmd(app *App) *cobra.Command {
	var limit int
	var trigger string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show applied rotation events",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not initialized")
			}

			events, err := app.Store.GetRotationEvents(cmd.Context(), store.RotationFilter{
				Trigger: trigger,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(events)
			}

			if len(events) == 0 {
				output.Dim("No rotations recorded")
				return nil
			}

			table := NewTable(output, "TIMESTAMP", "TRIGGER", "ACTIVE", "IN", "OUT", "WATCHLISTED")
			for _, e := range events {
				table.AddRow(
					e.Timestamp.Format("2006-01-02 15:04"),
					e.Trigger,
					fmt.Sprintf("%d", len(e.Activated)),
					fmt.Sprintf("%d", len(e.RotatedIn)),
					fmt.Sprintf("%d", len(e.RotatedOut)),
					fmt.Sprintf("%d", len(e.Watchlisted)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of events to show")
	cmd.Flags().StringVar(&trigger, "trigger", "", "filter by trigger (scheduled, regime_change, vix_spike)")
	return cmd
}

func newWatchlistCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watchlist",
		Short: "Show symbols awaiting force-close",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not initialized")
			}

			entries, err := app.Store.GetWatchlist(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(entries)
			}

			if len(entries) == 0 {
				output.Dim("Watchlist is empty")
				return nil
			}

			now := time.Now()
			table := NewTable(output, "SYMBOL", "ADDED", "DEADLINE", "STATUS", "REASON")
			for _, e := range entries {
				status := output.Green("pending")
				if e.Expired(now) {
					status = output.Red("expired")
				}
				table.AddRow(
					e.Symbol,
					e.AddedAt.Format("2006-01-02"),
					e.Deadline.Format("2006-01-02 15:04"),
					status,
					e.Reason,
				)
			}
			table.Render()
			return nil
		},
	}
}
