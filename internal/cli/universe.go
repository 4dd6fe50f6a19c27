package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"swing-trader/internal/notify"
	"swing-trader/internal/rotation"
	"swing-trader/internal/store"
	"swing-trader/pkg/utils"
)

// addUniverseCommands adds universe inspection commands.
func addUniverseCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "universe",
		Short: "Weekly trading universe",
		Long:  "Inspect the current universe and past selection cycles.",
	}

	cmd.AddCommand(newUniverseSelectCmd(app))
	cmd.AddCommand(newUniverseShowCmd(app))
	cmd.AddCommand(newUniverseHistoryCmd(app))

	rootCmd.AddCommand(cmd)
}

func newUniverseSelectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Run a selection cycle now",
		Long: `Run one universe selection cycle from stored candles for the
configured scan list, rotate the active set, and persist the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil || app.Selector == nil {
				return fmt.Errorf("application not fully initialized")
			}
			if len(app.Config.Universe.Scan) == 0 {
				return fmt.Errorf("universe.scan is empty, nothing to select from")
			}

			d := newDaemon(app, notify.NewTerminalNotifier(cmd.OutOrStdout()))
			if err := d.runSelection(cmd.Context(), rotation.TriggerScheduled); err != nil {
				return err
			}
			output.Success("Selection cycle completed")
			return nil
		},
	}
}

func newUniverseShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the latest selected universe",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not initialized")
			}

			result, err := app.Store.GetLatestUniverse(cmd.Context())
			if err != nil {
				return err
			}
			if result == nil {
				output.Dim("No universe selection recorded yet")
				return nil
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Bold("Universe selected %s", result.Timestamp.Format("2006-01-02"))
			output.Println()

			table := NewTable(output, "SYMBOL", "SECTOR", "PROXY", "BACKTEST", "FINAL")
			for _, sc := range result.Scored {
				table.AddRow(
					sc.Candidate.Symbol,
					sc.Candidate.Sector,
					fmt.Sprintf("%.3f", sc.ProxyScore),
					fmt.Sprintf("%.3f", sc.BacktestScore),
					fmt.Sprintf("%.3f", sc.FinalScore),
				)
			}
			table.Render()

			if len(result.RotationIn) > 0 {
				output.Success("In:  %s", utils.FormatSymbolList(result.RotationIn, 10))
			}
			if len(result.RotationOut) > 0 {
				output.Warning("Out: %s", utils.FormatSymbolList(result.RotationOut, 10))
			}
			return nil
		},
	}
}

func newUniverseHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past selection cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not initialized")
			}

			results, err := app.Store.GetUniverseHistory(cmd.Context(), store.UniverseFilter{Limit: limit})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(results)
			}

			if len(results) == 0 {
				output.Dim("No selection cycles recorded")
				return nil
			}

			table := NewTable(output, "DATE", "SIZE", "IN", "OUT")
			for _, r := range results {
				table.AddRow(
					r.Timestamp.Format("2006-01-02"),
					fmt.Sprintf("%d", len(r.Symbols)),
					fmt.Sprintf("%d", len(r.RotationIn)),
					fmt.Sprintf("%d", len(r.RotationOut)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 12, "maximum number of cycles to show")
	return cmd
}
