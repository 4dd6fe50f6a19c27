package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"swing-trader/internal/regime"
)

// addRegimeCommands adds regime classification and history commands.
func addRegimeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "regime",
		Short: "Market regime classification",
		Long:  "Classify the market regime from index metrics and inspect regime history.",
	}

	cmd.AddCommand(newRegimeClassifyCmd(app))
	cmd.AddCommand(newRegimeStatusCmd(app))
	cmd.AddCommand(newRegimeHistoryCmd(app))
	cmd.AddCommand(newRegimeWeightsCmd(app))

	rootCmd.AddCommand(cmd)
}

func newRegimeClassifyCmd(app *App) *cobra.Command {
	var adx, bbWidth, bbWidthAvg, atrRatio float64

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a regime from index metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Detector == nil {
				return fmt.Errorf("detector not initialized")
			}

			result := app.Detector.Classify(adx, bbWidth, bbWidthAvg, atrRatio)
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"regime":  string(result),
					"weights": app.Detector.Weights(result),
				})
			}

			output.Printf("Regime: %s\n\n", output.RegimeTag(string(result)))
			output.Bold("Strategy Weights")
			table := NewTable(output, "STRATEGY", "WEIGHT")
			for _, strategy := range regime.RegisteredStrategies() {
				table.AddRow(strategy, fmt.Sprintf("%.2f", app.Detector.Weight(result, strategy)))
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().Float64Var(&adx, "adx", 0, "index ADX value")
	cmd.Flags().Float64Var(&bbWidth, "bb-width", 0, "current Bollinger band width")
	cmd.Flags().Float64Var(&bbWidthAvg, "bb-width-avg", 0, "average Bollinger band width")
	cmd.Flags().Float64Var(&atrRatio, "atr-ratio", 0, "index ATR / close ratio")
	cmd.MarkFlagRequired("adx")
	cmd.MarkFlagRequired("bb-width")
	cmd.MarkFlagRequired("bb-width-avg")

	return cmd
}

func newRegimeStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the most recently confirmed regime",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not initialized")
			}

			current, timestamp, err := app.Store.GetLatestRegime(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"regime":       string(current),
					"confirmed_at": timestamp,
				})
			}

			output.Printf("Confirmed regime: %s\n", output.RegimeTag(string(current)))
			if !timestamp.IsZero() {
				output.Dim("Confirmed at: %s", timestamp.Format(time.RFC3339))
			} else {
				output.Dim("No transitions recorded yet")
			}
			return nil
		},
	}
}

func newRegimeHistoryCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show confirmed regime transitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not initialized")
			}

			to := time.Now()
			from := to.AddDate(0, 0, -days)
			transitions, err := app.Store.GetRegimeTransitions(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(transitions)
			}

			if len(transitions) == 0 {
				output.Dim("No transitions in the last %d days", days)
				return nil
			}

			table := NewTable(output, "TIMESTAMP", "FROM", "TO")
			for _, t := range transitions {
				table.AddRow(
					t.Timestamp.Format("2006-01-02 15:04"),
					output.RegimeTag(string(t.Previous)),
					output.RegimeTag(string(t.Current)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "lookback window in days")
	return cmd
}

func newRegimeWeightsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "weights",
		Short: "Show the strategy weight table",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Detector == nil {
				return fmt.Errorf("detector not initialized")
			}

			table := app.Detector.WeightTable()
			if output.IsJSON() {
				return output.JSON(table)
			}

			strategies := regime.RegisteredStrategies()
			headers := append([]string{"STRATEGY"}, regimeNames()...)
			out := NewTable(output, headers...)
			for _, strategy := range strategies {
				row := []string{strategy}
				for _, r := range regime.AllRegimes() {
					row = append(row, fmt.Sprintf("%.2f", table[r][strategy]))
				}
				out.AddRow(row...)
			}
			out.Render()
			return nil
		},
	}
}

func regimeNames() []string {
	regimes := regime.AllRegimes()
	names := make([]string, len(regimes))
	for i, r := range regimes {
		names[i] = string(r)
	}
	return names
}
