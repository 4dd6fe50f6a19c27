package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"swing-trader/internal/allocation"
	"swing-trader/internal/models"
	"swing-trader/internal/regime"
	"swing-trader/pkg/utils"
)

// addStatusCommands adds the summary and position sizing commands.
func addStatusCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStatusCmd(app))
	rootCmd.AddCommand(newSizeCmd(app))
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show a summary of the decision core state",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not initialized")
			}

			ctx := cmd.Context()
			current, confirmedAt, err := app.Store.GetLatestRegime(ctx)
			if err != nil {
				return err
			}
			latest, err := app.Store.GetLatestUniverse(ctx)
			if err != nil {
				return err
			}
			watchlist, err := app.Store.GetWatchlist(ctx)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				summary := map[string]interface{}{
					"regime":         string(current),
					"confirmed_at":   confirmedAt,
					"watchlist_size": len(watchlist),
				}
				if latest != nil {
					summary["universe"] = latest.Symbols
					summary["selected_at"] = latest.Timestamp
				}
				return output.JSON(summary)
			}

			output.Printf("Regime:    %s\n", output.RegimeTag(string(current)))
			if latest != nil {
				output.Printf("Universe:  %d symbols (selected %s)\n",
					len(latest.Symbols), latest.Timestamp.Format("2006-01-02"))
				output.Dim("  %s", utils.FormatSymbolList(latest.Symbols, 12))
			} else {
				output.Printf("Universe:  %s\n", output.Yellow("not selected"))
			}
			output.Printf("Watchlist: %d symbols\n", len(watchlist))
			return nil
		},
	}
}

func newSizeCmd(app *App) *cobra.Command {
	var (
		strategy   string
		regimeName string
		direction  string
		price      float64
		equity     float64
		atr        float64
	)

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Compute a position size",
		Long: `Compute the share quantity for a candidate entry from the account
equity, the regime-specific strategy weight, and the ATR risk cap.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Engine == nil {
				return fmt.Errorf("allocation engine not initialized")
			}

			r := regime.Regime(strings.ToUpper(regimeName))
			if !r.Valid() {
				return fmt.Errorf("unknown regime %q", regimeName)
			}
			dir := models.SignalLong
			if strings.EqualFold(direction, "short") {
				dir = models.SignalShort
			}

			shares := app.Engine.PositionSize(allocation.SizeRequest{
				Strategy:  strategy,
				Price:     price,
				Equity:    equity,
				Regime:    r,
				ATR:       atr,
				Direction: dir,
			})

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"shares": shares,
					"value":  float64(shares) * price,
				})
			}

			if shares == 0 {
				output.Warning("No position: allocation below minimum position value")
				return nil
			}
			output.Printf("Shares: %d\n", shares)
			output.Printf("Value:  %s\n", utils.FormatUSD(float64(shares)*price))
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "strategy name")
	cmd.Flags().StringVar(&regimeName, "regime", "", "current market regime")
	cmd.Flags().StringVar(&direction, "direction", "long", "long or short")
	cmd.Flags().Float64Var(&price, "price", 0, "entry price")
	cmd.Flags().Float64Var(&equity, "equity", 0, "account equity")
	cmd.Flags().Float64Var(&atr, "atr", 0, "average true range (optional)")
	cmd.MarkFlagRequired("strategy")
	cmd.MarkFlagRequired("regime")
	cmd.MarkFlagRequired("price")
	cmd.MarkFlagRequired("equity")

	return cmd
}
