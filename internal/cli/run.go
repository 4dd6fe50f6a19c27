package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"swing-trader/internal/analysis/indicators"
	"swing-trader/internal/logging"
	"swing-trader/internal/models"
	"swing-trader/internal/notify"
	"swing-trader/internal/resilience"
	"swing-trader/internal/rotation"
	"swing-trader/internal/scheduler"
	"swing-trader/internal/universe"
	"swing-trader/pkg/utils"
)

const (
	dailyTimeframe = "1day"
	// selectionLookbackDays covers the longest indicator warmup with slack.
	selectionLookbackDays = 250
)

// addRunCommand adds the long-running daemon command.
func addRunCommand(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the scheduled decision loop",
		Long: `Run the decision core as a daemon: weekly universe selection,
daily regime tracking, and force-close deadline scans, on the
configured schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(app)
		},
	})
}

func runDaemon(app *App) error {
	if app.Store == nil || app.Selector == nil {
		return fmt.Errorf("application not fully initialized, cannot run daemon")
	}
	if len(app.Config.Universe.Scan) == 0 {
		return fmt.Errorf("universe.scan is empty, nothing to select from")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.Selector.SetBreaker(resilience.NewCircuitBreaker("backtest", resilience.DefaultConfig()))
	notifier := notify.NewTerminalNotifier(os.Stdout)

	d := newDaemon(app, notifier)
	sched := scheduler.New(ctx, scheduler.Tasks{
		WeeklySelection: d.weeklySelection,
		DailyReview:     d.dailyRegimeCheck,
		ForceCloseScan:  d.forceCloseScan,
	}, logging.WithComponent(app.Logger, "scheduler"))

	cron := app.Config.Schedule
	if err := sched.RegisterAll(cron.WeeklyCron, cron.DailyCron, cron.ForceCloseCron); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()
	app.Logger.Info().
		Str("weekly", cron.WeeklyCron).
		Str("daily", cron.DailyCron).
		Str("force_close", cron.ForceCloseCron).
		Msg("Decision loop running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	app.Logger.Info().Msg("Shutting down")
	return nil
}

// daemon holds the task closures' shared state.
type daemon struct {
	app      *App
	notifier notify.Notifier
	now      func() time.Time
}

func newDaemon(app *App, notifier notify.Notifier) *daemon {
	return &daemon{app: app, notifier: notifier, now: time.Now}
}

func (d *daemon) weeklySelection(ctx context.Context) error {
	return d.runSelection(ctx, rotation.TriggerScheduled)
}

// runSelection runs one full selection cycle from stored bar histories and
// rotates the active universe.
func (d *daemon) runSelection(ctx context.Context, trigger string) error {
	app := d.app
	now := d.now().In(utils.NYLocation)
	from := now.AddDate(0, 0, -selectionLookbackDays)

	infos := make([]universe.SymbolInfo, 0, len(app.Config.Universe.Scan))
	bars := make(map[string][]models.Candle, len(app.Config.Universe.Scan))
	for _, entry := range app.Config.Universe.Scan {
		candles, err := app.Store.GetCandles(ctx, entry.Symbol, dailyTimeframe, from, now)
		if err != nil {
			return fmt.Errorf("loading candles for %s: %w", entry.Symbol, err)
		}
		infos = append(infos, universe.SymbolInfo{Symbol: entry.Symbol, Sector: entry.Sector})
		bars[entry.Symbol] = candles
	}

	var currentPool []string
	if previous, err := app.Store.GetLatestUniverse(ctx); err != nil {
		return fmt.Errorf("loading previous universe: %w", err)
	} else if previous != nil {
		currentPool = previous.Symbols
	}

	// Without a broker feed the only positions the decision core knows to
	// be held are the watchlisted exits. Active symbols are eligibility,
	// not holdings, so pinning them would freeze every later rotation.
	held := app.Manager.WatchlistSymbols()

	result, err := app.Selector.Select(infos, bars, currentPool, held)
	if err != nil {
		d.notifier.Error("weekly selection", err)
		return err
	}
	if err := app.Store.SaveUniverseResult(ctx, result); err != nil {
		return fmt.Errorf("saving universe result: %w", err)
	}

	event, err := app.Manager.ApplyRotation(result, held, 0, trigger)
	if err != nil {
		d.notifier.Error("rotation", err)
		return err
	}
	if err := app.Store.SaveRotationEvent(ctx, &event); err != nil {
		return fmt.Errorf("saving rotation event: %w", err)
	}
	for _, symbol := range event.Watchlisted {
		if entry, ok := app.Manager.WatchlistEntry(symbol); ok {
			if err := app.Store.SaveWatchlistEntry(ctx, &entry); err != nil {
				return fmt.Errorf("saving watchlist entry: %w", err)
			}
		}
	}

	d.notifier.RotationApplied(event)
	return nil
}

// dailyRegimeCheck classifies the benchmark's bars and records confirmed
// transitions.
func (d *daemon) dailyRegimeCheck(ctx context.Context) error {
	app := d.app
	now := d.now().In(utils.NYLocation)
	from := now.AddDate(0, 0, -selectionLookbackDays)

	benchmark := app.Config.Universe.Benchmark
	candles, err := app.Store.GetCandles(ctx, benchmark, dailyTimeframe, from, now)
	if err != nil {
		return fmt.Errorf("loading benchmark candles: %w", err)
	}

	adx, bbWidth, bbWidthAvg, atrRatio, err := regimeInputs(candles)
	if err != nil {
		return fmt.Errorf("computing regime inputs for %s: %w", benchmark, err)
	}

	raw := app.Detector.Classify(adx, bbWidth, bbWidthAvg, atrRatio)
	transition := app.Tracker.Update(raw, now)
	if transition == nil {
		return nil
	}

	if err := app.Store.SaveRegimeTransition(ctx, transition); err != nil {
		return fmt.Errorf("saving regime transition: %w", err)
	}
	d.notifier.RegimeChanged(*transition)

	if fire, reason := app.Trigger.ShouldTrigger(transition, nil); fire {
		app.Logger.Info().Str("reason", reason).Msg("Event-driven rotation requested")
		if err := d.runSelection(ctx, rotation.TriggerRegimeChange); err != nil {
			return err
		}
		app.Trigger.MarkTriggered()
	}
	return nil
}

// forceCloseScan announces watchlisted symbols past their deadlines.
func (d *daemon) forceCloseScan(ctx context.Context) error {
	now := d.now().In(utils.NYLocation)
	due := d.app.Manager.ForceCloseSymbols(now, d.app.Manager.WatchlistSymbols())
	d.notifier.ForceCloseDue(due, now)
	for _, symbol := range due {
		if err := d.app.Store.RemoveWatchlistEntry(ctx, symbol); err != nil {
			return fmt.Errorf("removing watchlist entry: %w", err)
		}
		d.app.Manager.OnPositionClosed(symbol)
	}
	return nil
}

// regimeInputs derives the four classifier inputs from a daily bar history.
func regimeInputs(candles []models.Candle) (adx, bbWidth, bbWidthAvg, atrRatio float64, err error) {
	adxOut, err := indicators.NewADX(14).Calculate(candles)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	bbOut, err := indicators.NewBollingerBands(20, 2.0).Calculate(candles)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	atrOut, err := indicators.NewATR(14).Calculate(candles)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	last := len(candles) - 1
	adx = adxOut["adx"][last]

	bandwidth := bbOut["bandwidth"]
	bbWidth = bandwidth[last]
	var total float64
	var count int
	for i := 19; i < len(bandwidth); i++ {
		total += bandwidth[i]
		count++
	}
	if count > 0 {
		bbWidthAvg = total / float64(count)
	}

	if close := candles[last].Close; close > 0 {
		atrRatio = atrOut[last] / close
	}
	return adx, bbWidth, bbWidthAvg, atrRatio, nil
}
