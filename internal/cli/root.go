package cli

import (
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"swing-trader/internal/allocation"
	"swing-trader/internal/config"
	"swing-trader/internal/earnings"
	"swing-trader/internal/logging"
	"swing-trader/internal/metrics"
	"swing-trader/internal/regime"
	"swing-trader/internal/rotation"
	"swing-trader/internal/store"
	"swing-trader/internal/universe"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-01-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.DataStore
	Detector *regime.Detector
	Tracker  *regime.Tracker
	Reviewer *regime.PositionReviewer
	Engine   *allocation.Engine
	Selector *universe.Selector
	Manager  *rotation.Manager
	Trigger  *rotation.EventTrigger
	Metrics  *metrics.Recorder
}

// NewApp wires the decision components from configuration.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	table, err := cfg.Weights.WeightTable()
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)
	detector := regime.NewDetectorWithConfig(cfg.Weights.Thresholds, table)
	calendar := earnings.NewMemoryCalendar()

	selector := universe.NewSelector(
		cfg.Universe.Selector,
		universe.NewHardFilter(cfg.Universe.Filter),
		universe.NewProxyScorer(universe.DefaultProxyWeights()),
		universe.NewBacktestScorer(),
		universe.NewPortfolioOptimizer(cfg.Universe.Optimizer),
		nil,
		logger,
	)

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Detector: detector,
		Tracker:  regime.NewTracker(cfg.Regime.ConfirmationBars, recorder, logger),
		Reviewer: regime.NewPositionReviewer(table),
		Engine:   allocation.NewEngine(cfg.Risk, detector),
		Selector: selector,
		Manager:  rotation.NewManager(cfg.Rotation, calendar, recorder, logger),
		Trigger:  rotation.NewEventTrigger(cfg.Trigger, logger),
		Metrics:  recorder,
	}

	dbPath := filepath.Join(config.DefaultConfigDir(), "trader.db")
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, history commands unavailable")
	} else {
		app.Store = dataStore
	}

	return app, nil
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app, err := NewApp(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		app = &App{Config: cfg, Logger: logger}
	}

	rootCmd := &cobra.Command{
		Use:   "swing-trader",
		Short: "Swing trading decision core",
		Long: `swing-trader is the decision core of a swing trading platform.

It classifies the market regime, sizes positions by regime-specific
strategy weights, selects a weekly trading universe, and manages the
rotation between universes.

Use 'swing-trader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/swing-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addRunCommand(rootCmd, app)
	addRegimeCommands(rootCmd, app)
	addUniverseCommands(rootCmd, app)
	addRotationCommands(rootCmd, app)
	addStatusCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("swing-trader v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if _, err := app.Config.Weights.WeightTable(); err != nil {
				output.Error("Weight table validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Risk Configuration")
	output.Printf("  Min Position:      $%.0f\n", cfg.Risk.MinPositionValue)
	output.Printf("  Risk/Trade:        %.1f%%\n", cfg.Risk.RiskPerTradePct*100)
	output.Printf("  Short Size Ratio:  %.2f\n", cfg.Risk.ShortSizeRatio)
	output.Printf("  Max Pos/Strategy:  %d\n", cfg.Risk.MaxPositionsPerStrategy)
	output.Println()

	output.Bold("Rotation Configuration")
	output.Printf("  Force-Close:       weekday %d at %02d:00\n", cfg.Rotation.ForceCloseDay, cfg.Rotation.ForceCloseHour)
	output.Printf("  Weekly Loss Limit: %.1f%%\n", cfg.Rotation.WeeklyLossLimitPct*100)
	output.Println()

	output.Bold("Event Trigger")
	output.Printf("  Enabled:           %v\n", cfg.Trigger.Enabled)
	output.Printf("  Cooldown:          %dh\n", cfg.Trigger.CooldownHours)
	output.Printf("  VIX Spike:         %.0f\n", cfg.Trigger.VIXSpikeTrigger)
	output.Println()

	output.Bold("Universe")
	output.Printf("  Target Size:       %d\n", cfg.Universe.Optimizer.TargetSize)
	output.Printf("  Max/Sector:        %d\n", cfg.Universe.Optimizer.MaxPerSector)
	output.Printf("  Max Rotation:      %d\n", cfg.Universe.Optimizer.MaxRotation)
	output.Printf("  Min Sectors:       %d\n", cfg.Universe.Optimizer.MinSectors)
	output.Printf("  Score Blend:       %.2f proxy / %.2f backtest\n",
		cfg.Universe.Selector.ProxyWeight, cfg.Universe.Selector.BacktestWeight)
	output.Printf("  Benchmark:         %s\n", cfg.Universe.Benchmark)
	output.Printf("  Scan List:         %d symbols\n", len(cfg.Universe.Scan))
	output.Println()

	output.Bold("Schedule")
	output.Printf("  Weekly Selection:  %s\n", cfg.Schedule.WeeklyCron)
	output.Printf("  Daily Review:      %s\n", cfg.Schedule.DailyCron)
	output.Printf("  Force-Close Scan:  %s\n", cfg.Schedule.ForceCloseCron)

	return nil
}
