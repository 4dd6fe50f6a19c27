// Package scheduler runs the periodic selection and review tasks.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"swing-trader/pkg/utils"
)

// Tasks holds the callbacks the scheduler dispatches. Nil callbacks are
// skipped.
type Tasks struct {
	// WeeklySelection runs the full universe selection and rotation cycle.
	WeeklySelection func(ctx context.Context) error
	// DailyReview updates the regime tracker and reviews open positions.
	DailyReview func(ctx context.Context) error
	// ForceCloseScan closes positions past their watchlist deadlines.
	ForceCloseScan func(ctx context.Context) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	cron   *cron.Cron
	tasks  Tasks
	retry  utils.RetryConfig
	logger zerolog.Logger
	ctx    context.Context
	now    func() time.Time
}

// New creates a scheduler whose cron expressions are evaluated in the US
// market timezone.
func New(ctx context.Context, tasks Tasks, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(utils.NYLocation)),
		tasks:  tasks,
		retry:  utils.DefaultRetryConfig(),
		logger: logger.With().Str("component", "scheduler").Logger(),
		ctx:    ctx,
		now:    func() time.Time { return time.Now().In(utils.NYLocation) },
	}
}

// RegisterAll registers the weekly selection, daily review, and force-close
// tasks. Cron specs use the standard five-field format.
func (s *Scheduler) RegisterAll(weeklyCron, dailyCron, forceCloseCron string) error {
	if _, err := s.cron.AddFunc(weeklyCron, s.weeklyTask); err != nil {
		return fmt.Errorf("register weekly task: %w", err)
	}
	if _, err := s.cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.cron.AddFunc(forceCloseCron, s.forceCloseTask); err != nil {
		return fmt.Errorf("register force-close task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunWeeklyNow executes the weekly selection immediately, bypassing the
// trading-day guard. Used for manual triggers.
func (s *Scheduler) RunWeeklyNow() error {
	if s.tasks.WeeklySelection == nil {
		return nil
	}
	return s.runWithRetry("weekly_selection", s.tasks.WeeklySelection)
}

func (s *Scheduler) weeklyTask() {
	if !utils.IsTradingDay(s.now()) {
		s.logger.Info().Msg("skipping weekly selection, market closed")
		return
	}
	if s.tasks.WeeklySelection == nil {
		return
	}
	if err := s.runWithRetry("weekly_selection", s.tasks.WeeklySelection); err != nil {
		s.logger.Error().Err(err).Msg("weekly selection failed after retries")
	}
}

func (s *Scheduler) dailyTask() {
	if !utils.IsTradingDay(s.now()) {
		return
	}
	if s.tasks.DailyReview == nil {
		return
	}
	if err := s.runWithRetry("daily_review", s.tasks.DailyReview); err != nil {
		s.logger.Error().Err(err).Msg("daily review failed after retries")
	}
}

func (s *Scheduler) forceCloseTask() {
	if !utils.IsTradingDay(s.now()) {
		return
	}
	if s.tasks.ForceCloseScan == nil {
		return
	}
	if err := s.runWithRetry("force_close_scan", s.tasks.ForceCloseScan); err != nil {
		s.logger.Error().Err(err).Msg("force-close scan failed after retries")
	}
}

func (s *Scheduler) runWithRetry(name string, fn func(ctx context.Context) error) error {
	start := s.now()
	err := utils.Retry(s.ctx, s.retry, func() error {
		return fn(s.ctx)
	})
	elapsed := time.Since(start)
	if err != nil {
		return err
	}
	s.logger.Info().Str("task", name).Dur("elapsed", elapsed).Msg("task completed")
	return nil
}
