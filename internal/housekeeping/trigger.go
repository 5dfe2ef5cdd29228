package housekeeping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Trigger invokes the runner periodically, either on a fixed interval or
// on a standard cron expression. Overlap protection lives in the runner
// itself.
type Trigger struct {
	runner   *Runner
	logger   *slog.Logger
	interval time.Duration
	schedule cron.Schedule // nil when interval-driven
}

func NewIntervalTrigger(runner *Runner, logger *slog.Logger, interval time.Duration) *Trigger {
	return &Trigger{
		runner:   runner,
		logger:   logger.With("component", "trigger"),
		interval: interval,
	}
}

func NewCronTrigger(runner *Runner, logger *slog.Logger, spec string) (*Trigger, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}
	return &Trigger{
		runner:   runner,
		logger:   logger.With("component", "trigger"),
		schedule: schedule,
	}, nil
}

func (t *Trigger) Start(ctx context.Context) {
	if t.schedule != nil {
		t.logger.Info("trigger started", "mode", "cron")
		t.runCron(ctx)
		return
	}

	t.logger.Info("trigger started", "mode", "interval", "interval", t.interval)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("trigger shut down")
			return
		case <-ticker.C:
			t.fire(ctx)
		}
	}
}

func (t *Trigger) runCron(ctx context.Context) {
	for {
		next := t.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			t.logger.Info("trigger shut down")
			return
		case <-timer.C:
			t.fire(ctx)
		}
	}
}

func (t *Trigger) fire(ctx context.Context) {
	if _, err := t.runner.RunPass(ctx); err != nil {
		if errors.Is(err, ErrPassInProgress) {
			t.logger.Warn("previous pass still running, skipping")
			return
		}
		t.logger.Error("housekeeping pass", "error", err)
	}
}
