package services

import (
	"context"
	"log/slog"
	"time"
)

// Clocked is anything whose sessions advance with wall-clock time.
type Clocked interface {
	TickAll(elapsed time.Duration) int
	Evict(now time.Time) int
}

// Scheduler is the clock of the voting sessions: it ticks them at a fixed
// interval with the time actually elapsed since the previous tick.
type Scheduler struct {
	target   Clocked
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewScheduler(target Clocked, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		target:   target,
		interval: interval,
		logger:   resolveLogger(logger),
		now:      time.Now,
	}
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := s.now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			elapsed := now.Sub(last)
			last = now
			if elapsed <= 0 {
				continue
			}

			if ended := s.target.TickAll(elapsed); ended > 0 {
				s.logger.Debug("sessions timed out", "event", "scheduler_sessions_ended", "count", ended)
			}
			if evicted := s.target.Evict(now); evicted > 0 {
				s.logger.Info("stale sessions evicted", "event", "scheduler_sessions_evicted", "count", evicted)
			}
		}
	}
}
