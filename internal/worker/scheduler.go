// Package worker runs background jobs on a cron schedule.
//
// The scheduler's lifecycle is tied to the server: started after the stores
// are up, stopped during graceful shutdown after in-flight jobs finish. Jobs
// are registered in Start; the heartbeat job is a placeholder slot — real
// maintenance jobs (token cleanup, digests) register the same way.
package worker

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron runner with logging and a stop that waits for
// running jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the jobs and launches the runner in its own goroutine.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.heartbeat); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started")
	return nil
}

// Stop halts scheduling and blocks until running jobs complete.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) heartbeat() {
	s.logger.Info("scheduled job executed", slog.String("job", "heartbeat"))
}
