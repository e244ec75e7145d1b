// Package jobs runs scheduled maintenance for the signage server
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/narabyte/pantalla-signage/internal/pantallad/event"
	"github.com/narabyte/pantalla-signage/internal/pantallad/metrics"
)

// Scheduler owns the server's background cron jobs
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler creates a scheduler running in UTC
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
	}
}

// RegisterEventRetention purges events whose effective window ended more than
// keepFor ago. Persisted player bundles keep working offline regardless; the
// purge only bounds table growth.
func (s *Scheduler) RegisterEventRetention(repo event.Repository, schedule string, keepFor time.Duration) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		cutoff := time.Now().UTC().Add(-keepFor)
		purged, err := repo.PurgeEndedBefore(ctx, cutoff)
		if err != nil {
			s.logger.Error("event retention job failed",
				"error", err,
				"cutoff", cutoff,
			)
			return
		}

		metrics.EventsPurged.Add(float64(purged))
		s.logger.Info("event retention job completed",
			"purged", purged,
			"cutoff", cutoff,
		)
	})
	return err
}

// Start launches the registered jobs on their schedules
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
