package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"cookiejar/creator/internal/tasks"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, values map[string]any) (string, error)
}

// Scheduler enqueues periodic maintenance tasks for the worker.
type Scheduler struct {
	cron  *cron.Cron
	queue Enqueuer
	log   zerolog.Logger
}

const (
	// nightly at midnight
	CleanupSpec = "0 0 0 * * *"
	// hourly
	SweepSpec = "0 0 */1 * * *"
)

func NewScheduler(queue Enqueuer, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		queue: queue,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(CleanupSpec, s.enqueue(tasks.TypeCleanup)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(SweepSpec, s.enqueue(tasks.TypeSweep)); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits up to five seconds for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler jobs still running at shutdown")
	}
}

func (s *Scheduler) enqueue(taskType string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.queue.Enqueue(ctx, tasks.Payload{Type: taskType}.Values()); err != nil {
			s.log.Error().Err(err).Str("type", taskType).Msg("enqueue scheduled task failed")
			return
		}
		s.log.Debug().Str("type", taskType).Msg("scheduled task enqueued")
	}
}
