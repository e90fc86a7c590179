// Package schedule runs periodic builds.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// ErrJobNotFound is returned by RunNow for an unknown job ID.
var ErrJobNotFound = errors.New("job not found")

// Task is a unit of scheduled work.
type Task func(ctx context.Context) error

// Scheduler wraps gocron scheduler for managing periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler

	mu  sync.RWMutex
	ctx context.Context
}

// New creates a new scheduler instance.
func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, ctx: context.Background()}, nil
}

// Every schedules task at a fixed interval and returns the job ID. Runs
// never overlap: a run due while the previous one is still going is skipped.
// With immediately set the first run starts as soon as the scheduler does.
func (s *Scheduler) Every(name string, interval time.Duration, immediately bool, task Task) (string, error) {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if immediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.execute, name, task),
		opts...,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic job %s: %w", name, err)
	}
	return job.ID().String(), nil
}

func (s *Scheduler) execute(name string, task Task) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	slog.Info("Executing scheduled job", slog.String("job", name))
	if err := task(ctx); err != nil {
		slog.Error("Scheduled job failed", slog.String("job", name), logfields.Error(err))
		return
	}
	slog.Debug("Scheduled job finished",
		slog.String("job", name),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

// RunNow runs the job with the given ID immediately, outside its schedule.
func (s *Scheduler) RunNow(id string) error {
	for _, job := range s.scheduler.Jobs() {
		if job.ID().String() == id {
			if err := job.RunNow(); err != nil {
				return fmt.Errorf("failed to run job %s: %w", job.Name(), err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// Start begins the scheduler. Tasks receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
