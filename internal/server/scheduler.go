package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a periodic unit of work. Run receives the runner's context.
type Job struct {
	Name     string
	Schedule string // standard cron spec or descriptor such as "@every 1h"
	Run      func(ctx context.Context)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	// cron reports every wakeup at info; keep it out of the default output
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}

// scheduler runs jobs on their cron schedules. A job never overlaps
// itself; different jobs may run concurrently.
type scheduler struct {
	cron *cron.Cron
	ctx  context.Context // set by run before the first job can fire
	log  *slog.Logger
}

func newScheduler(logger *slog.Logger) *scheduler {
	cl := cronLogger{log: logger}
	return &scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
		),
		log: logger,
	}
}

// add registers jobs with an empty schedule as disabled.
func (s *scheduler) add(job Job) error {
	if job.Schedule == "" {
		s.log.Info("job not scheduled", "job", job.Name)
		return nil
	}
	schedule, err := cron.ParseStandard(job.Schedule)
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", job.Name, job.Schedule, err)
	}
	run := job.Run
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		if s.ctx.Err() != nil {
			return
		}
		s.log.Info("scheduled job starting", "job", job.Name)
		run(s.ctx)
	}))
	s.log.Info("job scheduled", "job", job.Name, "schedule", job.Schedule, "next", schedule.Next(time.Now()))
	return nil
}

// run starts the scheduler and blocks until ctx is done and every running
// job has returned.
func (s *scheduler) run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
