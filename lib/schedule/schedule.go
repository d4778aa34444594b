package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs jobs on standard 5 field cron specs (or descriptors like
// `@monthly`), a job that is still running when its next tick arrives is
// skipped.
type Scheduler struct {
	cron *cron.Cron
}

func New(location *time.Location) *Scheduler {
	if location == nil {
		location = time.Local
	}
	logger := slogLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithLocation(location),
			cron.WithChain(
				cron.Recover(logger),
				cron.SkipIfStillRunning(logger),
			),
		),
	}
}

func (s *Scheduler) Add(spec string, job func()) error {
	_, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return nil
}

// Run blocks until ctx is done and then waits for running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}

// NextRuns returns the next `n` activation times of spec after `from`.
func NextRuns(spec string, from time.Time, n int) ([]time.Time, error) {
	parsed, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	out := make([]time.Time, 0, n)
	next := from
	for i := 0; i < n; i++ {
		next = parsed.Next(next)
		if next.IsZero() {
			break
		}
		out = append(out, next)
	}
	return out, nil
}

type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(fmt.Sprintf("cron: %s", msg), keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(fmt.Sprintf("cron: %s", msg), append([]any{"err", err}, keysAndValues...)...)
}
