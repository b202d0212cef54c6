package worker

import (
	"context"
	"time"

	"supplement-iq/internal/logging"
)

// Daily runs a job at every local midnight in Location.
type Daily struct {
	Name     string
	Location *time.Location
	Job      func(ctx context.Context) error
	Log      logging.Logger

	now   func() time.Time
	after func(d time.Duration) <-chan time.Time
}

// NewDaily builds a scheduler for job in loc.
func NewDaily(name string, loc *time.Location, log logging.Logger, job func(ctx context.Context) error) *Daily {
	if loc == nil {
		loc = time.UTC
	}
	return &Daily{
		Name:     name,
		Location: loc,
		Job:      job,
		Log:      log,
		now:      time.Now,
		after:    time.After,
	}
}

// Next returns the next midnight after now in the scheduler's zone.
func (d *Daily) Next(now time.Time) time.Time {
	t := now.In(d.Location)
	y, m, day := t.Date()
	return time.Date(y, m, day+1, 0, 0, 0, 0, d.Location)
}

// Run blocks until ctx is cancelled. Job errors are logged and the
// schedule continues.
func (d *Daily) Run(ctx context.Context) {
	for {
		now := d.now()
		next := d.Next(now)
		select {
		case <-ctx.Done():
			return
		case <-d.after(next.Sub(now)):
		}

		d.Log.Info(ctx, "daily job starting", "job", d.Name, "scheduled", next)
		if err := d.Job(ctx); err != nil {
			d.Log.Error(ctx, "daily job failed", "job", d.Name, "error", err)
			continue
		}
		d.Log.Info(ctx, "daily job finished", "job", d.Name)
	}
}
