package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"ResultsMonitor/internal/collector"
	"ResultsMonitor/internal/diff"
	"ResultsMonitor/internal/model"
	"ResultsMonitor/internal/notifier"
	"ResultsMonitor/internal/portal"
	"ResultsMonitor/internal/recorder"
)

var (
	// ErrInvalidCredentials means the baseline fetch decoded no results.
	ErrInvalidCredentials = errors.New("credentials invalid, could not retrieve results")
	// ErrTooManyFailures means transient poll failures did not clear up.
	ErrTooManyFailures = errors.New("too many consecutive failed polls")
	// ErrScheduleExhausted means the poll schedule has no next activation.
	ErrScheduleExhausted = errors.New("poll schedule has no next run")
)

// State is the position of a Cycle in the monitor's lifecycle.
type State string

const (
	StateBaseline State = "BASELINE"
	StatePoll     State = "POLL"
	StateStopped  State = "STOPPED"
)

// Presenter shows results to the user.
type Presenter interface {
	ShowBaseline(results model.ResultSet)
	ShowChanges(changed, current model.ResultSet, at time.Time)
}

// Cycle is the state carried from one poll to the next.
type Cycle struct {
	Credentials model.Credentials
	Current     model.ResultSet
	Failures    int // consecutive transient failures
	State       State

	untracked map[string]bool
}

// NewCycle returns a Cycle waiting for its baseline.
func NewCycle(creds model.Credentials) *Cycle {
	return &Cycle{
		Credentials: creds,
		Current:     model.ResultSet{},
		State:       StateBaseline,
		untracked:   map[string]bool{},
	}
}

// Scheduler runs the baseline fetch and then polls on a cron schedule, one
// cycle at a time.
type Scheduler struct {
	Collector   *collector.Collector
	Notifier    notifier.Notifier
	Presenter   Presenter
	Recorder    recorder.Recorder
	Schedule    cron.Schedule
	MaxFailures int

	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(col *collector.Collector, n notifier.Notifier, p Presenter, rec recorder.Recorder, schedule cron.Schedule, maxFailures int) *Scheduler {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Scheduler{
		Collector:   col,
		Notifier:    n,
		Presenter:   p,
		Recorder:    rec,
		Schedule:    schedule,
		MaxFailures: maxFailures,
		Now:         time.Now,
		After:       time.After,
	}
}

// Run performs the baseline unless c already has one, then polls until ctx is
// cancelled, which is a clean stop. Requests already in flight are allowed to finish.
func (s *Scheduler) Run(ctx context.Context, c *Cycle) error {
	if ctx.Err() != nil {
		c.State = StateStopped
		return nil
	}
	if c.State == StateBaseline {
		if err := s.Baseline(ctx, c); err != nil {
			return err
		}
	}

	log.Println("[INFO] monitoring for new results")
	for {
		ok, err := s.wait(ctx)
		if err != nil {
			c.State = StateStopped
			return err
		}
		if !ok {
			c.State = StateStopped
			log.Println("[INFO] monitor stopped")
			return nil
		}
		if _, err := s.Poll(ctx, c); err != nil {
			return err
		}
	}
}

// Baseline establishes the first snapshot. Any fetch error is fatal and an
// empty page means the portal rejected the credentials.
func (s *Scheduler) Baseline(ctx context.Context, c *Cycle) error {
	log.Println("[INFO] fetching baseline results")
	outcome, err := s.Collector.Collect(context.WithoutCancel(ctx), c.Credentials)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	if outcome.Empty() {
		return ErrInvalidCredentials
	}

	c.Current = outcome.Results
	c.State = StatePoll
	log.Printf("[INFO] baseline established: %d module(s)", len(c.Current))

	s.Presenter.ShowBaseline(c.Current)
	if err := s.Recorder.RecordBaseline(c.Current); err != nil {
		log.Printf("[ERROR] record baseline: %v", err)
	}
	return nil
}

// Poll fetches once and compares final marks against the current snapshot.
// When any changed, the snapshot is replaced, the changes are shown and one
// notification is sent. Transient failures are absorbed until MaxFailures in a row.
func (s *Scheduler) Poll(ctx context.Context, c *Cycle) (model.ResultSet, error) {
	outcome, err := s.Collector.Collect(context.WithoutCancel(ctx), c.Credentials)
	if err != nil {
		if !portal.IsTransient(err) {
			return nil, err
		}
		c.Failures++
		log.Printf("[WARN] poll failed (%d/%d): %v", c.Failures, s.MaxFailures, err)
		if c.Failures >= s.MaxFailures {
			return nil, fmt.Errorf("%w: %w", ErrTooManyFailures, err)
		}
		return nil, nil
	}
	c.Failures = 0
	if outcome.Empty() {
		return nil, nil
	}

	for _, module := range diff.Added(c.Current, outcome.Results) {
		if !c.untracked[module] {
			c.untracked[module] = true
			log.Printf("[INFO] module %s appeared after the baseline and is not tracked", module)
		}
	}

	changed := diff.Changed(c.Current, outcome.Results)
	if len(changed) == 0 {
		return changed, nil
	}

	c.Current = outcome.Results
	log.Printf("[INFO] %d result(s) changed", len(changed))

	s.Presenter.ShowChanges(changed, c.Current, s.Now())
	if err := s.Notifier.Notify(ctx, notifier.ChangeTitle, notifier.FormatChanges(changed)); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
	if err := s.Recorder.RecordChanges(changed); err != nil {
		log.Printf("[ERROR] record changes: %v", err)
	}
	return changed, nil
}

// wait blocks until the next scheduled poll. It returns false once ctx is done.
func (s *Scheduler) wait(ctx context.Context) (bool, error) {
	now := s.Now()
	next := s.Schedule.Next(now)
	if next.IsZero() {
		return false, ErrScheduleExhausted
	}
	delay := next.Sub(now)
	if delay < 0 {
		delay = 0
	}
	select {
	case <-ctx.Done():
		return false, nil
	case <-s.After(delay):
		return ctx.Err() == nil, nil
	}
}
