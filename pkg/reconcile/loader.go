package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"tableflip.dev/timebox/pkg/schedule"
)

// ErrSuperseded is returned when committing a load after a newer load of
// the same date started.
var ErrSuperseded = errors.New("reconcile: load superseded by a newer load of the same date")

// RemoteSchedules fetches a day from the service.
type RemoteSchedules interface {
	ScheduleByDate(ctx context.Context, date string) (*schedule.Schedule, error)
}

// LocalSchedules reads the cached copy of a day. A missing day is nil, nil.
type LocalSchedules interface {
	LoadLocal(date string) (*schedule.Schedule, error)
}

// Loaded is a reconciled day tagged with the load of its date it came from.
type Loaded struct {
	Result
	Date       string
	Generation uint64
}

// Loader fetches and reconciles days. Each date counts its loads; only the
// latest load of a date may be committed. Loads of different dates are
// independent.
type Loader struct {
	Remote RemoteSchedules
	Local  LocalSchedules
	// DefaultDuration returns the current timebox length in minutes.
	DefaultDuration func() int
	Now             func() time.Time
	NewID           func() string
	Log             *slog.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// Load reconciles date. The returned Loaded can be applied with Commit as
// long as no later Load of the same date started.
func (l *Loader) Load(ctx context.Context, date string) (Loaded, error) {
	gen := l.next(date)
	now := l.now()

	in := Input{
		Date:            date,
		IsToday:         schedule.SameDay(date, now),
		Now:             now,
		DefaultDuration: l.defaultDuration(),
		NewID:           l.NewID,
	}
	if l.Remote != nil {
		in.Remote, in.RemoteErr = l.Remote.ScheduleByDate(ctx, date)
	} else {
		in.RemoteErr = errors.New("no remote configured")
	}
	if err := ctx.Err(); err != nil {
		return Loaded{}, err
	}

	if in.RemoteErr != nil && l.Local != nil {
		local, err := l.Local.LoadLocal(date)
		if err != nil {
			l.log().Warn("read local schedule", "date", date, "err", err)
		}
		in.Local = local
	}

	res := Reconcile(in)
	if res.Notice != "" {
		l.log().Info("schedule loaded with fallback", "date", date, "source", res.Source, "err", in.RemoteErr)
	}
	return Loaded{Result: res, Date: date, Generation: gen}, nil
}

// Commit runs apply with ld if ld is the latest load of its date.
func (l *Loader) Commit(ld Loaded, apply func(Loaded)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ld.Generation != l.generations[ld.Date] {
		return ErrSuperseded
	}
	apply(ld)
	return nil
}

// Current reports whether ld is the latest load of its date.
func (l *Loader) Current(ld Loaded) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ld.Generation == l.generations[ld.Date]
}

func (l *Loader) next(date string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generations == nil {
		l.generations = make(map[string]uint64)
	}
	l.generations[date]++
	return l.generations[date]
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loader) defaultDuration() int {
	if l.DefaultDuration != nil {
		return l.DefaultDuration()
	}
	return schedule.DefaultDuration
}

func (l *Loader) log() *slog.Logger {
	if l.Log != nil {
		return l.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
