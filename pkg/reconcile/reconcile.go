// Package reconcile decides which blocks a day opens with, given what the
// remote service and the local cache returned for it.
package reconcile

import (
	"errors"
	"fmt"
	"time"

	"tableflip.dev/timebox/pkg/remote"
	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/timeutil"
)

// Source names where a reconciled day came from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceLocal   Source = "local"
	SourceDefault Source = "default"
)

// Input is everything Reconcile looks at.
type Input struct {
	Date    string
	IsToday bool
	// Remote is the schedule the service returned, if any.
	Remote *schedule.Schedule
	// RemoteErr is the error of the remote fetch. remote.ErrNotFound means
	// the day is empty rather than unavailable.
	RemoteErr error
	// Local is the cached copy, used only when the remote fetch failed.
	Local           *schedule.Schedule
	Now             time.Time
	DefaultDuration int
	NewID           func() string
}

// Result is the day to hand to the engine.
type Result struct {
	Blocks []schedule.Block
	// Notice explains a fallback, empty when the remote answered.
	Notice string
	Source Source
	// CreatedAt is the creation time of the adopted schedule, zero for a
	// fresh day.
	CreatedAt schedule.Timestamp
}

// Reconcile merges a fetch result into the initial block list. The result
// is never empty and always ordered and non-overlapping.
func Reconcile(in Input) Result {
	newID := in.NewID
	if newID == nil {
		newID = schedule.NewID
	}

	switch {
	case in.RemoteErr == nil && in.Remote != nil:
		if blocks := adopt(in, in.Remote.Blocks, newID); len(blocks) > 0 {
			return Result{Blocks: blocks, Source: SourceRemote, CreatedAt: in.Remote.CreatedAt}
		}
		return fallback(in, newID, "")
	case in.RemoteErr == nil, errors.Is(in.RemoteErr, remote.ErrNotFound):
		return fallback(in, newID, "")
	}

	notice := fmt.Sprintf("Could not load schedule from server: %v", in.RemoteErr)
	if remote.Classify(in.RemoteErr) == remote.OutcomeNetworkFailure {
		notice = "Offline - showing the last saved copy"
	}
	if in.Local != nil {
		if blocks := adopt(in, in.Local.Blocks, newID); len(blocks) > 0 {
			return Result{Blocks: blocks, Notice: notice, Source: SourceLocal, CreatedAt: in.Local.CreatedAt}
		}
	}
	if remote.Classify(in.RemoteErr) == remote.OutcomeNetworkFailure {
		notice = "Offline - starting a new day"
	}
	return fallback(in, newID, notice)
}

// adopt normalizes foreign blocks and, for today, appends a block at the
// current time when the whole plan is already in the past.
func adopt(in Input, blocks []schedule.Block, newID func() string) []schedule.Block {
	out := schedule.Normalize(blocks)
	if len(out) == 0 {
		return nil
	}
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = newID()
		}
	}
	if in.IsToday {
		last := out[len(out)-1]
		if !last.End.Exhausted() && last.End <= timeutil.FromTime(in.Now) {
			out = append(out, schedule.BuildFreshBlock(in.Now, in.DefaultDuration, newID()))
		}
	}
	return out
}

func fallback(in Input, newID func() string, notice string) Result {
	b := schedule.DefaultBlock(newID())
	if in.IsToday {
		b = schedule.BuildFreshBlock(in.Now, in.DefaultDuration, b.ID)
	}
	return Result{Blocks: []schedule.Block{b}, Notice: notice, Source: SourceDefault}
}
