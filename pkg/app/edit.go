package app

import (
	"context"

	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/timeutil"
)

// BlockEdit changes one block. Empty Start or End keep the block's times.
type BlockEdit struct {
	Index int
	Label string
	Start string
	End   string
}

// SetBlock applies edit to the day for date.
func (s *Service) SetBlock(ctx context.Context, date string, edit BlockEdit) (Day, error) {
	return s.Edit(ctx, date, func(e *schedule.Engine, st schedule.State) (schedule.State, error) {
		if edit.Index < 0 || edit.Index >= st.Len() {
			return st, schedule.ErrIndexOutOfRange
		}
		if edit.Start == "" && edit.End == "" {
			return e.SetLabel(st, edit.Index, edit.Label)
		}
		b := st.Blocks[edit.Index]
		b.Label = edit.Label
		if edit.Start != "" {
			start, err := timeutil.ParseClock(edit.Start)
			if err != nil {
				return st, err
			}
			b.Start = start
		}
		if edit.End != "" {
			end, err := timeutil.ParseEnd(edit.End)
			if err != nil {
				return st, err
			}
			b.End = end
		}
		return e.UpdateBlock(st, edit.Index, b)
	})
}

// AddTimebox appends a timebox to the day for date.
func (s *Service) AddTimebox(ctx context.Context, date string) (Day, error) {
	return s.Edit(ctx, date, func(e *schedule.Engine, st schedule.State) (schedule.State, error) {
		return e.AddTimebox(st), nil
	})
}

// DeleteBlock removes the block at index. The only block of a day stays.
func (s *Service) DeleteBlock(ctx context.Context, date string, index int) (Day, error) {
	return s.Edit(ctx, date, func(e *schedule.Engine, st schedule.State) (schedule.State, error) {
		if index < 0 || index >= st.Len() {
			return st, schedule.ErrIndexOutOfRange
		}
		return e.DeleteBlock(st, index), nil
	})
}

// InsertBetween makes room for a block of minutes between the block at
// index and the one after it.
func (s *Service) InsertBetween(ctx context.Context, date string, index, minutes int) (Day, error) {
	return s.Edit(ctx, date, func(e *schedule.Engine, st schedule.State) (schedule.State, error) {
		return e.InsertBetween(st, index, minutes)
	})
}
