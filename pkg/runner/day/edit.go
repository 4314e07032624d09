package day

import (
	"context"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/timeutil"
)

// Set changes the block at Index. Empty Start or End keep the block's
// current times.
type Set struct {
	Day
	Index int
	Label string
	Start string
	End   string
}

func (s *Set) Do(ctx context.Context) error {
	return s.show(s.Service.SetBlock(ctx, s.Date, app.BlockEdit{
		Index: s.Index,
		Label: s.Label,
		Start: s.Start,
		End:   s.End,
	}))
}

// Add appends a timebox at the end of the day.
type Add struct {
	Day
}

func (a *Add) Do(ctx context.Context) error {
	return a.show(a.Service.AddTimebox(ctx, a.Date))
}

// Delete removes the block at Index. The only block of a day stays.
type Delete struct {
	Day
	Index int
}

func (d *Delete) Do(ctx context.Context) error {
	return d.show(d.Service.DeleteBlock(ctx, d.Date, d.Index))
}

// Adjust makes room for a new block of Minutes between the block at Index
// and the one after it.
type Adjust struct {
	Day
	Index   int
	Minutes string
}

func (a *Adjust) Do(ctx context.Context) error {
	minutes, _, err := timeutil.ParseMinutes(a.Minutes)
	if err != nil {
		return err
	}
	return a.show(a.Service.InsertBetween(ctx, a.Date, a.Index, minutes))
}

// CarryOver starts the day with the labelled blocks of From.
type CarryOver struct {
	Day
	From string
}

func (c *CarryOver) Do(ctx context.Context) error {
	return c.show(c.Service.CarryOver(ctx, c.From, c.Date))
}
