// Package day holds the runners that show and edit one day's timeboxes.
package day

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/printers"
	"tableflip.dev/timebox/pkg/schedule"
)

// Day is what every day runner needs.
type Day struct {
	Service *app.Service
	Date    string
	JSON    bool
	ShowID  bool
	Out     io.Writer
}

func (d *Day) print(day app.Day) error {
	if d.JSON {
		return printers.JSON(d.Out, printers.NewDayView(day.State.Date, string(day.Source), day.Notice, day.State.Blocks))
	}
	pp := printers.PrettyPrint{Out: d.Out, ShowID: d.ShowID}
	pp.Day(day.State.Date, day.State.Blocks, day.Notice)
	return nil
}

// show prints the result of an edit. A validation failure prints the day
// unchanged before returning the error so the user sees what they tried
// to change.
func (d *Day) show(day app.Day, err error) error {
	var verr *schedule.ValidationError
	if errors.As(err, &verr) && !d.JSON {
		_ = d.print(day)
	}
	if err != nil {
		return err
	}
	return d.print(day)
}

// Show prints the day.
type Show struct {
	Day
}

func (s *Show) Do(ctx context.Context) error {
	day, err := s.Service.Open(ctx, s.Date)
	if err != nil {
		return err
	}
	return s.print(day)
}

// Reload drops local edits and loads the day again.
type Reload struct {
	Day
}

func (r *Reload) Do(ctx context.Context) error {
	day, err := r.Service.Reload(ctx, r.Date)
	if err != nil {
		return err
	}
	return r.print(day)
}
