// Package report prints where the time of saved days went.
package report

import (
	"context"
	"fmt"
	"io"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/printers"
	"tableflip.dev/timebox/pkg/timeutil"
)

type Report struct {
	Service *app.Service
	Since   string
	Until   string
	JSON    bool
	ShowID  bool
	Out     io.Writer
}

type dayJSON struct {
	Date    string               `json:"date"`
	Minutes int                  `json:"minutes"`
	Blocks  []printers.BlockView `json:"blocks"`
}

type totalJSON struct {
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
	Blocks  int    `json:"blocks"`
}

type reportJSON struct {
	Since  string      `json:"since"`
	Until  string      `json:"until"`
	Days   []dayJSON   `json:"days"`
	Labels []totalJSON `json:"labels"`
	Total  int         `json:"total"`
}

func (r *Report) Do(ctx context.Context) error {
	res, err := r.Service.Report(ctx, r.Since, r.Until)
	if err != nil {
		return err
	}

	if r.JSON {
		out := reportJSON{Since: res.Since, Until: res.Until, Total: res.Total, Days: []dayJSON{}, Labels: []totalJSON{}}
		for _, d := range res.Days {
			out.Days = append(out.Days, dayJSON{
				Date:    d.Date,
				Minutes: d.Minutes,
				Blocks:  printers.NewDayView(d.Date, "", "", d.Blocks).Blocks,
			})
		}
		for _, l := range res.Labels {
			out.Labels = append(out.Labels, totalJSON{Label: l.Label, Minutes: l.Minutes, Blocks: l.Count})
		}
		return printers.JSON(r.Out, out)
	}

	pp := printers.PrettyPrint{Out: r.Out, ShowID: r.ShowID}
	for _, d := range res.Days {
		pp.Day(d.Date, d.Blocks, fmt.Sprintf("%s planned", timeutil.FormatMinutes(d.Minutes)))
	}
	totals := make([]printers.Total, 0, len(res.Labels))
	for _, l := range res.Labels {
		totals = append(totals, printers.Total{Label: l.Label, Minutes: l.Minutes, Count: l.Count})
	}
	pp.Totals(fmt.Sprintf("%s to %s", res.Since, res.Until), totals, res.Total)
	return nil
}
