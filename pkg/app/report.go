package app

import (
	"context"
	"sort"
	"strings"

	"tableflip.dev/timebox/pkg/schedule"
)

// ReportDay is one saved day in a report.
type ReportDay struct {
	Date    string
	Blocks  []schedule.Block
	Minutes int
}

// LabelTotal sums the time given to one label. Labels are grouped without
// regard to case or surrounding space; Label keeps the first spelling seen.
type LabelTotal struct {
	Label   string
	Minutes int
	Count   int
}

// ReportResult covers the saved days between two dates.
type ReportResult struct {
	Since  string
	Until  string
	Days   []ReportDay
	Labels []LabelTotal
	Total  int
}

// Report sums the labelled blocks of the days saved between since and
// until, both YYYY-MM-DD and inclusive. Only saved copies count; drafts do
// not.
func (s *Service) Report(ctx context.Context, since, until string) (ReportResult, error) {
	if s.Persistence == nil {
		return ReportResult{}, ErrNoPersistence
	}
	if since > until {
		since, until = until, since
	}

	res := ReportResult{Since: since, Until: until}
	totals := make(map[string]*LabelTotal)
	for _, date := range s.Persistence.Dates(ctx) {
		if date < since || date > until {
			continue
		}
		if err := ctx.Err(); err != nil {
			return ReportResult{}, err
		}
		sch, err := s.Persistence.LoadLocal(date)
		if err != nil {
			s.Log.Warn("skipping unreadable day", "date", date, "err", err)
			continue
		}
		if sch == nil {
			continue
		}

		day := ReportDay{Date: date, Blocks: schedule.Filled(sch.Blocks)}
		for _, b := range day.Blocks {
			day.Minutes += b.Duration()
			key := strings.ToLower(strings.TrimSpace(b.Label))
			t, ok := totals[key]
			if !ok {
				t = &LabelTotal{Label: strings.TrimSpace(b.Label)}
				totals[key] = t
			}
			t.Minutes += b.Duration()
			t.Count++
		}
		res.Total += day.Minutes
		res.Days = append(res.Days, day)
	}

	for _, t := range totals {
		res.Labels = append(res.Labels, *t)
	}
	sort.Slice(res.Labels, func(i, j int) bool {
		if res.Labels[i].Minutes != res.Labels[j].Minutes {
			return res.Labels[i].Minutes > res.Labels[j].Minutes
		}
		return res.Labels[i].Label < res.Labels[j].Label
	})
	return res, nil
}
