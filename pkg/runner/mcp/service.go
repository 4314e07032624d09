// Package mcp provides the Model Context Protocol server integration for timebox.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/printers"
	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/timeutil"
)

// Service adapts app.Service to the shapes the MCP tools return.
type Service struct {
	App *app.Service
	// Now picks the date used when a request names none; defaults to
	// time.Now.
	Now func() time.Time
}

// ErrNotConfigured is returned when the service has no app behind it.
var ErrNotConfigured = errors.New("mcp: service is not configured")

// SaveDTO reports a save.
type SaveDTO struct {
	Date      string `json:"date"`
	Path      string `json:"path"`
	Synced    bool   `json:"synced"`
	LoggedOut bool   `json:"loggedOut"`
	Message   string `json:"message"`
}

// NewService builds a service wrapper around a.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

func (s *Service) date(d string) (string, error) {
	if s.App == nil {
		return "", ErrNotConfigured
	}
	d = strings.TrimSpace(d)
	if d == "" {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		return schedule.FormatDate(now()), nil
	}
	if _, err := schedule.ParseDate(d); err != nil {
		return "", fmt.Errorf("date %q must be YYYY-MM-DD", d)
	}
	return d, nil
}

func view(day app.Day) printers.DayView {
	return printers.NewDayView(day.State.Date, string(day.Source), day.Notice, day.State.Blocks)
}

func (s *Service) apply(ctx context.Context, date string, fn func(context.Context, string) (app.Day, error)) (printers.DayView, error) {
	d, err := s.date(date)
	if err != nil {
		return printers.DayView{}, err
	}
	day, err := fn(ctx, d)
	if err != nil {
		return printers.DayView{}, err
	}
	return view(day), nil
}

// GetSchedule returns the day being edited for date.
func (s *Service) GetSchedule(ctx context.Context, date string) (printers.DayView, error) {
	return s.apply(ctx, date, func(ctx context.Context, d string) (app.Day, error) {
		return s.App.Open(ctx, d)
	})
}

// SetBlock changes one block.
func (s *Service) SetBlock(ctx context.Context, date string, edit app.BlockEdit) (printers.DayView, error) {
	return s.apply(ctx, date, func(ctx context.Context, d string) (app.Day, error) {
		return s.App.SetBlock(ctx, d, edit)
	})
}

// AddTimebox appends a block to the day.
func (s *Service) AddTimebox(ctx context.Context, date string) (printers.DayView, error) {
	return s.apply(ctx, date, s.App.AddTimebox)
}

// DeleteBlock removes a block from the day.
func (s *Service) DeleteBlock(ctx context.Context, date string, index int) (printers.DayView, error) {
	return s.apply(ctx, date, func(ctx context.Context, d string) (app.Day, error) {
		return s.App.DeleteBlock(ctx, d, index)
	})
}

// AdjustBlocks inserts a block of minutes after index, taken from its
// neighbours.
func (s *Service) AdjustBlocks(ctx context.Context, date string, index int, minutes string) (printers.DayView, error) {
	m, _, err := timeutil.ParseMinutes(minutes)
	if err != nil {
		return printers.DayView{}, err
	}
	return s.apply(ctx, date, func(ctx context.Context, d string) (app.Day, error) {
		return s.App.InsertBetween(ctx, d, index, m)
	})
}

// SaveSchedule saves the day locally and to the remote service.
func (s *Service) SaveSchedule(ctx context.Context, date string) (SaveDTO, error) {
	d, err := s.date(date)
	if err != nil {
		return SaveDTO{}, err
	}
	res, err := s.App.Save(ctx, d)
	if err != nil {
		return SaveDTO{}, err
	}
	return SaveDTO{
		Date:      d,
		Path:      res.Path,
		Synced:    res.Synced,
		LoggedOut: res.LoggedOut,
		Message:   res.Message,
	}, nil
}

// ListDates returns the days saved locally.
func (s *Service) ListDates(ctx context.Context) ([]string, error) {
	if s.App == nil {
		return nil, ErrNotConfigured
	}
	return s.App.Dates(ctx)
}

// CarryOver starts the day to with the labelled blocks of from. An empty
// from is the day before to.
func (s *Service) CarryOver(ctx context.Context, from, to string) (printers.DayView, error) {
	return s.apply(ctx, to, func(ctx context.Context, d string) (app.Day, error) {
		src := strings.TrimSpace(from)
		if src == "" {
			t, _ := schedule.ParseDate(d)
			src = schedule.FormatDate(t.AddDate(0, 0, -1))
		} else if _, err := schedule.ParseDate(src); err != nil {
			return app.Day{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", from)
		}
		return s.App.CarryOver(ctx, src, d)
	})
}

// LabelDTO is the time given to one label.
type LabelDTO struct {
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
	Blocks  int    `json:"blocks"`
}

// DayTotalDTO is the labelled time of one saved day.
type DayTotalDTO struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// ReportDTO sums saved days.
type ReportDTO struct {
	Since  string        `json:"since"`
	Until  string        `json:"until"`
	Total  int           `json:"total"`
	Days   []DayTotalDTO `json:"days"`
	Labels []LabelDTO    `json:"labels"`
}

// Report sums the saved days between since and until. An empty until is
// today and an empty since is six days before until.
func (s *Service) Report(ctx context.Context, since, until string) (ReportDTO, error) {
	u, err := s.date(until)
	if err != nil {
		return ReportDTO{}, err
	}
	from := strings.TrimSpace(since)
	if from == "" {
		t, _ := schedule.ParseDate(u)
		from = schedule.FormatDate(t.AddDate(0, 0, -6))
	} else if from, err = s.date(from); err != nil {
		return ReportDTO{}, err
	}

	res, err := s.App.Report(ctx, from, u)
	if err != nil {
		return ReportDTO{}, err
	}
	dto := ReportDTO{
		Since:  res.Since,
		Until:  res.Until,
		Total:  res.Total,
		Days:   make([]DayTotalDTO, 0, len(res.Days)),
		Labels: make([]LabelDTO, 0, len(res.Labels)),
	}
	for _, d := range res.Days {
		dto.Days = append(dto.Days, DayTotalDTO{Date: d.Date, Minutes: d.Minutes})
	}
	for _, l := range res.Labels {
		dto.Labels = append(dto.Labels, LabelDTO{Label: l.Label, Minutes: l.Minutes, Blocks: l.Count})
	}
	return dto, nil
}
