package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/timebox/pkg/schedule"
)

const (
	layoutLoose = "2006-1-2"
	layoutShort = "1/2"
)

// DateOptions selects the day a command works on.
type DateOptions struct {
	Date string
}

func AddDateArg(cmd *cobra.Command, o *DateOptions) {
	cmd.PersistentFlags().StringVar(&o.Date, "date", "today",
		`Day to work on, example: --date="2024-02-28", --date="2/28" or --date=tomorrow.`)
}

// Resolve turns the flag into a YYYY-MM-DD date relative to now.
func (o *DateOptions) Resolve(now time.Time) (string, error) {
	v := strings.ToLower(strings.TrimSpace(o.Date))
	switch v {
	case "", "today":
		return schedule.FormatDate(now), nil
	case "tomorrow":
		return schedule.FormatDate(now.AddDate(0, 0, 1)), nil
	case "yesterday":
		return schedule.FormatDate(now.AddDate(0, 0, -1)), nil
	}

	if t, err := time.ParseInLocation(layoutLoose, v, now.Location()); err == nil {
		return schedule.FormatDate(t), nil
	}
	// Let the year be the same.
	t, err := time.ParseInLocation(layoutShort, v, now.Location())
	if err != nil {
		return "", fmt.Errorf("invalid --date %q, want YYYY-MM-DD, M/D, today, tomorrow or yesterday", o.Date)
	}
	t = t.AddDate(now.Year(), 0, 0)
	return schedule.FormatDate(t), nil
}

// RangeOptions selects a span of days. An empty Since means the week
// ending at Until.
type RangeOptions struct {
	Since string
	Until string
}

func AddRangeArgs(cmd *cobra.Command, o *RangeOptions) {
	cmd.Flags().StringVar(&o.Since, "since", "", "First day of the range, defaults to six days before --until.")
	cmd.Flags().StringVar(&o.Until, "until", "today", "Last day of the range.")
}

// Resolve turns the flags into YYYY-MM-DD dates relative to now.
func (o *RangeOptions) Resolve(now time.Time) (string, string, error) {
	until, err := (&DateOptions{Date: o.Until}).Resolve(now)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(o.Since) == "" {
		t, _ := schedule.ParseDate(until)
		return schedule.FormatDate(t.AddDate(0, 0, -6)), until, nil
	}
	since, err := (&DateOptions{Date: o.Since}).Resolve(now)
	if err != nil {
		return "", "", err
	}
	return since, until, nil
}
