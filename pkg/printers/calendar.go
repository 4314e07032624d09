package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/timebox/pkg/schedule"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Months prints a small calendar for every month that has a saved day,
// with the saved days in bold.
func (pp *PrettyPrint) Months(dates []string) {
	saved := make(map[string]bool, len(dates))
	var months []time.Time
	seen := make(map[string]bool)
	for _, d := range dates {
		t, err := schedule.ParseDate(d)
		if err != nil {
			continue
		}
		saved[d] = true
		key := t.Format("2006-01")
		if !seen[key] {
			seen[key] = true
			months = append(months, time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
		}
	}
	for _, m := range months {
		pp.Month(m, saved)
	}
}

// Month prints one month grid starting on Sunday.
func (pp *PrettyPrint) Month(then time.Time, saved map[string]bool) {
	w := pp.out()
	tf := color.New(color.FgWhite, color.Italic)

	m := then.Format("January 2006")
	mid := (width - len(m)) / 2
	if mid < 0 {
		mid = 0
	}
	_, _ = tf.Fprintf(w, "%s%s\n", strings.Repeat(" ", mid), m)

	d := StartDay(then)
	// Pad out the start of the month.
	_, _ = fmt.Fprint(w, strings.Repeat("   ", int(d)))

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)

	for i := 1; i <= DaysIn(then); i++ {
		day := time.Date(then.Year(), then.Month(), i, 0, 0, 0, 0, time.UTC)
		if saved[schedule.FormatDate(day)] {
			_, _ = l2.Fprintf(w, "%2d ", i)
		} else {
			_, _ = l1.Fprintf(w, "%2d ", i)
		}

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(w, "\n")
		}
	}
	_, _ = fmt.Fprint(w, "\n\n")
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}
