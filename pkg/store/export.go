package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ical "github.com/arran4/golang-ical"

	"tableflip.dev/timebox/pkg/schedule"
)

const productID = "-//tableflip.dev//timebox//EN"

// Export writes schedule_<date>.json and schedule_<date>.ics into the export
// directory and returns it.
func (p *persistence) Export(s *schedule.Schedule) (string, error) {
	if p.exportPath == "" {
		return "", errors.New("store: export path unknown")
	}
	if err := os.MkdirAll(p.exportPath, 0o755); err != nil {
		return "", fmt.Errorf("store: ensure export path: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("store: encode export: %w", err)
	}
	if err := writeAtomic(filepath.Join(p.exportPath, exportName(s.Date, "json")), data); err != nil {
		return "", err
	}

	cal, err := Calendar(s)
	if err != nil {
		return "", err
	}
	if err := writeAtomic(filepath.Join(p.exportPath, exportName(s.Date, "ics")), []byte(cal.Serialize())); err != nil {
		return "", err
	}
	return p.exportPath, nil
}

// Calendar renders the labelled blocks of s as calendar events in the local
// zone.
func Calendar(s *schedule.Schedule) (*ical.Calendar, error) {
	day, err := schedule.ParseDate(s.Date)
	if err != nil {
		return nil, fmt.Errorf("store: schedule date %q: %w", s.Date, err)
	}
	stamp := s.UpdatedAt.Time
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	for _, b := range schedule.Filled(s.Blocks) {
		ev := cal.AddEvent(b.ID + "@timebox")
		ev.SetDtStampTime(stamp.UTC())
		ev.SetStartAt(wallClock(day, int(b.Start)))
		ev.SetEndAt(wallClock(day, int(b.End)))
		ev.SetSummary(b.Label)
	}
	return cal, nil
}

// wallClock is minutes past midnight on day; 1440 is the next midnight.
func wallClock(day time.Time, minutes int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minutes, 0, 0, day.Location())
}

func exportName(date, ext string) string {
	return fmt.Sprintf("schedule_%s.%s", date, ext)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}
