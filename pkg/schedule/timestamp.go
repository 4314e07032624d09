package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	layoutISO      = "2006-01-02"
	layoutLocalISO = "2006-01-02T15:04:05"
)

// ParseTime accepts RFC 3339 timestamps as well as zone-less ISO-8601 local
// date-times, which older clients wrote.
func ParseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(layoutLocalISO, trimFraction(v), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", v)
	}
	return t, nil
}

func trimFraction(v string) string {
	if len(v) > len(layoutLocalISO) && v[len(layoutLocalISO)] == '.' {
		return v[:len(layoutLocalISO)]
	}
	return v
}

type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var timestamp string
	if err := json.Unmarshal(b, &timestamp); err != nil {
		return err
	}
	if timestamp == "" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	t.Time, err = ParseTime(timestamp)
	return err
}

func (t Timestamp) String() string {
	return t.Format(time.RFC3339)
}

// ParseDate parses a YYYY-MM-DD calendar date in the local zone.
func ParseDate(v string) (time.Time, error) {
	return time.ParseInLocation(layoutISO, v, time.Local)
}

// FormatDate renders the calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(layoutISO)
}

// SameDay reports whether date names the local calendar day of t.
func SameDay(date string, t time.Time) bool {
	return date == FormatDate(t)
}
