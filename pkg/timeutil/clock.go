package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall clock position with minute granularity, counted from
// midnight. Valid positions are [Midnight, LastMinute]; EndOfDay is a
// sentinel that is only meaningful as the end of an interval.
type TimeOfDay int

const (
	// MinutesPerDay is 24 hours * 60 minutes.
	MinutesPerDay = 24 * 60

	// Midnight is 00:00 at the start of the day.
	Midnight TimeOfDay = 0
	// LastMinute is 23:59, the latest position arithmetic saturates at.
	LastMinute TimeOfDay = MinutesPerDay - 1
	// EndOfDay marks an interval that runs up to the following midnight.
	EndOfDay TimeOfDay = MinutesPerDay
)

// Clock builds a TimeOfDay from an hour and minute. Out of range values
// saturate to the valid range.
func Clock(hour, minute int) TimeOfDay {
	return Midnight.Add(hour*60 + minute)
}

// FromTime returns the local wall clock position of t.
func FromTime(t time.Time) TimeOfDay {
	return Clock(t.Hour(), t.Minute())
}

// Hour returns the hour component. EndOfDay reports 24.
func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

// Minute returns the minute component.
func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

// Add moves t by minutes, saturating at Midnight and LastMinute. It never
// wraps into a neighbouring day.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	v := int(t) + minutes
	switch {
	case v < int(Midnight):
		return Midnight
	case v > int(LastMinute):
		return LastMinute
	default:
		return TimeOfDay(v)
	}
}

// Sub returns the number of minutes from u to t.
func (t TimeOfDay) Sub(u TimeOfDay) int {
	return int(t) - int(u)
}

// RoundUp returns t rounded up to the next multiple of step minutes. A value
// already on the mark is returned unchanged. The result may be EndOfDay.
func (t TimeOfDay) RoundUp(step int) TimeOfDay {
	if step <= 1 {
		return t
	}
	v := int(t)
	if rem := v % step; rem != 0 {
		v += step - rem
	}
	if v > int(EndOfDay) {
		v = int(EndOfDay)
	}
	return TimeOfDay(v)
}

// IsEndOfDay reports whether t is the end of day sentinel.
func (t TimeOfDay) IsEndOfDay() bool {
	return t == EndOfDay
}

// Exhausted reports whether nothing more can be scheduled after t.
func (t TimeOfDay) Exhausted() bool {
	return t >= LastMinute
}

// Valid reports whether t is a clock position or the end of day sentinel.
func (t TimeOfDay) Valid() bool {
	return t >= Midnight && t <= EndOfDay
}

// String renders t as HH:mm. EndOfDay renders as 24:00.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// WireEnd renders t for use as an interval end in the persisted format,
// where the end of day is written as 00:00.
func (t TimeOfDay) WireEnd() string {
	if t.IsEndOfDay() {
		return "00:00"
	}
	return t.String()
}

// ParseClock parses H:mm or HH:mm. 24:00 parses to EndOfDay.
func ParseClock(v string) (TimeOfDay, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: expected HH:mm", v)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", v, err)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", v, err)
	}
	if h == 24 && m == 0 {
		return EndOfDay, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || len(ms) != 2 {
		return 0, fmt.Errorf("invalid time %q: out of range", v)
	}
	return TimeOfDay(h*60 + m), nil
}

// ParseEnd parses an interval end. Both 00:00 and 24:00 mean EndOfDay, since
// an interval can not end at the midnight it started after.
func ParseEnd(v string) (TimeOfDay, error) {
	t, err := ParseClock(v)
	if err != nil {
		return 0, err
	}
	if t == Midnight {
		return EndOfDay, nil
	}
	return t, nil
}
