package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultSlot is the fallback timebox length used when none is configured.
	DefaultSlot = "1h"
)

var (
	slotPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitMinutes = map[string]int{
		"m":       1,
		"min":     1,
		"mins":    1,
		"minute":  1,
		"minutes": 1,
		"h":       60,
		"hr":      60,
		"hrs":     60,
		"hour":    60,
		"hours":   60,
	}
)

// ParseMinutes parses a human-friendly slot length (for example "45m", "2h"
// or "1h30m") into minutes along with a canonical representation. A bare
// number is read as minutes. When the input is empty DefaultSlot is used.
func ParseMinutes(input string) (int, string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		trimmed = DefaultSlot
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		if n <= 0 {
			return 0, "", fmt.Errorf("duration must be greater than zero")
		}
		return n, FormatMinutes(n), nil
	}

	remaining := strings.ToLower(trimmed)
	total := 0
	for len(remaining) > 0 {
		matches := slotPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, "", fmt.Errorf("invalid duration segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, "", fmt.Errorf("invalid duration value %q: %w", matches[1], err)
		}
		per, ok := unitMinutes[matches[2]]
		if !ok {
			return 0, "", fmt.Errorf("unsupported duration unit %q", matches[2])
		}
		total += value * per

		remaining = remaining[len(matches[0]):]
	}

	if total <= 0 {
		return 0, "", fmt.Errorf("duration must be greater than zero")
	}
	if total > MinutesPerDay {
		return 0, "", fmt.Errorf("duration %q is longer than a day", trimmed)
	}

	return total, FormatMinutes(total), nil
}

// FormatMinutes renders a minute count using hour/minute tokens.
func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	var parts []string
	if h := minutes / 60; h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m := minutes % 60; m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	return strings.Join(parts, "")
}
