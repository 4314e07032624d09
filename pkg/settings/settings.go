// Package settings defines the user preferences shared by the local store
// and the remote service.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	"tableflip.dev/timebox/pkg/timeutil"
)

// Settings are the user's preferences.
type Settings struct {
	Name                 string `json:"name"`
	RemindBeforeActivity bool   `json:"remindBeforeActivity"`
	RemindOnStart        bool   `json:"remindOnStart"`
	NudgeDuringActivity  bool   `json:"nudgeDuringActivity"`
	CongratulateOnFinish bool   `json:"congratulateOnFinish"`
	DefaultSlotDuration  int    `json:"defaultSlotDuration"`
	TelegramLinked       bool   `json:"telegramLinked"`
}

// Update is the body accepted by the remote settings endpoint.
type Update struct {
	Name                 string `json:"name"`
	RemindBeforeActivity bool   `json:"remindBeforeActivity"`
	RemindOnStart        bool   `json:"remindOnStart"`
	NudgeDuringActivity  bool   `json:"nudgeDuringActivity"`
	CongratulateOnFinish bool   `json:"congratulateOnFinish"`
	DefaultSlotDuration  int    `json:"defaultSlotDuration"`
}

// Defaults returns the settings of a fresh install.
func Defaults() Settings {
	return Settings{
		RemindBeforeActivity: true,
		RemindOnStart:        true,
		NudgeDuringActivity:  true,
		CongratulateOnFinish: true,
		DefaultSlotDuration:  60,
	}
}

// SlotDurations lists the timebox lengths, in minutes, a user may choose.
var SlotDurations = []int{15, 30, 45, 60, 90, 120}

// ValidSlotDuration reports whether minutes is one of SlotDurations.
func ValidSlotDuration(minutes int) bool {
	for _, d := range SlotDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// SlotLabel renders a slot duration for display.
func SlotLabel(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes == 60:
		return "1 hour"
	default:
		return timeutil.FormatMinutes(minutes)
	}
}

// Update builds the remote update request from s.
func (s Settings) Update() Update {
	return Update{
		Name:                 s.Name,
		RemindBeforeActivity: s.RemindBeforeActivity,
		RemindOnStart:        s.RemindOnStart,
		NudgeDuringActivity:  s.NudgeDuringActivity,
		CongratulateOnFinish: s.CongratulateOnFinish,
		DefaultSlotDuration:  s.DefaultSlotDuration,
	}
}

// SlotDuration returns the configured default timebox length, falling back
// to an hour for unset or unsupported values.
func (s Settings) SlotDuration() int {
	if !ValidSlotDuration(s.DefaultSlotDuration) {
		return 60
	}
	return s.DefaultSlotDuration
}

// ParseSwitch is strconv.ParseBool with the addition of on/off and yes/no.
func ParseSwitch(str string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return false, &strconv.NumError{Func: "ParseSwitch", Num: str, Err: strconv.ErrSyntax}
}
