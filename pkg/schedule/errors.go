package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEnoughRoom is returned when a neighbour is too short to donate
	// time to a new block.
	ErrNotEnoughRoom = errors.New("schedule: not enough room")
	// ErrInvalidInterval is returned for blocks that do not start before
	// they end.
	ErrInvalidInterval = errors.New("schedule: invalid interval")
	// ErrOverlap is returned when a block would overlap a neighbour.
	ErrOverlap = errors.New("schedule: blocks overlap")
	// ErrIndexOutOfRange is returned for positions outside the block list.
	ErrIndexOutOfRange = errors.New("schedule: index out of range")
)

// ValidationError is a rejected edit. Message is meant for the user; the
// state the edit was applied to is left untouched.
type ValidationError struct {
	Reason  error
	Message string
}

func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if v.Message == "" && v.Reason != nil {
		return v.Reason.Error()
	}
	return v.Message
}

func (v *ValidationError) Unwrap() error {
	return v.Reason
}

func invalid(reason error, format string, args ...any) error {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
