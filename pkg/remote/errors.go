package remote

import (
	"errors"
	"fmt"
	"net/http"

	"tableflip.dev/timebox/pkg/session"
)

var (
	// ErrAuth matches every failure that ended the session.
	ErrAuth = errors.New("remote: not authenticated")
	// ErrNotFound is returned when the service has nothing for the request,
	// such as a day without a saved schedule.
	ErrNotFound = errors.New("remote: not found")
)

// AuthError reports that credentials could not be recovered. The session
// has been cleared by the time it is returned.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote: %s: %v", e.Reason, e.Err)
	}
	return "remote: " + e.Reason
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("remote: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is lets session code recognise an unreachable service without importing
// this package.
func (e *NetworkError) Is(target error) bool {
	return target == session.ErrUnreachable
}

// StatusError is a response outside the 2xx range.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote: %d %s", e.Code, http.StatusText(e.Code))
}

func asNetwork(err error, target **NetworkError) bool {
	return errors.As(err, target)
}

// Outcome classifies the result of a remote call.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeAuthFailure
	OutcomeNetworkFailure
	OutcomeNotFound
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAuthFailure:
		return "auth failure"
	case OutcomeNetworkFailure:
		return "network failure"
	case OutcomeNotFound:
		return "not found"
	default:
		return "rejected"
	}
}

// Classify maps an error returned by this package to an Outcome.
func Classify(err error) Outcome {
	var nerr *NetworkError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrAuth):
		return OutcomeAuthFailure
	case errors.As(err, &nerr):
		return OutcomeNetworkFailure
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeRejected
	}
}
