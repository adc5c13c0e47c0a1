package leaderboardapi

import (
	"errors"
	"fmt"
)

// Sentinel errors for upstream calls.
var (
	// ErrTransport marks network failures: the request never got a response.
	ErrTransport = errors.New("upstream unreachable")
	// ErrStatus marks non-2xx responses; see StatusError for details.
	ErrStatus = errors.New("upstream returned an error status")
	// ErrDecode marks responses whose body is not the expected shape.
	ErrDecode = errors.New("malformed upstream response")
	// ErrDetailNotFound is returned when a contestant search comes back empty.
	ErrDetailNotFound = errors.New("contestant details not found")
	// ErrInvalidBaseURL is returned by New for unusable base URLs.
	ErrInvalidBaseURL = errors.New("invalid upstream base url")
	// ErrEmptyToken is returned when login succeeds without a token.
	ErrEmptyToken = errors.New("login response carried no token")
)

// StatusError describes a non-2xx upstream response.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: upstream status %d: %s", e.Op, e.Code, e.Body)
}

// Unwrap lets errors.Is match ErrStatus.
func (e *StatusError) Unwrap() error { return ErrStatus }

// outcome maps an error to the metrics outcome label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrDecode), errors.Is(err, ErrDetailNotFound):
		return "decode"
	default:
		return "other"
	}
}
