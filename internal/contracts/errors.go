package contracts

import (
	"errors"
	"fmt"
	"time"
)

// ErrSystemStateNotFound is returned when a system state id is unknown
// for the requested team and side
var ErrSystemStateNotFound = errors.New("system state not found")

// ValidationError is a client-input fault
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NoActiveCoachError means no priority role had an active window
// for a team and side on a date
type NoActiveCoachError struct {
	Team string
	Side Side
	Date time.Time
}

func (e *NoActiveCoachError) Error() string {
	return fmt.Sprintf("no active coach window for %s %s on %s", e.Team, e.Side, e.Date.Format(DateLayout))
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
