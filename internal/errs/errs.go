// Package errs carries the reason shown to the user next to an error.
package errs

import (
	"errors"
	"fmt"
)

// Error pairs a technical error with a short reason for the user. Error()
// reports the technical side, or the reason when Err is nil.
type Error struct {
	Err    error
	Reason string
}

func (e Error) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Err.Error()
}

func (e Error) Unwrap() error { return e.Err }

// Wrap attaches reason to err.
func Wrap(err error, reason string) Error {
	return Error{Err: err, Reason: reason}
}

// Wrapf attaches a formatted reason to err.
func Wrapf(err error, format string, a ...any) Error {
	return Wrap(err, fmt.Sprintf(format, a...))
}

// UserErrorf builds an error whose message is meant to be read by the user,
// so it may be capitalized and punctuated.
func UserErrorf(format string, a ...any) error {
	return fmt.Errorf(format, a...) //nolint:err113
}

// Reason returns the first non-empty reason in err's chain, or fallback.
func Reason(err error, fallback string) string {
	for err != nil {
		var e Error
		if !errors.As(err, &e) {
			break
		}
		if e.Reason != "" {
			return e.Reason
		}
		err = e.Err
	}
	return fallback
}
