package errorsx

import (
	"errors"
	"fmt"
)

// Compact returns the first error in the set, if any.
func Compact(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}

// String useful wrapper for string constants as errors.
type String string

func (t String) Error() string {
	return string(t)
}

// Exit an error carrying the status code the process should exit with.
func Exit(code int, cause error) error {
	if cause == nil {
		cause = fmt.Errorf("exit status %d", code)
	}

	return exit{error: cause, code: code}
}

// ExitCode extracts the exit status from the error, defaulting to 1 for
// errors that do not carry one.
func ExitCode(err error) int {
	var e exit

	if err == nil {
		return 0
	}

	if errors.As(err, &e) {
		return e.code
	}

	return 1
}

type exit struct {
	error
	code int
}

func (t exit) Unwrap() error {
	return t.error
}
