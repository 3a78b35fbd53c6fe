package cli

import (
	"errors"
	"fmt"
)

// Exit codes
const (
	ExitOK       = 0
	ExitFailure  = 1 // bad input, parse failure, runtime error
	ExitBlocking = 2 // validate --strict found error-severity issues
)

// exitError is an error whose message is meant for the user verbatim and
// which selects the process exit code
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string { return e.msg }

func (e *exitError) Unwrap() error { return e.err }

func fail(code int, err error, format string, args ...any) error {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...), err: err}
}

// ExitCode maps an error returned by Execute to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitFailure
}
