package cli

import (
	"errors"
	"strconv"
)

// Exit codes returned by the ecopredict binary.
const (
	ExitCodeError      = 1
	ExitCodeValidation = 2
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// validationError wraps err so the binary exits with ExitCodeValidation.
func validationError(err error) error {
	return &ExitError{Code: ExitCodeValidation, Err: err}
}

// ExitCode extracts the exit code for err: 0 for nil, the ExitError code
// when one is wrapped, ExitCodeError otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCodeError
}
