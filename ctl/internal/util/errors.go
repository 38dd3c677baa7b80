package util

import "errors"

// ExitCode is the process exit status a command finishes with.
type ExitCode int

const (
	Success ExitCode = iota
	GeneralError
	// OrphansFound is returned by checks that found unreferenced pseudo-store files.
	OrphansFound
)

// CtlError is an error that requests a specific exit code.
type CtlError struct {
	err  error
	code ExitCode
}

func NewCtlError(err error, code ExitCode) *CtlError {
	return &CtlError{err: err, code: code}
}

func (e *CtlError) Error() string {
	return e.err.Error()
}

func (e *CtlError) Unwrap() error {
	return e.err
}

func (e *CtlError) ExitCode() ExitCode {
	return e.code
}

// GetExitCode returns the exit code err requests, GeneralError for any other non-nil error.
func GetExitCode(err error) ExitCode {
	if err == nil {
		return Success
	}
	var ctlErr *CtlError
	if errors.As(err, &ctlErr) {
		return ctlErr.code
	}
	return GeneralError
}
