package cmdutils

import (
	"github.com/pkg/errors"
)

// Sentinels the top-level driver maps to the tool's exit codes: 0 when
// every input succeeded, 3 when all of them failed, 2 when only some
// did, 1 for usage errors.
var (
	ErrAllFailed  = errors.New("all input files failed")
	ErrSomeFailed = errors.New("some input files failed")
)

type IncorrectUsageError struct {
	err error
}

func (e *IncorrectUsageError) Error() string {
	return e.err.Error()
}

func (e *IncorrectUsageError) Unwrap() error {
	return e.err
}

// WrapIncorrectUsageError marks err as a usage error, which causes the
// command's usage message to be printed along with the error.
func WrapIncorrectUsageError(err error) error {
	return &IncorrectUsageError{err: err}
}

func IsIncorrectUsageError(err error) bool {
	var usageErr *IncorrectUsageError
	return errors.As(err, &usageErr)
}

// ExitCode translates an error returned by a command into the process
// exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrAllFailed):
		return 3
	case errors.Is(err, ErrSomeFailed):
		return 2
	default:
		return 1
	}
}
