package executor

import (
	"errors"
	"fmt"
)

// ExitNotRun is the status recorded for a command whose program never started.
const ExitNotRun = 127

var errEmptyCommand = errors.New("empty command")

// ExecError is a failure to replace a child's image with the requested
// program. It only ever affects that one command.
type ExecError struct {
	Name string
	Err  error
}

func (e *ExecError) Error() string {
	if e.Name == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// FatalError is a resource failure the interpreter cannot recover from:
// pipe creation or fork.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err should terminate the interpreter.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
