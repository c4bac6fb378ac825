package document

import (
	"errors"
	"fmt"
)

// Document errors.
var (
	// ErrNotText indicates a file whose content is not plain text.
	ErrNotText = errors.New("not a text file")

	// ErrNoPath indicates a save with no file name.
	ErrNoPath = errors.New("no file name")

	// ErrIsDirectory indicates a path naming a directory.
	ErrIsDirectory = errors.New("is a directory")
)

// OperationError represents an error that occurred during a file operation.
type OperationError struct {
	Op     string // "open" or "save"
	Target string // file path
	Err    error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
