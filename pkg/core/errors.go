package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrAlreadyExists   = errors.New("graph already exists")
	ErrNotFound        = errors.New("graph not found")
	ErrCorruptMetadata = errors.New("graph metadata is corrupt")
	ErrCorruptSnapshot = errors.New("document snapshot is corrupt")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
	ErrIO              = errors.New("i/o failure")
	ErrLocked          = errors.New("graph is locked by another process")
)

// IOError reports a filesystem failure together with the operation and path
// that caused it. It matches ErrIO and unwraps to the underlying OS error.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// NewIOError wraps err as an *IOError.
func NewIOError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
