package leads

import (
	"errors"
	"fmt"
)

// ErrLocked is returned when another invocation holds the store lock past
// the configured timeout.
var ErrLocked = errors.New("lead store is locked by another process")

var errEmptyDocument = errors.New("empty document")

type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("lead store not found: %s", e.Path)
}

type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode lead store %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ReadError is a failure to read a store file that exists, such as a
// permission error or a path that is a directory.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read lead store %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write lead store %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsNotFound reports whether err carries a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
