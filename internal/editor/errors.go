package editor

import (
	"errors"
	"fmt"
)

// ErrStaleResponse is returned when a newer request of the same kind was
// issued while this one was in flight. Its result has been discarded.
var ErrStaleResponse = errors.New("editor: stale response discarded")

// NetworkError wraps a failed remote call. The live snapshot is kept.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("editor: %s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
