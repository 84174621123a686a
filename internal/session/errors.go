package session

import (
	"errors"
	"fmt"
)

// ErrPersist marks a failed write-through. The in-memory mutation that
// triggered it has already been applied.
var ErrPersist = errors.New("session state not persisted")

// PersistError reports which collection could not be written.
type PersistError struct {
	Collection string
	Key        string
	Err        error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s (key %q): %v", e.Collection, e.Key, e.Err)
}

// Unwrap exposes both the sentinel and the storage cause.
func (e *PersistError) Unwrap() []error {
	return []error{ErrPersist, e.Err}
}

// Warning returns a short, client-safe description of the failure.
func (e *PersistError) Warning() string {
	return fmt.Sprintf("%s was updated but could not be saved", e.Collection)
}
