package update

import (
	"errors"
	"fmt"
)

// Errors returned by Dispatcher.Handle when an update could not be queued.
// The update_id is forgotten first, so a redelivery by the provider is processed.
var (
	ErrQueueFull = errors.New("reply queue full")
	ErrStopped   = errors.New("dispatcher stopped")
)

// DownstreamError wraps a failure of a collaborator used while replying.
// It is logged and never reaches the provider.
type DownstreamError struct {
	Op  string
	Err error
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DownstreamError) Unwrap() error {
	return e.Err
}
