package hoot

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrUnknownCapability is returned when the model asks for a capability no provider advertises.
	ErrUnknownCapability = errors.New("unknown capability")
	// ErrCapabilityFailed is returned when a provider fails to execute a capability.
	ErrCapabilityFailed = errors.New("capability failed")
	// ErrNotStarted is returned when a query arrives before Start completed.
	ErrNotStarted = errors.New("orchestrator not started")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("orchestrator already started")
)

// TurnError reports an aborted query. The history up to the failure is preserved.
type TurnError struct {
	RunID uuid.UUID
	Depth int
	Err   error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("run %s aborted at depth %d: %v", e.RunID, e.Depth, e.Err)
}

func (e *TurnError) Unwrap() error {
	return e.Err
}
