package uuidx

import "github.com/google/uuid"

// New returns a time ordered (version 7) UUID. Runs, turns and messages all use these ids so they
// sort by creation time.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
