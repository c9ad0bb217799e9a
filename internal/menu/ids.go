package menu

import "github.com/google/uuid"

// IDGenerator returns a new identifier on every call.
type IDGenerator func() string

// NewUUID generates random (v4) ids, safe for entities created within the
// same clock tick.
func NewUUID() string {
	return uuid.New().String()
}
