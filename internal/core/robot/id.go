package robot

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh random robot identifier.
func NewID() string {
	return uuid.NewString()
}

// Millis converts t to epoch milliseconds, the stored timestamp unit.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
