// Package ids centralizes identifier generation so entity ids sort by
// creation time (ksuid) while request/device ids stay plain uuids.
package ids

import (
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

func New() string {
	return ksuid.New().String()
}

func NewRequestID() string {
	return uuid.NewString()
}
