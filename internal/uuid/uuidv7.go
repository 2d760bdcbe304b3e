// Package uuid generates the time-ordered identifiers used to correlate a
// sync run across log lines and events.
package uuid

import (
	"time"

	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. Values sort by creation time, so run ids in
// logs line up with the order runs started. Falls back to a random v4 id if
// the v7 generator cannot read entropy.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.NewString()
	}
	return id.String()
}

// NewRunID returns a correlation id for one sync run.
func NewRunID() string {
	return New()
}

// Time extracts the creation time embedded in a UUIDv7 string.
func Time(s string) (time.Time, bool) {
	id, err := googleuuid.Parse(s)
	if err != nil || id.Version() != 7 {
		return time.Time{}, false
	}
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec), true
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
