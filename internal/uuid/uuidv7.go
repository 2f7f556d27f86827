// Package uuid generates time-ordered primary keys.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. UUIDv7 sorts by creation time, which keeps
// B-tree inserts for ledger rows append-mostly.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Random source failure; fall back to v4.
		return googleuuid.NewString()
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	return googleuuid.Validate(s) == nil
}
