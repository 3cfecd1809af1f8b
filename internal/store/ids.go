package store

import "github.com/google/uuid"

// IDGenerator assigns ids to new nodes.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 node ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids sort by
// creation time. This is helpful when reading the database directly.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Format: "0190a6e2-7c3b-7d4e-9f21-3b5c8e6a1d42" (36 characters)
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
