package queue

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// IDGenerator assigns session IDs.
// IDs must sort byte-wise in assignment order so that they can break
// CreatedAt ties in queue order.
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session IDs.
//
// google/uuid keeps V7 values monotonic within a process, and the hex
// encoding preserves that order under byte-wise comparison.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NormalizeToken trims surrounding whitespace and applies Unicode NFC so
// that visually identical tokens from different clients compare equal.
func NormalizeToken(token string) string {
	return norm.NFC.String(strings.TrimSpace(token))
}
