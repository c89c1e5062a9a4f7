package engine

import "time"

// Clock supplies wall-clock time for CreatedAt, EnteredAt and expiry cutoffs.
//
// Implemented by SystemClock (production) and testutil.ManualClock (tests).
// Queue order does not depend on clock resolution alone: ties on CreatedAt
// are broken by session ID.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time in UTC.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
