package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// Callers read it once per computation pass and hand the value down, so a pass
// that straddles midnight still sees a single "today".
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
