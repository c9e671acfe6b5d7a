package domain

import "time"

// Clock returns the current time. Services take one so year-to-date and
// due-date logic can be pinned in tests.
type Clock func() time.Time

// SystemClock reads the wall clock
func SystemClock() time.Time {
	return time.Now()
}
