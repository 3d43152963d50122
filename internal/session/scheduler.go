package session

import "time"

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer.
	Stop() bool
}

// Scheduler supplies the clock and delayed callbacks used for countdowns
// and pacing delays.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler uses the system clock.
type RealScheduler struct{}

func (RealScheduler) Now() time.Time {
	return time.Now()
}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
