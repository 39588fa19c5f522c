// Package timing provides an injectable clock so timer-driven behavior
// can run against virtual time in tests.
package timing

import "time"

// Clock schedules delayed work. The real implementation wraps the time
// package; tests use [Manual] to advance time explicitly.
type Clock interface {
	Now() time.Time

	// AfterFunc runs f on its own goroutine after d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a single pending AfterFunc call.
type Timer interface {
	// Stop cancels the pending call. It reports whether the call was
	// still pending; false means the function already ran or was
	// stopped before.
	Stop() bool
}

// Real is a Clock backed by the time package.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

type realTimer struct {
	t *time.Timer
}

func (t realTimer) Stop() bool { return t.t.Stop() }
