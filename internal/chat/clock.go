package chat

import "time"

// Clock is the engine's sole source of time. A scheduled callback fires at
// most once; cancelling an already-fired handle is a no-op. Tests inject a
// manual implementation to run the engine deterministically.
type Clock interface {
	Now() time.Time
	// Schedule runs fn after d and returns a cancel func.
	Schedule(d time.Duration, fn func()) (cancel func())
}

// SystemClock returns the wall-clock Clock backed by time.AfterFunc.
func SystemClock() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
