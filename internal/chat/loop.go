package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Polling defaults. The cadence is deliberately slow relative to user
// input, which is why a failed fetch retries on the same interval instead
// of backing off.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultTimeout      = 30 * time.Second
)

// syncLoop owns the polling cadence for one binding at a time. A binding is
// a task id plus a generation; every scheduled tick and outstanding request
// carries the generation it was issued under, and its continuation is a
// no-op once the generation moves on. Ticks never overlap: the next tick is
// scheduled only after the in-flight request settles.
type syncLoop struct {
	clock        Clock
	transport    Transport
	interval     time.Duration
	timeout      time.Duration
	retryOnError bool
	log          *slog.Logger

	// onSettle receives every non-stale fetch outcome, tagged with the
	// binding generation it was issued under. Called without the loop lock
	// held so it may call back into PokeNow.
	onSettle func(gen uint64, taskID string, msgs []Message, err error)

	mu         sync.Mutex
	gen        uint64
	taskID     string
	bound      bool
	inflight   bool
	cancelTick func()
	cancelReq  context.CancelFunc
}

func newSyncLoop(clock Clock, transport Transport, interval, timeout time.Duration, retryOnError bool, log *slog.Logger, onSettle func(uint64, string, []Message, error)) *syncLoop {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &syncLoop{
		clock:        clock,
		transport:    transport,
		interval:     interval,
		timeout:      timeout,
		retryOnError: retryOnError,
		log:          log,
		onSettle:     onSettle,
	}
}

// Bind cancels any prior binding and starts polling taskID with an
// immediate fetch. The returned generation tags every settle delivered for
// this binding.
func (l *syncLoop) Bind(taskID string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.retireLocked()
	l.taskID = taskID
	l.bound = true
	l.fetchLocked(l.gen)
	return l.gen
}

// Unbind cancels the scheduled tick and the outstanding request. Results
// that arrive afterwards are discarded by the generation check.
func (l *syncLoop) Unbind() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.retireLocked()
	l.taskID = ""
	l.bound = false
}

// PokeNow fetches ahead of schedule when no request is outstanding and
// resets the tick cadence. Used after a successful send so the reply
// surfaces promptly.
func (l *syncLoop) PokeNow() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.bound || l.inflight {
		return
	}
	if l.cancelTick != nil {
		l.cancelTick()
		l.cancelTick = nil
	}
	l.fetchLocked(l.gen)
}

// retireLocked bumps the generation and cancels whatever the old one owned.
func (l *syncLoop) retireLocked() {
	l.gen++
	if l.cancelTick != nil {
		l.cancelTick()
		l.cancelTick = nil
	}
	if l.cancelReq != nil {
		l.cancelReq()
		l.cancelReq = nil
	}
	l.inflight = false
}

func (l *syncLoop) fetchLocked(gen uint64) {
	taskID := l.taskID
	l.inflight = true
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	l.cancelReq = cancel
	go func() {
		msgs, err := l.transport.ListMessages(ctx, taskID)
		cancel()
		l.settle(gen, taskID, msgs, err)
	}()
}

func (l *syncLoop) settle(gen uint64, taskID string, msgs []Message, err error) {
	l.mu.Lock()
	if gen != l.gen || !l.bound {
		// Stale: the binding changed while the request was in flight.
		l.mu.Unlock()
		return
	}
	l.inflight = false
	l.cancelReq = nil
	// Schedule before delivering the outcome so the cadence is already in
	// place when the callback runs; a poke from inside the callback cancels
	// this tick and fetches immediately.
	if err == nil || l.retryOnError {
		l.scheduleTickLocked(gen)
	}
	l.mu.Unlock()

	if err != nil {
		l.log.Warn("chat poll failed", "task", taskID, "error", err)
	}
	l.onSettle(gen, taskID, msgs, err)
}

func (l *syncLoop) scheduleTickLocked(gen uint64) {
	if l.cancelTick != nil {
		l.cancelTick()
	}
	l.cancelTick = l.clock.Schedule(l.interval, func() { l.tick(gen) })
}

func (l *syncLoop) tick(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen || !l.bound || l.inflight {
		return
	}
	l.cancelTick = nil
	l.fetchLocked(gen)
}
