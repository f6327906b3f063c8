package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Status describes what the engine is doing, as exposed to views.
type Status string

const (
	// StatusIdle means no task is selected.
	StatusIdle Status = "idle"
	// StatusLoading means the first fetch for the selection is outstanding.
	StatusLoading Status = "loading"
	// StatusLive means at least one fetch for the selection succeeded.
	StatusLive Status = "live"
	// StatusSending means at least one optimistic send is unacknowledged.
	// It masks live/error while a send is in flight; polling continues
	// underneath.
	StatusSending Status = "sending"
	// StatusError means the last fetch failed. The last-known snapshot is
	// retained and polling keeps retrying on the normal cadence.
	StatusError Status = "error"
)

// Options configures a Controller. Zero values pick the defaults.
type Options struct {
	// Clock defaults to SystemClock.
	Clock Clock
	// PollInterval between history fetches, default DefaultPollInterval.
	PollInterval time.Duration
	// Timeout per transport call, default DefaultTimeout.
	Timeout time.Duration
	// DisableRetry stops polling after a failed fetch. Default is to keep
	// polling so the view recovers from transient failures.
	DisableRetry bool
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Controller is the public surface of the task chat engine. One Controller
// binds to at most one task at a time and owns that task's Store. All
// operations are serialized by one mutex; the only suspension points are
// transport calls and clock ticks. Controllers are scoped objects — create
// one per chat surface, never a process-wide singleton.
type Controller struct {
	clock     Clock
	transport Transport
	timeout   time.Duration
	log       *slog.Logger
	loop      *syncLoop

	mu       sync.Mutex
	store    *Store
	taskID   string
	selected bool
	boundGen uint64
	phase    Status // idle | loading | live | error; sending derives from pending
	pending  int    // unacknowledged sends
	lastErr  error
	subs     map[int]func()
	nextSub  int
	disposed bool
}

// NewController creates an engine around the given transport.
func NewController(transport Transport, opts Options) *Controller {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Controller{
		clock:     clock,
		transport: transport,
		timeout:   timeout,
		log:       log,
		phase:     StatusIdle,
		subs:      make(map[int]func()),
	}
	c.loop = newSyncLoop(clock, transport, opts.PollInterval, timeout, !opts.DisableRetry, log, c.onSettle)
	return c
}

// Select binds the engine to a task. Selecting the current task is a no-op;
// anything else discards the store, rebinds, and notifies subscribers once.
func (c *Controller) Select(taskID string) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	current := ""
	if c.selected {
		current = c.taskID
	}
	if current == taskID {
		c.mu.Unlock()
		return nil
	}
	c.loop.Unbind()
	c.pending = 0
	c.lastErr = nil
	if taskID == "" {
		c.store = nil
		c.taskID = ""
		c.selected = false
		c.phase = StatusIdle
	} else {
		c.store = NewStore()
		c.taskID = taskID
		c.selected = true
		c.phase = StatusLoading
		c.boundGen = c.loop.Bind(taskID)
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// Clear unbinds the engine, leaving it idle with no store.
func (c *Controller) Clear() error { return c.Select("") }

// Send appends an optimistic user message, posts it, and pokes the sync
// loop on success so the server copy (and any reply) surfaces promptly. On
// transport failure the temp message is kept, flagged failed, and an
// ErrSendFailed-wrapped error is returned; a retry mints a new temp id. A
// result landing after the selection changed is dropped silently.
func (c *Controller) Send(text string) error {
	trimmed := strings.TrimSpace(text)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if !c.selected {
		c.mu.Unlock()
		return ErrNoTask
	}
	if trimmed == "" {
		c.mu.Unlock()
		return ErrEmpty
	}
	msg := Message{
		ID:        nextTempID(),
		TaskID:    c.taskID,
		Role:      RoleUser,
		Content:   trimmed,
		CreatedAt: c.clock.Now(),
	}
	store := c.store
	taskID := c.taskID
	store.AppendTemp(msg)
	c.pending++
	c.mu.Unlock()
	c.notify()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	postErr := c.transport.PostMessage(ctx, taskID, trimmed)

	c.mu.Lock()
	if c.disposed || c.store != store {
		c.mu.Unlock()
		return nil
	}
	c.pending--
	c.mu.Unlock()

	if postErr != nil {
		store.MarkFailed(msg.ID)
		c.notify()
		return fmt.Errorf("%w: %w", ErrSendFailed, postErr)
	}
	c.loop.PokeNow()
	c.notify()
	return nil
}

// Subscribe registers a listener invoked at most once per logical state
// change (status transition, store content change, selection change).
// Returns the unsubscribe func.
func (c *Controller) Subscribe(fn func()) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return nil, ErrDisposed
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}, nil
}

// Dispose unbinds the loop, abandons the store, and clears subscribers.
// The controller becomes permanently inert; later Select/Send/Subscribe
// calls return ErrDisposed. Dispose itself is idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.loop.Unbind()
	c.store = nil
	c.taskID = ""
	c.selected = false
	c.pending = 0
	c.phase = StatusIdle
	c.subs = nil
}

// Status returns the current engine status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending > 0 {
		return StatusSending
	}
	return c.phase
}

// TaskID returns the selected task id, empty when cleared.
func (c *Controller) TaskID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.selected {
		return ""
	}
	return c.taskID
}

// Snapshot returns the ordered conversation, nil when no task is selected.
func (c *Controller) Snapshot() []Message {
	c.mu.Lock()
	store := c.store
	c.mu.Unlock()
	if store == nil {
		return nil
	}
	return store.Snapshot()
}

// LastError returns the failure behind StatusError, nil otherwise.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// onSettle is the sync loop's callback for every settled, non-stale fetch.
func (c *Controller) onSettle(gen uint64, taskID string, msgs []Message, err error) {
	c.mu.Lock()
	if c.disposed || !c.selected || gen != c.boundGen || c.store == nil {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.phase = StatusError
		c.lastErr = err
	} else {
		c.store.Replace(msgs)
		c.phase = StatusLive
		c.lastErr = nil
	}
	c.mu.Unlock()
	c.notify()
}

// notify delivers one coalesced notification per subscriber, in
// registration order, outside the engine lock so listeners can call back
// into the controller.
func (c *Controller) notify() {
	c.mu.Lock()
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
