package chat

// Shared test doubles: a manual clock the tests advance explicitly and a
// scripted transport that hands each call to the test over a channel.

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0).UTC()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Schedule(d time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		t.stopped = true
	}
}

// Advance moves the clock forward and fires every due timer once, in
// deadline order, outside the clock lock.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	var rest []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.at.After(c.now) {
			due = append(due, t)
		} else if !t.stopped {
			rest = append(rest, t)
		}
	}
	c.timers = rest
	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

type listReply struct {
	msgs []Message
	err  error
}

type listCall struct {
	taskID string
	reply  chan listReply
}

func (c *listCall) respond(msgs []Message, err error) {
	c.reply <- listReply{msgs: msgs, err: err}
}

type postCall struct {
	taskID  string
	content string
	reply   chan error
}

func (c *postCall) respond(err error) {
	c.reply <- err
}

type fakeTransport struct {
	lists chan *listCall
	posts chan *postCall
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		lists: make(chan *listCall, 16),
		posts: make(chan *postCall, 16),
	}
}

func (f *fakeTransport) ListMessages(ctx context.Context, taskID string) ([]Message, error) {
	call := &listCall{taskID: taskID, reply: make(chan listReply, 1)}
	f.lists <- call
	select {
	case r := <-call.reply:
		return r.msgs, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) PostMessage(ctx context.Context, taskID, content string) error {
	call := &postCall{taskID: taskID, content: content, reply: make(chan error, 1)}
	f.posts <- call
	select {
	case err := <-call.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func awaitList(t *testing.T, f *fakeTransport) *listCall {
	t.Helper()
	select {
	case c := <-f.lists:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for list call")
		return nil
	}
}

func awaitPost(t *testing.T, f *fakeTransport) *postCall {
	t.Helper()
	select {
	case c := <-f.posts:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for post call")
		return nil
	}
}

func expectNoList(t *testing.T, f *fakeTransport) {
	t.Helper()
	select {
	case c := <-f.lists:
		t.Fatalf("unexpected list call for task %q", c.taskID)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitStatus(t *testing.T, ctrl *Controller, want Status) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ctrl.Status() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("status = %q, want %q", ctrl.Status(), want)
}

func waitSnapshotLen(t *testing.T, ctrl *Controller, want int) []Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap := ctrl.Snapshot(); len(snap) == want {
			return snap
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("snapshot has %d messages, want %d", len(ctrl.Snapshot()), want)
	return nil
}

func seq(n int64) *int64 { return &n }

func serverMsg(id string, role Role, content string, sequence int64, at time.Time) Message {
	return Message{ID: id, Role: role, Content: content, Sequence: seq(sequence), CreatedAt: at}
}
