// Package chat implements the task chat engine: an in-memory message store
// reconciled against server history by a polling sync loop, with optimistic
// sends, driven through a single Controller per engine instance.
package chat

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Role identifies the author class of a message.
type Role string

// Message roles known to the engine.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// tempPrefix marks client-local ids for optimistic sends.
const tempPrefix = "temp-"

// tempCounter is process-wide so two temp ids minted by the same process
// are never equal, engine instances included.
var tempCounter atomic.Uint64

func nextTempID() string {
	return fmt.Sprintf("%s%d", tempPrefix, tempCounter.Add(1))
}

// Message is one entry in a task conversation. Server messages carry a
// durable id and usually a sequence; optimistic user messages carry a
// temp- id until the server copy supersedes them.
type Message struct {
	ID        string
	TaskID    string
	Role      Role
	Content   string
	CreatedAt time.Time
	// Sequence is the server-assigned order within the task, nil when the
	// server did not provide one.
	Sequence *int64
	// Failed marks an optimistic message whose post was rejected; the view
	// can offer a retry. Never set on server messages.
	Failed bool
}

// IsTemp reports whether the message carries a client-local id.
func (m Message) IsTemp() bool {
	return strings.HasPrefix(m.ID, tempPrefix)
}

func (m Message) tempSeq() uint64 {
	n, err := strconv.ParseUint(strings.TrimPrefix(m.ID, tempPrefix), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// less implements the canonical conversation order: all server messages
// before all temps, server messages by sequence when both have one and by
// (createdAt, id) otherwise, temps by mint order.
func less(a, b Message) bool {
	at, bt := a.IsTemp(), b.IsTemp()
	if at != bt {
		return bt
	}
	if at {
		return a.tempSeq() < b.tempSeq()
	}
	if a.Sequence != nil && b.Sequence != nil {
		if *a.Sequence != *b.Sequence {
			return *a.Sequence < *b.Sequence
		}
		return a.ID < b.ID
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
