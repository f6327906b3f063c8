package chat

import (
	"sort"
	"sync"
)

// Store is the in-memory ordered log of messages for one task. It maps
// message id to Message and keeps a derived ordered view. A Store is owned
// by exactly one Controller; the mutex guards reads from views taken while
// the engine is mid-operation.
type Store struct {
	mu   sync.RWMutex
	byID map[string]Message
	view []Message
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]Message)}
}

// Replace atomically reconciles the store with a server-authoritative
// listing. Server messages are upserted by id, non-temp entries absent from
// the listing are dropped, and each temp is superseded by at most one
// matching server message (same user role, equal content, server timestamp
// not before the temp's). Replace is idempotent.
func (s *Store) Replace(list []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	serverIDs := make(map[string]struct{}, len(list))
	for _, m := range list {
		if m.ID == "" || m.IsTemp() {
			continue
		}
		serverIDs[m.ID] = struct{}{}
	}

	// The server has deleted or renumbered anything it no longer lists.
	for id, m := range s.byID {
		if m.IsTemp() {
			continue
		}
		if _, ok := serverIDs[id]; !ok {
			delete(s.byID, id)
		}
	}

	incoming := make([]Message, 0, len(list))
	for _, m := range list {
		if m.ID == "" || m.IsTemp() {
			continue
		}
		m.Failed = false
		s.byID[m.ID] = m
		incoming = append(incoming, m)
	}
	sort.SliceStable(incoming, func(i, j int) bool { return less(incoming[i], incoming[j]) })

	// Supersession: walk temps in mint order so that when the user sent the
	// same content twice, each server copy consumes exactly one temp.
	temps := s.temps()
	consumed := make(map[string]struct{}, len(temps))
	for _, t := range temps {
		if t.Role != RoleUser {
			continue
		}
		for _, sv := range incoming {
			if _, used := consumed[sv.ID]; used {
				continue
			}
			if sv.Role == RoleUser && sv.Content == t.Content && !sv.CreatedAt.Before(t.CreatedAt) {
				delete(s.byID, t.ID)
				consumed[sv.ID] = struct{}{}
				break
			}
		}
	}

	s.recompute()
}

// AppendTemp inserts an optimistic message at the tail of the view.
func (s *Store) AppendTemp(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[m.ID] = m
	s.recompute()
}

// MarkFailed tags a temp message as failed, keeping its content so the view
// can offer a retry. Returns false if the id is no longer present.
func (s *Store) MarkFailed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return false
	}
	m.Failed = true
	s.byID[id] = m
	s.recompute()
	return true
}

// Snapshot returns a stable copy of the ordered view.
func (s *Store) Snapshot() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.view))
	copy(out, s.view)
	return out
}

// Len returns the number of messages currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// temps returns the temp entries in mint order. Caller holds the lock.
func (s *Store) temps() []Message {
	var out []Message
	for _, m := range s.byID {
		if m.IsTemp() {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].tempSeq() < out[j].tempSeq() })
	return out
}

// recompute rebuilds the ordered view from the id map. Caller holds the
// lock. The view is a pure function of the map, which is what makes
// Replace idempotent.
func (s *Store) recompute() {
	view := make([]Message, 0, len(s.byID))
	for _, m := range s.byID {
		view = append(view, m)
	}
	sort.SliceStable(view, func(i, j int) bool { return less(view[i], view[j]) })
	s.view = view
}
