package chat

import (
	"reflect"
	"testing"
	"time"
)

var t0 = time.Unix(1700000000, 0).UTC()

func ids(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestReplaceSortsBySequence(t *testing.T) {
	s := NewStore()
	// Listing order is server whim; sequences are authoritative.
	s.Replace([]Message{
		serverMsg("m2", RoleAssistant, "second", 2, t0.Add(2*time.Second)),
		serverMsg("m1", RoleUser, "first", 1, t0.Add(time.Second)),
		serverMsg("m3", RoleUser, "third", 3, t0.Add(3*time.Second)),
	})
	got := ids(s.Snapshot())
	want := []string{"m1", "m2", "m3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot order = %v, want %v", got, want)
	}
}

func TestReplaceIsIdempotent(t *testing.T) {
	list := []Message{
		serverMsg("m2", RoleAssistant, "b", 2, t0),
		serverMsg("m1", RoleUser, "a", 1, t0),
	}
	s := NewStore()
	s.Replace(list)
	first := s.Snapshot()
	s.Replace(list)
	second := s.Snapshot()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("replace not idempotent: %v then %v", ids(first), ids(second))
	}
}

func TestReplaceDropsAbsentServerIDs(t *testing.T) {
	s := NewStore()
	s.Replace([]Message{
		serverMsg("m1", RoleUser, "a", 1, t0),
		serverMsg("m2", RoleAssistant, "b", 2, t0),
	})
	s.Replace([]Message{
		serverMsg("m2", RoleAssistant, "b", 2, t0),
	})
	got := ids(s.Snapshot())
	if !reflect.DeepEqual(got, []string{"m2"}) {
		t.Fatalf("snapshot = %v, want [m2]", got)
	}
}

func TestReplaceFallsBackToCreatedAt(t *testing.T) {
	s := NewStore()
	s.Replace([]Message{
		{ID: "mB", Role: RoleAssistant, Content: "later", CreatedAt: t0.Add(time.Minute)},
		{ID: "mA", Role: RoleUser, Content: "earlier", CreatedAt: t0},
		// Equal timestamps fall back to the id tiebreak.
		{ID: "mD", Role: RoleUser, Content: "tie2", CreatedAt: t0.Add(time.Hour)},
		{ID: "mC", Role: RoleUser, Content: "tie1", CreatedAt: t0.Add(time.Hour)},
	})
	got := ids(s.Snapshot())
	want := []string{"mA", "mB", "mC", "mD"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot order = %v, want %v", got, want)
	}
}

func TestTempsSortAfterServerMessages(t *testing.T) {
	s := NewStore()
	s.AppendTemp(Message{ID: nextTempID(), Role: RoleUser, Content: "pending", CreatedAt: t0})
	// Server message created after the temp still sorts before it.
	s.Replace([]Message{
		serverMsg("m1", RoleAssistant, "reply", 1, t0.Add(time.Hour)),
	})
	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot has %d messages, want 2", len(snap))
	}
	if snap[0].ID != "m1" || !snap[1].IsTemp() {
		t.Fatalf("temp not at tail: %v", ids(snap))
	}
}

func TestTempOrderFollowsMintOrder(t *testing.T) {
	s := NewStore()
	first := nextTempID()
	second := nextTempID()
	// Insert out of order; the view must follow the counter.
	s.AppendTemp(Message{ID: second, Role: RoleUser, Content: "two", CreatedAt: t0})
	s.AppendTemp(Message{ID: first, Role: RoleUser, Content: "one", CreatedAt: t0})
	got := ids(s.Snapshot())
	if !reflect.DeepEqual(got, []string{first, second}) {
		t.Fatalf("temp order = %v, want [%s %s]", got, first, second)
	}
}

func TestSupersessionReplacesTemp(t *testing.T) {
	s := NewStore()
	temp := Message{ID: nextTempID(), Role: RoleUser, Content: "hi", CreatedAt: t0}
	s.AppendTemp(temp)
	s.Replace([]Message{
		serverMsg("m1", RoleUser, "hi", 1, t0.Add(time.Second)),
	})
	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].ID != "m1" {
		t.Fatalf("snapshot = %v, want [m1]", ids(snap))
	}
}

func TestSupersessionRequiresLaterServerTimestamp(t *testing.T) {
	s := NewStore()
	temp := Message{ID: nextTempID(), Role: RoleUser, Content: "hi", CreatedAt: t0}
	s.AppendTemp(temp)
	// An older server message with the same content is somebody else's
	// write, not ours.
	s.Replace([]Message{
		serverMsg("m1", RoleUser, "hi", 1, t0.Add(-time.Minute)),
	})
	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot = %v, want server copy and temp", ids(snap))
	}
	if !snap[1].IsTemp() {
		t.Fatalf("temp was superseded by an older server message")
	}
}

func TestSupersessionIgnoresOtherRolesAndContent(t *testing.T) {
	s := NewStore()
	s.AppendTemp(Message{ID: nextTempID(), Role: RoleUser, Content: "hi", CreatedAt: t0})
	s.Replace([]Message{
		serverMsg("m1", RoleAssistant, "hi", 1, t0.Add(time.Second)),
		serverMsg("m2", RoleUser, "different", 2, t0.Add(time.Second)),
	})
	if got := s.Len(); got != 3 {
		t.Fatalf("store has %d messages, want 3 (temp retained)", got)
	}
}

func TestOneServerCopySupersedesOneTemp(t *testing.T) {
	s := NewStore()
	// The user sent the same text twice; one server copy must consume
	// exactly one temp.
	s.AppendTemp(Message{ID: nextTempID(), Role: RoleUser, Content: "again", CreatedAt: t0})
	s.AppendTemp(Message{ID: nextTempID(), Role: RoleUser, Content: "again", CreatedAt: t0.Add(time.Second)})
	s.Replace([]Message{
		serverMsg("m1", RoleUser, "again", 1, t0.Add(2*time.Second)),
	})
	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot = %v, want server copy plus one remaining temp", ids(snap))
	}
	if snap[0].ID != "m1" || !snap[1].IsTemp() {
		t.Fatalf("unexpected snapshot %v", ids(snap))
	}
}

func TestMarkFailedKeepsContent(t *testing.T) {
	s := NewStore()
	temp := Message{ID: nextTempID(), Role: RoleUser, Content: "hello", CreatedAt: t0}
	s.AppendTemp(temp)
	if !s.MarkFailed(temp.ID) {
		t.Fatal("MarkFailed returned false for present id")
	}
	snap := s.Snapshot()
	if len(snap) != 1 || !snap[0].Failed || snap[0].Content != "hello" {
		t.Fatalf("failed temp not retained: %+v", snap)
	}
	if s.MarkFailed("temp-999999999") {
		t.Fatal("MarkFailed returned true for absent id")
	}
}

func TestReplaceClearsFailedFlagOnServerCopies(t *testing.T) {
	s := NewStore()
	s.Replace([]Message{{ID: "m1", Role: RoleUser, Content: "x", CreatedAt: t0, Failed: true}})
	if snap := s.Snapshot(); snap[0].Failed {
		t.Fatal("server message carried a failed flag through Replace")
	}
}
