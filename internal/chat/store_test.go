package chat

import (
	"testing"
	"time"

	"github.com/greenroom-app/greenroom/internal/core"
	"github.com/greenroom-app/greenroom/internal/types"
)

var baseTime = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func confirmedMsg(id, sender, body string, at time.Time) types.Message {
	return types.Message{
		ID:             id,
		ConversationID: "conv-1",
		SenderID:       sender,
		Body:           body,
		Kind:           types.KindText,
		CreatedAt:      at,
	}
}

func pendingMsg(sender, body string, at time.Time) types.Message {
	msg := confirmedMsg(core.NewTransientID(), sender, body, at)
	return msg
}

func ids(messages []types.Message) []string {
	out := make([]string, len(messages))
	for i, msg := range messages {
		out[i] = msg.ID
	}
	return out
}

func assertIDs(t *testing.T, store *Store, expected ...string) {
	t.Helper()
	got := ids(store.Messages())
	if len(got) != len(expected) {
		t.Fatalf("expected %d messages %v, got %v", len(expected), expected, got)
	}
	for i, id := range expected {
		if got[i] != id {
			t.Fatalf("position %d: expected %s, got %v", i, id, got)
		}
	}
}

func TestUpsertOneIdempotent(t *testing.T) {
	store := NewStore()
	msg := confirmedMsg("msg-1", "u1", "hello", baseTime)

	store.UpsertOne(msg)
	store.UpsertOne(msg)

	assertIDs(t, store, "msg-1")
}

func TestUpsertOneUpdatesInPlace(t *testing.T) {
	store := NewStore()
	store.ReplaceAll([]types.Message{
		confirmedMsg("msg-1", "u1", "first", baseTime),
		confirmedMsg("msg-2", "u2", "second", baseTime.Add(time.Minute)),
	})

	edited := confirmedMsg("msg-1", "u1", "first (fixed)", baseTime)
	edited.Edited = true
	store.UpsertOne(edited)

	assertIDs(t, store, "msg-1", "msg-2")
	got, _ := store.Get("msg-1")
	if !got.Edited || got.Body != "first (fixed)" {
		t.Fatalf("expected in-place update, got %+v", got)
	}
}

func TestUpsertOneOrdersOutOfOrderDelivery(t *testing.T) {
	store := NewStore()
	store.UpsertOne(confirmedMsg("msg-2", "u1", "later", baseTime.Add(time.Minute)))
	store.UpsertOne(confirmedMsg("msg-1", "u1", "earlier", baseTime))

	assertIDs(t, store, "msg-1", "msg-2")
}

func TestPendingSortsAtTail(t *testing.T) {
	store := NewStore()
	// Pending timestamp precision does not matter: pending means "now".
	pending := pendingMsg("me", "draft", baseTime.Add(-time.Hour))
	store.UpsertOne(pending)
	store.UpsertOne(confirmedMsg("msg-1", "u1", "hello", baseTime))

	assertIDs(t, store, "msg-1", pending.ID)
}

func TestReconcilePendingSuccess(t *testing.T) {
	store := NewStore()
	store.ReplaceAll([]types.Message{
		confirmedMsg("msg-1", "u1", "one", baseTime),
		confirmedMsg("msg-2", "u2", "two", baseTime.Add(time.Minute)),
	})

	pending := pendingMsg("me", "hello", baseTime.Add(2*time.Minute))
	store.UpsertOne(pending)
	if store.Len() != 3 || store.PendingCount() != 1 {
		t.Fatalf("expected 3 messages with 1 pending, got %d/%d", store.Len(), store.PendingCount())
	}

	confirmed := confirmedMsg("msg-9", "me", "hello", baseTime.Add(2*time.Minute))
	if !store.ReconcilePending(pending.ID, confirmed) {
		t.Fatal("expected pending entry to be found")
	}

	assertIDs(t, store, "msg-1", "msg-2", "msg-9")
	if store.PendingCount() != 0 {
		t.Fatal("pending entry survived reconciliation")
	}
}

func TestRemovePendingRollsBack(t *testing.T) {
	store := NewStore()
	store.ReplaceAll([]types.Message{
		confirmedMsg("msg-1", "u1", "one", baseTime),
		confirmedMsg("msg-2", "u2", "two", baseTime.Add(time.Minute)),
	})

	pending := pendingMsg("me", "hello", baseTime.Add(2*time.Minute))
	store.UpsertOne(pending)
	if !store.RemovePending(pending.ID) {
		t.Fatal("expected pending entry to be removed")
	}

	assertIDs(t, store, "msg-1", "msg-2")

	// Confirmed messages are not removable through the rollback path.
	if store.RemovePending("msg-1") {
		t.Fatal("RemovePending must refuse confirmed ids")
	}
	assertIDs(t, store, "msg-1", "msg-2")
}

func TestReconcilePendingAfterRealtimeEchoWon(t *testing.T) {
	store := NewStore()
	pending := pendingMsg("me", "hello", baseTime)
	store.UpsertOne(pending)

	// Realtime delivered the confirmed record before the send response.
	confirmed := confirmedMsg("msg-9", "me", "hello", baseTime)
	if tid, ok := store.findPendingEcho(confirmed); !ok || tid != pending.ID {
		t.Fatalf("expected echo match for %s, got %q/%v", pending.ID, tid, ok)
	}
	store.ReconcilePending(pending.ID, confirmed)

	// The late send response reconciles against an already-confirmed id.
	store.ReconcilePending(pending.ID, confirmed)
	assertIDs(t, store, "msg-9")
}

func TestFindPendingEchoWindow(t *testing.T) {
	store := NewStore()
	pending := pendingMsg("me", "hello", baseTime)
	store.UpsertOne(pending)

	tests := []struct {
		name  string
		msg   types.Message
		match bool
	}{
		{"exact", confirmedMsg("msg-9", "me", "hello", baseTime), true},
		{"within window", confirmedMsg("msg-9", "me", "hello", baseTime.Add(9*time.Second)), true},
		{"outside window", confirmedMsg("msg-9", "me", "hello", baseTime.Add(11*time.Second)), false},
		{"different body", confirmedMsg("msg-9", "me", "hey", baseTime), false},
		{"different sender", confirmedMsg("msg-9", "u2", "hello", baseTime), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := store.findPendingEcho(tt.msg); ok != tt.match {
				t.Fatalf("expected match=%v", tt.match)
			}
		})
	}
}

func TestMergeSnapshotDedupes(t *testing.T) {
	store := NewStore()
	// Realtime delivered msg-10 first; 3 seconds later the poll window
	// contains it too.
	store.UpsertOne(confirmedMsg("msg-10", "u1", "hello", baseTime))

	added := store.MergeSnapshot([]types.Message{
		confirmedMsg("msg-10", "u1", "hello", baseTime),
		confirmedMsg("msg-11", "u2", "missed this one", baseTime.Add(time.Second)),
	})

	if added != 1 {
		t.Fatalf("expected 1 added, got %d", added)
	}
	assertIDs(t, store, "msg-10", "msg-11")
}

func TestMergeSnapshotPreservesPendingAndHistory(t *testing.T) {
	store := NewStore()
	// msg-old is outside the bounded poll window; it must survive.
	store.ReplaceAll([]types.Message{
		confirmedMsg("msg-old", "u1", "ancient", baseTime.Add(-48*time.Hour)),
		confirmedMsg("msg-1", "u1", "recent", baseTime),
	})
	pending := pendingMsg("me", "in flight", baseTime.Add(time.Minute))
	store.UpsertOne(pending)

	store.MergeSnapshot([]types.Message{
		confirmedMsg("msg-1", "u1", "recent", baseTime),
		confirmedMsg("msg-2", "u2", "new", baseTime.Add(30*time.Second)),
	})

	assertIDs(t, store, "msg-old", "msg-1", "msg-2", pending.ID)
}

func TestMergeSnapshotReconcilesEcho(t *testing.T) {
	store := NewStore()
	pending := pendingMsg("me", "hello", baseTime)
	store.UpsertOne(pending)

	// The poll window can carry the confirmation before the send
	// response or realtime event arrives.
	store.MergeSnapshot([]types.Message{confirmedMsg("msg-9", "me", "hello", baseTime.Add(time.Second))})

	assertIDs(t, store, "msg-9")
	if store.PendingCount() != 0 {
		t.Fatal("pending entry should have been reconciled by the snapshot")
	}
}

func TestMergeSnapshotRefreshesFlags(t *testing.T) {
	store := NewStore()
	store.ReplaceAll([]types.Message{confirmedMsg("msg-1", "u1", "hello", baseTime)})

	deleted := confirmedMsg("msg-1", "u1", "hello", baseTime)
	deleted.Deleted = true
	store.MergeSnapshot([]types.Message{deleted})

	got, _ := store.Get("msg-1")
	if !got.Deleted {
		t.Fatal("expected deletion flag to propagate through the poll path")
	}
}

func TestDayGroups(t *testing.T) {
	messages := []types.Message{
		confirmedMsg("msg-1", "u1", "fri", baseTime),
		confirmedMsg("msg-2", "u1", "fri too", baseTime.Add(time.Hour)),
		confirmedMsg("msg-3", "u1", "sat", baseTime.Add(26*time.Hour)),
	}

	groups := DayGroups(messages)
	if len(groups) != 2 {
		t.Fatalf("expected 2 day groups, got %d", len(groups))
	}
	if len(groups[0].Messages) != 2 || len(groups[1].Messages) != 1 {
		t.Fatalf("unexpected group sizes: %d/%d", len(groups[0].Messages), len(groups[1].Messages))
	}
	if !groups[1].Day.After(groups[0].Day) {
		t.Fatal("groups out of order")
	}
}

func TestFindByIDPrefix(t *testing.T) {
	store := NewStore()
	store.ReplaceAll([]types.Message{
		confirmedMsg("msg-abc123", "u1", "one", baseTime),
		confirmedMsg("msg-abd456", "u2", "two", baseTime.Add(time.Minute)),
	})
	store.UpsertOne(pendingMsg("me", "draft", baseTime.Add(2*time.Minute)))

	if got := store.FindByIDPrefix("ab", 5); len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	got := store.FindByIDPrefix("abc", 5)
	if len(got) != 1 || got[0].ID != "msg-abc123" {
		t.Fatalf("unexpected matches: %v", ids(got))
	}
	if got := store.FindByIDPrefix("zz", 5); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", ids(got))
	}
}
