package chat

import (
	"testing"
	"time"

	"github.com/greenroom-app/greenroom/internal/types"
)

func participant(id, name string, lastRead *time.Time) types.Participant {
	return types.Participant{UserID: id, DisplayName: name, LastReadAt: lastRead}
}

func TestReadWatermarkGroup(t *testing.T) {
	t1 := baseTime
	t2 := baseTime.Add(time.Minute)
	t3 := baseTime.Add(2 * time.Minute)

	participants := []types.Participant{
		participant("me", "Me", &t3),
		participant("u1", "Ana", &t1),
		participant("u2", "Ben", &t3),
		participant("u3", "Cal", &t2),
	}

	watermark, ok := ReadWatermark(participants, "me")
	if !ok {
		t.Fatal("expected a watermark")
	}
	if !watermark.Equal(t1) {
		t.Fatalf("expected minimum %v, got %v", t1, watermark)
	}

	// A message at the watermark is read; one after it is not.
	if !IsRead(confirmedMsg("msg-1", "me", "x", t1), watermark) {
		t.Fatal("message at watermark must be read")
	}
	if IsRead(confirmedMsg("msg-2", "me", "y", t2), watermark) {
		t.Fatal("message after watermark must not be read")
	}
	if IsRead(confirmedMsg("msg-3", "me", "z", t1.Add(time.Nanosecond)), watermark) {
		t.Fatal("watermark boundary must be strict")
	}
}

func TestReadWatermarkNoReaders(t *testing.T) {
	now := baseTime
	participants := []types.Participant{
		participant("me", "Me", &now),
		participant("u1", "Ana", nil),
	}

	if _, ok := ReadWatermark(participants, "me"); ok {
		t.Fatal("no other participant has read markers; nothing is read")
	}
}

func TestReadWatermarkDirectConversation(t *testing.T) {
	t1 := baseTime
	participants := []types.Participant{
		participant("me", "Me", nil),
		participant("u1", "Ana", &t1),
	}

	watermark, ok := ReadWatermark(participants, "me")
	if !ok || !watermark.Equal(t1) {
		t.Fatalf("expected counterpart marker %v, got %v/%v", t1, watermark, ok)
	}
}
