package chatui

import (
	"strings"
	"testing"

	"github.com/greenroom-app/greenroom/internal/types"
)

type stubFeed struct {
	messages []types.Message
}

func (f *stubFeed) FindByIDPrefix(prefix string, limit int) []types.Message {
	var out []types.Message
	for _, msg := range f.messages {
		if strings.HasPrefix(msg.ID, prefix) {
			out = append(out, msg)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func TestResolveReplyReference(t *testing.T) {
	feed := &stubFeed{messages: []types.Message{
		{ID: "msg-9a1b", SenderName: "sam", Body: "show tonight?"},
		{ID: "msg-9a2c", SenderName: "dana", Body: "load-in at 6"},
		{ID: "msg-77fe", SenderName: "ray", Body: "setlist draft"},
	}}

	t.Run("no reference", func(t *testing.T) {
		res := ResolveReplyReference(feed, "sounds good")
		if res.Kind != ReplyNone {
			t.Fatalf("kind = %q, want %q", res.Kind, ReplyNone)
		}
		if res.Body != "sounds good" {
			t.Fatalf("body = %q", res.Body)
		}
	})

	t.Run("unique prefix resolves", func(t *testing.T) {
		res := ResolveReplyReference(feed, "#77 bring the spare amp")
		if res.Kind != ReplyResolved {
			t.Fatalf("kind = %q, want %q", res.Kind, ReplyResolved)
		}
		if res.ReplyTo != "msg-77fe" {
			t.Fatalf("replyTo = %q", res.ReplyTo)
		}
		if res.Body != "bring the spare amp" {
			t.Fatalf("body = %q", res.Body)
		}
		if res.Match == nil || res.Match.SenderName != "ray" {
			t.Fatalf("match = %+v", res.Match)
		}
	})

	t.Run("full id with msg- prefix resolves", func(t *testing.T) {
		res := ResolveReplyReference(feed, "#msg-77fe yes")
		if res.Kind != ReplyResolved || res.ReplyTo != "msg-77fe" {
			t.Fatalf("res = %+v", res)
		}
	})

	t.Run("ambiguous prefix reports matches", func(t *testing.T) {
		res := ResolveReplyReference(feed, "#9a which one")
		if res.Kind != ReplyAmbiguous {
			t.Fatalf("kind = %q, want %q", res.Kind, ReplyAmbiguous)
		}
		if len(res.Matches) != 2 {
			t.Fatalf("matches = %d, want 2", len(res.Matches))
		}
		if res.Prefix != "9a" {
			t.Fatalf("prefix = %q", res.Prefix)
		}
	})

	t.Run("unknown prefix falls back to plain text", func(t *testing.T) {
		res := ResolveReplyReference(feed, "#ff00 hello")
		if res.Kind != ReplyNone {
			t.Fatalf("kind = %q, want %q", res.Kind, ReplyNone)
		}
		if res.Body != "#ff00 hello" {
			t.Fatalf("body = %q", res.Body)
		}
	})

	t.Run("hash mid-sentence is not a reference", func(t *testing.T) {
		res := ResolveReplyReference(feed, "track #77 is my favorite")
		if res.Kind != ReplyNone {
			t.Fatalf("kind = %q, want %q", res.Kind, ReplyNone)
		}
	})
}

func TestRestoreDraft(t *testing.T) {
	if got := restoreDraft("hello", nil); got != "hello" {
		t.Fatalf("got %q", got)
	}
	target := "msg-77fe"
	if got := restoreDraft("hello", &target); got != "#msg-77fe hello" {
		t.Fatalf("got %q", got)
	}
}
