package core

import (
	"strings"
	"testing"
	"time"

	"github.com/greenroom-app/greenroom/internal/types"
)

func TestParseMentionSegments(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		mentions []string
	}{
		{
			name:     "single mention",
			body:     "hey @sam are we on for tonight",
			mentions: []string{"@sam are"},
		},
		{
			name:     "display name mention",
			body:     "@Sam Lee!",
			mentions: []string{"@Sam Lee"},
		},
		{
			name:     "email is not a mention",
			body:     "mail me at sam@band.com ok",
			mentions: nil,
		},
		{
			name:     "multiple mentions",
			body:     "@sam, @riley: load-in at 6",
			mentions: []string{"@sam", "@riley"},
		},
		{
			name:     "no mentions",
			body:     "rehearsal moved to thursday",
			mentions: nil,
		},
		{
			name:     "bare at sign",
			body:     "meet @ the venue",
			mentions: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := ParseMentionSegments(tt.body)

			var got []string
			var rebuilt strings.Builder
			for _, segment := range segments {
				rebuilt.WriteString(segment.Text)
				if segment.IsMention {
					got = append(got, segment.Text)
				}
			}
			if rebuilt.String() != tt.body {
				t.Fatalf("round trip mismatch: %q != %q", rebuilt.String(), tt.body)
			}
			if len(got) != len(tt.mentions) {
				t.Fatalf("expected %d mentions, got %v", len(tt.mentions), got)
			}
			for i, mention := range tt.mentions {
				if got[i] != mention {
					t.Fatalf("mention %d: expected %q, got %q", i, mention, got[i])
				}
			}
		})
	}
}

func TestParseMentionSegmentsEmpty(t *testing.T) {
	if segments := ParseMentionSegments(""); segments != nil {
		t.Fatalf("expected nil segments for empty body, got %v", segments)
	}
}

func TestSuggestMentions(t *testing.T) {
	now := time.Now()
	participants := []types.Participant{
		{UserID: "u1", DisplayName: "Sam Lee", LastReadAt: &now},
		{UserID: "u2", DisplayName: "Riley"},
		{UserID: "u3", DisplayName: "Samir"},
		{UserID: "me", DisplayName: "Me Myself"},
	}

	suggestions := SuggestMentions("@sam", participants, "me")
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].Insert != "@Sam Lee" || suggestions[1].Insert != "@Samir" {
		t.Fatalf("unexpected suggestions: %+v", suggestions)
	}

	// Substring, not prefix: "am" matches Sam Lee and Samir.
	if got := SuggestMentions("am", participants, "me"); len(got) != 2 {
		t.Fatalf("substring match: expected 2, got %d", len(got))
	}

	// Self never suggested, even on exact match.
	for _, s := range SuggestMentions("me", participants, "me") {
		if s.Insert == "@Me Myself" {
			t.Fatal("self must be excluded from suggestions")
		}
	}

	// Empty prefix lists everyone but self.
	if got := SuggestMentions("", participants, "me"); len(got) != 3 {
		t.Fatalf("empty prefix: expected 3, got %d", len(got))
	}
}

func TestTransientIDs(t *testing.T) {
	id := NewTransientID()
	if !IsTransientID(id) {
		t.Fatalf("expected transient id, got %q", id)
	}
	if IsTransientID(NewMessageID()) {
		t.Fatal("server id classified as transient")
	}
	if id == NewTransientID() {
		t.Fatal("transient ids must be unique")
	}
}
