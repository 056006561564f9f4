package chat

import (
	"time"

	"github.com/greenroom-app/greenroom/internal/core"
	"github.com/greenroom-app/greenroom/internal/types"
)

// echoWindow bounds how far apart a pending send and its server echo may
// be timestamped and still merge. Matching is by sender, body, and
// conversation rather than a correlation token, so two identical bodies
// from the same sender inside the window will collapse into one bubble.
const echoWindow = 10 * time.Second

// findPendingEcho returns the transient id of the pending send that the
// incoming confirmed message echoes, if any.
func (s *Store) findPendingEcho(confirmed types.Message) (string, bool) {
	if core.IsTransientID(confirmed.ID) {
		return "", false
	}
	for _, msg := range s.messages {
		if !core.IsTransientID(msg.ID) {
			continue
		}
		if matchesPendingEcho(msg, confirmed) {
			return msg.ID, true
		}
	}
	return "", false
}

func matchesPendingEcho(pending, confirmed types.Message) bool {
	if pending.ConversationID != confirmed.ConversationID {
		return false
	}
	if pending.SenderID != confirmed.SenderID {
		return false
	}
	if pending.Body != confirmed.Body {
		return false
	}
	delta := confirmed.CreatedAt.Sub(pending.CreatedAt)
	if delta < 0 {
		delta = -delta
	}
	return delta <= echoWindow
}
