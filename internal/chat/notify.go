package chat

import (
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/greenroom-app/greenroom/internal/types"
)

// NotificationRecorder persists a surfaced notification so it can be
// cleared when its conversation is opened.
type NotificationRecorder interface {
	RecordNotification(msg types.Message) error
}

// Notifier decides whether an incoming message should interrupt the
// user. A message for the conversation currently on screen, or from the
// local user, is suppressed; everything else raises an OS notification
// and is recorded locally.
type Notifier struct {
	active   *ActiveConversation
	recorder NotificationRecorder
	selfID   string

	// send is swapped out in tests.
	send func(title, body string) error
}

// NewNotifier creates a Notifier. recorder may be nil.
func NewNotifier(active *ActiveConversation, recorder NotificationRecorder, selfID string) *Notifier {
	return &Notifier{
		active:   active,
		recorder: recorder,
		selfID:   selfID,
		send: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
	}
}

// HandleIncoming processes one incoming message. Returns true when a
// notification was surfaced.
func (n *Notifier) HandleIncoming(msg types.Message) (bool, error) {
	if msg.SenderID == n.selfID {
		return false, nil
	}
	if n.active != nil && n.active.IsActive(msg.ConversationID) {
		return false, nil
	}

	if n.recorder != nil {
		if err := n.recorder.RecordNotification(msg); err != nil {
			return false, err
		}
	}

	title := msg.SenderName
	if title == "" {
		title = msg.SenderID
	}
	return true, n.send(title, truncateNotification(msg.Body, 100))
}

func truncateNotification(s string, maxLen int) string {
	// Collapse whitespace for the one-line notification body.
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}
