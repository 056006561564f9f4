package types

import "time"

// MessageKind represents the payload type of a message.
type MessageKind string

const (
	// KindText is a plain text message. Media kinds may be added later.
	KindText MessageKind = "text"
)

// Message represents one conversation message. A message whose ID is
// transient (pending-…) is an optimistic local send awaiting server
// confirmation; a server-confirmed message is immutable apart from the
// edited and deleted flags.
type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	SenderID       string         `json:"sender_id"`
	SenderName     string         `json:"sender_name,omitempty"`
	Body           string         `json:"body"`
	Kind           MessageKind    `json:"kind"`
	CreatedAt      time.Time      `json:"created_at"`
	Edited         bool           `json:"edited,omitempty"`
	Deleted        bool           `json:"deleted,omitempty"`
	ReplyTo        *string        `json:"reply_to,omitempty"`
	ReplySnapshot  *ReplySnapshot `json:"reply_snapshot,omitempty"`
}

// ReplySnapshot is a denormalized copy of the replied-to message taken at
// send time, used when the original is not loaded locally.
type ReplySnapshot struct {
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name,omitempty"`
	Body       string `json:"body"`
}

// Participant represents one member of a conversation. LastReadAt is
// advanced only by that participant's own client; this engine never
// mutates participants, only reads them.
type Participant struct {
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	LastReadAt  *time.Time `json:"last_read_at,omitempty"`
}

// MentionSegment is one run of message text, either plain or a mention.
// Segments are derived from the body on render and never stored.
type MentionSegment struct {
	Text      string
	IsMention bool
}

// SendFailure describes a rolled-back optimistic send. Draft and ReplyTo
// carry what the compose input should be repopulated with.
type SendFailure struct {
	Draft   string
	ReplyTo *string
	Err     error
}
