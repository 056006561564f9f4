package core

import (
	"strings"

	"github.com/google/uuid"
)

// Server message ids use the msg- prefix; transient ids use pending- so
// the two namespaces can never collide.
const (
	MessageIDPrefix   = "msg-"
	transientIDPrefix = "pending-"
)

// NewMessageID creates a server-format message identifier.
func NewMessageID() string {
	return MessageIDPrefix + uuid.NewString()
}

// NewTransientID creates a locally-unique identifier for an optimistic
// send awaiting server confirmation.
func NewTransientID() string {
	return transientIDPrefix + uuid.NewString()
}

// IsTransientID reports whether id belongs to a pending local send.
func IsTransientID(id string) bool {
	return strings.HasPrefix(id, transientIDPrefix)
}
