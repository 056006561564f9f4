// Package service defines the backend collaborator contract the chat
// engine consumes, and its HTTP, websocket, and local-file
// implementations. The engine is agnostic to transport; everything it
// needs from the backend is the Service interface.
package service

import (
	"context"
	"errors"

	"github.com/greenroom-app/greenroom/internal/types"
)

// ErrClosed is returned when an operation is attempted on a backend
// that has been shut down.
var ErrClosed = errors.New("service closed")

// Service is the set of backend operations the sync engine consumes.
type Service interface {
	// FetchMessages returns a bounded recent window for a conversation,
	// chronological ascending.
	FetchMessages(ctx context.Context, conversationID string, limit int) ([]types.Message, error)

	// SendMessage posts a message and returns the server-confirmed
	// record with its stable id.
	SendMessage(ctx context.Context, conversationID, body string, kind types.MessageKind, replyTo *string) (types.Message, error)

	// Subscribe registers a realtime callback for a conversation and
	// returns an unsubscribe function. The channel may delay, drop, or
	// redeliver events; the poll path covers for it.
	Subscribe(conversationID string, onMessage func(types.Message)) (func(), error)

	// FetchParticipants returns the current participant snapshot.
	FetchParticipants(ctx context.Context, conversationID string) ([]types.Participant, error)

	// MarkConversationRead advances the local user's read marker on the
	// backend.
	MarkConversationRead(ctx context.Context, conversationID string) error
}
