package chat

import "sync"

// ActiveConversation records which conversation, if any, is currently on
// screen. The hosting application constructs one cell and hands it to
// both the session controller (writer) and the notification collaborator
// (reader); only one conversation view is open at a time, so there is at
// most one writer at any instant.
type ActiveConversation struct {
	mu sync.Mutex
	id string
}

// NewActiveConversation creates an empty cell.
func NewActiveConversation() *ActiveConversation {
	return &ActiveConversation{}
}

// Set marks a conversation as the one being viewed.
func (a *ActiveConversation) Set(conversationID string) {
	a.mu.Lock()
	a.id = conversationID
	a.mu.Unlock()
}

// Clear marks no conversation as being viewed.
func (a *ActiveConversation) Clear() {
	a.Set("")
}

// IsActive reports whether the given conversation is being viewed.
func (a *ActiveConversation) IsActive(conversationID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return conversationID != "" && a.id == conversationID
}

// Current returns the viewed conversation id, or "".
func (a *ActiveConversation) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.id
}
