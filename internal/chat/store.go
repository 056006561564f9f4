// Package chat implements the per-conversation message synchronization
// engine: the message store, reconciliation of realtime, poll, and
// optimistic-send paths, read receipts, and the session controller.
package chat

import (
	"sort"
	"strings"
	"time"

	"github.com/greenroom-app/greenroom/internal/core"
	"github.com/greenroom-app/greenroom/internal/types"
)

// Store holds the ordered message feed for one open conversation. It is
// the single source of truth the UI renders from, keyed uniquely by
// message id. Confirmed messages are kept in ascending CreatedAt order;
// pending (transient-id) messages always sort at the tail, since they
// represent "now". The Store itself is not goroutine-safe; its owning
// Session serializes access.
type Store struct {
	messages []types.Message
	index    map[string]int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{index: map[string]int{}}
}

// ReplaceAll resets the feed from an initial full fetch. Order equals
// server return order, chronological ascending.
func (s *Store) ReplaceAll(messages []types.Message) {
	s.messages = append(s.messages[:0:0], messages...)
	s.reindex()
}

// UpsertOne updates a message with the same id in place, preserving its
// position, or appends it. Applying the same confirmed message twice is
// a no-op, which makes redelivered realtime events harmless.
func (s *Store) UpsertOne(msg types.Message) {
	if i, ok := s.index[msg.ID]; ok {
		s.messages[i] = msg
		return
	}
	s.messages = append(s.messages, msg)
	s.normalize()
}

// ReconcilePending removes the transient entry for an in-flight send and
// inserts its server-confirmed record. If the confirmed id is already
// present (the realtime echo won the race), the transient entry is just
// dropped. Reports whether the transient entry existed.
func (s *Store) ReconcilePending(transientID string, confirmed types.Message) bool {
	found := s.remove(transientID)
	s.UpsertOne(confirmed)
	return found
}

// RemovePending drops a transient entry after a failed send. The caller
// is responsible for restoring the draft to the compose input.
func (s *Store) RemovePending(transientID string) bool {
	if !core.IsTransientID(transientID) {
		return false
	}
	return s.remove(transientID)
}

// MergeSnapshot merges a bounded poll window into the feed. Messages
// already present by id are refreshed in place (edits and deletions
// propagate through the poll path); snapshot messages matching a pending
// send are treated as its echo; the rest are appended in snapshot order.
// Nothing is ever removed: pending entries and confirmed messages older
// than the window survive untouched. Returns the number of messages the
// snapshot added.
func (s *Store) MergeSnapshot(snapshot []types.Message) int {
	added := 0
	for _, msg := range snapshot {
		if i, ok := s.index[msg.ID]; ok {
			s.messages[i] = msg
			continue
		}
		if transientID, ok := s.findPendingEcho(msg); ok {
			s.ReconcilePending(transientID, msg)
			continue
		}
		s.messages = append(s.messages, msg)
		added++
	}
	if added > 0 {
		s.normalize()
	}
	return added
}

// Messages returns a copy of the feed in render order.
func (s *Store) Messages() []types.Message {
	return append([]types.Message(nil), s.messages...)
}

// Get returns the message with the given id.
func (s *Store) Get(id string) (types.Message, bool) {
	if i, ok := s.index[id]; ok {
		return s.messages[i], true
	}
	return types.Message{}, false
}

// Len returns the number of messages in the feed.
func (s *Store) Len() int {
	return len(s.messages)
}

// PendingCount returns the number of sends still awaiting confirmation.
func (s *Store) PendingCount() int {
	count := 0
	for _, msg := range s.messages {
		if core.IsTransientID(msg.ID) {
			count++
		}
	}
	return count
}

// FindByIDPrefix returns confirmed messages whose id matches a short
// prefix, newest first, for resolving #prefix reply references.
func (s *Store) FindByIDPrefix(prefix string, limit int) []types.Message {
	prefix = strings.TrimPrefix(strings.ToLower(prefix), core.MessageIDPrefix)
	var matches []types.Message
	for i := len(s.messages) - 1; i >= 0; i-- {
		msg := s.messages[i]
		if core.IsTransientID(msg.ID) {
			continue
		}
		if strings.HasPrefix(strings.TrimPrefix(msg.ID, core.MessageIDPrefix), prefix) {
			matches = append(matches, msg)
			if limit > 0 && len(matches) >= limit {
				break
			}
		}
	}
	return matches
}

func (s *Store) remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	s.reindex()
	return true
}

// normalize restores the ordering invariant: confirmed messages stable-
// sorted by CreatedAt, pending entries at the tail in send order.
func (s *Store) normalize() {
	sort.SliceStable(s.messages, func(i, j int) bool {
		a, b := s.messages[i], s.messages[j]
		aPending, bPending := core.IsTransientID(a.ID), core.IsTransientID(b.ID)
		if aPending != bPending {
			return bPending
		}
		if aPending {
			return false
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	s.reindex()
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.messages))
	for i, msg := range s.messages {
		s.index[msg.ID] = i
	}
}

// DayGroup is one calendar day of the rendered feed.
type DayGroup struct {
	Day      time.Time
	Messages []types.Message
}

// DayGroups splits an ordered feed into calendar-day groups for
// rendering day separators.
func DayGroups(messages []types.Message) []DayGroup {
	var groups []DayGroup
	for _, msg := range messages {
		day := time.Date(msg.CreatedAt.Year(), msg.CreatedAt.Month(), msg.CreatedAt.Day(), 0, 0, 0, 0, msg.CreatedAt.Location())
		if len(groups) == 0 || !groups[len(groups)-1].Day.Equal(day) {
			groups = append(groups, DayGroup{Day: day})
		}
		groups[len(groups)-1].Messages = append(groups[len(groups)-1].Messages, msg)
	}
	return groups
}
