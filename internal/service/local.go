package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/greenroom-app/greenroom/internal/core"
	"github.com/greenroom-app/greenroom/internal/types"
)

// Local is a file-backed Service. Each conversation is an append-only
// JSONL file under dir; an fsnotify watcher wakes subscribers when a
// file grows, which makes the realtime path real enough to exercise the
// whole engine without a backend. Used by `greenroom chat --local` and
// by tests.
type Local struct {
	dir      string
	selfID   string
	selfName string

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
	subs    map[int]*localSub
	nextSub int
}

type localSub struct {
	conversationID string
	onMessage      func(types.Message)
	// offset is the number of lines already delivered or present at
	// subscribe time.
	offset int
}

// NewLocal creates a Local backend rooted at dir.
func NewLocal(dir, selfID, selfName string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	l := &Local{
		dir:      dir,
		selfID:   selfID,
		selfName: selfName,
		watcher:  watcher,
		subs:     map[int]*localSub{},
	}
	go l.watchLoop()
	return l, nil
}

// Close shuts the backend down; subscriptions stop delivering.
func (l *Local) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()
	return l.watcher.Close()
}

// FetchMessages returns the last limit messages, chronological
// ascending. A missing conversation file is an empty feed.
func (l *Local) FetchMessages(_ context.Context, conversationID string, limit int) ([]types.Message, error) {
	messages, err := l.readMessages(conversationID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// SendMessage assigns a stable id and appends the record to the
// conversation file. The append wakes subscribers, including the
// sender's own session, whose echo detection collapses the duplicate.
func (l *Local) SendMessage(_ context.Context, conversationID, body string, kind types.MessageKind, replyTo *string) (types.Message, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return types.Message{}, ErrClosed
	}
	l.mu.Unlock()

	msg := types.Message{
		ID:             core.NewMessageID(),
		ConversationID: conversationID,
		SenderID:       l.selfID,
		SenderName:     l.selfName,
		Body:           body,
		Kind:           kind,
		CreatedAt:      time.Now().UTC(),
		ReplyTo:        replyTo,
	}
	if err := l.appendMessage(msg); err != nil {
		return types.Message{}, err
	}
	return msg, nil
}

// Subscribe delivers messages appended after the subscription is taken.
func (l *Local) Subscribe(conversationID string, onMessage func(types.Message)) (func(), error) {
	existing, err := l.readMessages(conversationID)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	id := l.nextSub
	l.nextSub++
	l.subs[id] = &localSub{
		conversationID: conversationID,
		onMessage:      onMessage,
		offset:         len(existing),
	}
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}, nil
}

// FetchParticipants reads the conversation's participant file. When none
// exists the local user is the only participant.
func (l *Local) FetchParticipants(_ context.Context, conversationID string) ([]types.Participant, error) {
	participants, err := l.readParticipants(conversationID)
	if err != nil {
		return nil, err
	}
	if participants == nil {
		participants = []types.Participant{{UserID: l.selfID, DisplayName: l.selfName}}
	}
	return participants, nil
}

// MarkConversationRead advances the local user's read marker in the
// participant file.
func (l *Local) MarkConversationRead(_ context.Context, conversationID string) error {
	participants, err := l.readParticipants(conversationID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	found := false
	for i := range participants {
		if participants[i].UserID == l.selfID {
			participants[i].LastReadAt = &now
			found = true
		}
	}
	if !found {
		participants = append(participants, types.Participant{
			UserID:      l.selfID,
			DisplayName: l.selfName,
			LastReadAt:  &now,
		})
	}
	return l.writeParticipants(conversationID, participants)
}

// SeedParticipants writes the participant file, for tests and demo
// setups.
func (l *Local) SeedParticipants(conversationID string, participants []types.Participant) error {
	return l.writeParticipants(conversationID, participants)
}

func (l *Local) watchLoop() {
	for event := range l.watcher.Events {
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
			continue
		}
		name := filepath.Base(event.Name)
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		l.deliver(strings.TrimSuffix(name, ".jsonl"))
	}
}

// deliver reads a grown conversation file and hands each subscriber the
// lines past its offset.
func (l *Local) deliver(conversationID string) {
	messages, err := l.readMessages(conversationID)
	if err != nil {
		return
	}

	type delivery struct {
		onMessage func(types.Message)
		pending   []types.Message
	}
	var deliveries []delivery

	l.mu.Lock()
	for _, sub := range l.subs {
		if sub.conversationID != conversationID || sub.offset >= len(messages) {
			continue
		}
		deliveries = append(deliveries, delivery{
			onMessage: sub.onMessage,
			pending:   append([]types.Message(nil), messages[sub.offset:]...),
		})
		sub.offset = len(messages)
	}
	l.mu.Unlock()

	for _, d := range deliveries {
		for _, msg := range d.pending {
			d.onMessage(msg)
		}
	}
}

func (l *Local) messagesPath(conversationID string) string {
	return filepath.Join(l.dir, conversationID+".jsonl")
}

func (l *Local) participantsPath(conversationID string) string {
	return filepath.Join(l.dir, conversationID+".participants.json")
}

func (l *Local) readMessages(conversationID string) ([]types.Message, error) {
	data, err := os.ReadFile(l.messagesPath(conversationID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var messages []types.Message
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var msg types.Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			// A torn final line from a concurrent append shows up
			// complete on the next read.
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (l *Local) appendMessage(msg types.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(l.messagesPath(msg.ConversationID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(data, '\n'))
	return err
}

func (l *Local) readParticipants(conversationID string) ([]types.Participant, error) {
	data, err := os.ReadFile(l.participantsPath(conversationID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var participants []types.Participant
	if err := json.Unmarshal(data, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (l *Local) writeParticipants(conversationID string, participants []types.Participant) error {
	data, err := json.MarshalIndent(participants, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.participantsPath(conversationID), append(data, '\n'), 0o644)
}
