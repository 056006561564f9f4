package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenroom-app/greenroom/internal/core"
	"github.com/greenroom-app/greenroom/internal/service"
	"github.com/greenroom-app/greenroom/internal/types"
)

// SessionState is the lifecycle state of a conversation session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateLoading
	StateLive
	StateClosed
)

// ErrSessionNotOpen is returned by Open when the session has already
// been opened, and by Send after teardown.
var ErrSessionNotOpen = errors.New("session not open")

const (
	defaultPollInterval = 3 * time.Second
	defaultFetchLimit   = 50
)

// NotificationStore clears locally recorded notifications for a
// conversation when its view opens.
type NotificationStore interface {
	MarkConversationNotificationsRead(conversationID string) error
}

// SessionConfig configures a Session.
type SessionConfig struct {
	ConversationID string
	SelfID         string
	SelfName       string

	// PollInterval defaults to 3s, FetchLimit to 50.
	PollInterval time.Duration
	FetchLimit   int

	Logger zerolog.Logger
}

// Session orchestrates the feed for one open conversation: initial
// fetch, realtime subscription, poll fallback, optimistic sends, and
// teardown. A Session is built fresh each time a conversation view
// opens and never reused after Close.
type Session struct {
	cfg     SessionConfig
	svc     service.Service
	active  *ActiveConversation
	records NotificationStore
	log     zerolog.Logger

	mu           sync.Mutex
	state        SessionState
	store        *Store
	participants []types.Participant
	unsubscribe  func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	onChange      func()
	onSendFailure func(types.SendFailure)
	onIncoming    func(types.Message)
}

// NewSession creates an idle session. active and records may be nil.
func NewSession(svc service.Service, active *ActiveConversation, records NotificationStore, cfg SessionConfig) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = defaultFetchLimit
	}
	return &Session{
		cfg:     cfg,
		svc:     svc,
		active:  active,
		records: records,
		log:     cfg.Logger.With().Str("conversation", cfg.ConversationID).Logger(),
		store:   NewStore(),
	}
}

// SetCallbacks registers the change and send-failure callbacks. Must be
// called before Open; callbacks are invoked from engine goroutines.
func (s *Session) SetCallbacks(onChange func(), onSendFailure func(types.SendFailure)) {
	s.onChange = onChange
	s.onSendFailure = onSendFailure
}

// SetIncomingHandler registers a callback for each genuinely new message
// delivered by the realtime channel (echoes of own sends and redelivered
// events excluded). The notification collaborator hangs off this hook.
func (s *Session) SetIncomingHandler(onIncoming func(types.Message)) {
	s.onIncoming = onIncoming
}

// Open transitions Idle → Loading → Live: marks the conversation
// active, registers the realtime subscription, performs the initial full
// fetch, clears read markers, and starts the poll loop. A failed initial
// fetch leaves the store empty but the session Live; the poll path fills
// it in. Only an Open on a non-idle session returns an error.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrSessionNotOpen
	}
	s.state = StateLoading
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	if s.active != nil {
		s.active.Set(s.cfg.ConversationID)
	}

	// Realtime failure is tolerated silently; the poll fallback keeps
	// the feed eventually consistent at poll granularity.
	if unsubscribe, err := s.svc.Subscribe(s.cfg.ConversationID, s.handleRealtime); err != nil {
		s.log.Warn().Err(err).Msg("realtime subscribe failed, relying on poll")
	} else {
		s.mu.Lock()
		s.unsubscribe = unsubscribe
		s.mu.Unlock()
	}

	messages, fetchErr := s.svc.FetchMessages(ctx, s.cfg.ConversationID, s.cfg.FetchLimit)
	participants, partErr := s.svc.FetchParticipants(ctx, s.cfg.ConversationID)

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	if fetchErr == nil {
		s.store.ReplaceAll(messages)
	} else {
		s.log.Warn().Err(fetchErr).Msg("initial fetch failed, starting with empty feed")
	}
	if partErr == nil {
		s.participants = participants
	}
	s.state = StateLive
	s.mu.Unlock()

	if err := s.svc.MarkConversationRead(ctx, s.cfg.ConversationID); err != nil {
		s.log.Debug().Err(err).Msg("mark read failed")
	}
	if s.records != nil {
		if err := s.records.MarkConversationNotificationsRead(s.cfg.ConversationID); err != nil {
			s.log.Debug().Err(err).Msg("clear notification records failed")
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.pollLoop(s.ctx)
	}()

	s.notifyChange()
	return nil
}

// Close transitions to Closed: unsubscribes realtime, stops the poll
// loop, and clears the active-conversation cell. In-flight completions
// that land after Close are discarded by the state guard.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	cancel := s.cancel
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	if s.active != nil && s.active.IsActive(s.cfg.ConversationID) {
		s.active.Clear()
	}
	s.wg.Wait()
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages returns a snapshot of the feed in render order.
func (s *Session) Messages() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Messages()
}

// Participants returns the latest participant snapshot.
func (s *Session) Participants() []types.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Participant(nil), s.participants...)
}

// Watermark returns the current read-receipt watermark. ok is false when
// no other participant has a read marker.
func (s *Session) Watermark() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ReadWatermark(s.participants, s.cfg.SelfID)
}

// Lookup returns a message from the feed by id, for reply resolution.
func (s *Session) Lookup(id string) (types.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(id)
}

// FindByIDPrefix resolves a short id prefix against the feed.
func (s *Session) FindByIDPrefix(prefix string, limit int) []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.FindByIDPrefix(prefix, limit)
}

// Send performs an optimistic send: the pending message is visible in
// the feed immediately, the network send runs concurrently, and the
// confirmed record replaces the pending entry on success. On failure the
// pending entry is rolled back and the send-failure callback receives
// the draft for the compose input.
func (s *Session) Send(body string, replyTo *string) error {
	pending, err := s.stageSend(body, replyTo)
	if err != nil {
		return err
	}
	s.notifyChange()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.completeSend(pending)
	}()
	return nil
}

// stageSend constructs the pending message and inserts it into the feed.
func (s *Session) stageSend(body string, replyTo *string) (types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLive && s.state != StateLoading {
		return types.Message{}, ErrSessionNotOpen
	}

	pending := types.Message{
		ID:             core.NewTransientID(),
		ConversationID: s.cfg.ConversationID,
		SenderID:       s.cfg.SelfID,
		SenderName:     s.cfg.SelfName,
		Body:           body,
		Kind:           types.KindText,
		CreatedAt:      time.Now(),
		ReplyTo:        replyTo,
	}
	if replyTo != nil {
		if parent, ok := s.store.Get(*replyTo); ok {
			pending.ReplySnapshot = &types.ReplySnapshot{
				SenderID:   parent.SenderID,
				SenderName: parent.SenderName,
				Body:       parent.Body,
			}
		}
	}
	s.store.UpsertOne(pending)
	return pending, nil
}

// completeSend issues the network send and reconciles or rolls back.
func (s *Session) completeSend(pending types.Message) {
	confirmed, err := s.svc.SendMessage(s.ctx, pending.ConversationID, pending.Body, pending.Kind, pending.ReplyTo)

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.store.RemovePending(pending.ID)
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("send failed, rolled back pending message")
		s.notifyChange()
		if s.onSendFailure != nil {
			s.onSendFailure(types.SendFailure{Draft: pending.Body, ReplyTo: pending.ReplyTo, Err: err})
		}
		return
	}
	s.store.ReconcilePending(pending.ID, confirmed)
	s.mu.Unlock()
	s.notifyChange()
}

// handleRealtime applies one delivered realtime event. A redelivered
// event is a no-op through the id-keyed upsert; an event matching a
// pending send closely enough is treated as its server echo so no
// duplicate bubble appears.
func (s *Session) handleRealtime(msg types.Message) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	fresh := false
	if transientID, ok := s.store.findPendingEcho(msg); ok {
		s.store.ReconcilePending(transientID, msg)
	} else {
		_, known := s.store.Get(msg.ID)
		s.store.UpsertOne(msg)
		fresh = !known
	}
	s.mu.Unlock()
	s.notifyChange()
	if fresh && s.onIncoming != nil {
		s.onIncoming(msg)
	}
}

func (s *Session) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

// pollOnce fetches the latest window and merges it. Poll failures are
// logged and the next tick retries; they are never surfaced to the user.
func (s *Session) pollOnce(ctx context.Context) {
	messages, err := s.svc.FetchMessages(ctx, s.cfg.ConversationID, s.cfg.FetchLimit)
	if err != nil {
		s.log.Debug().Err(err).Msg("poll fetch failed")
		return
	}
	participants, partErr := s.svc.FetchParticipants(ctx, s.cfg.ConversationID)

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.store.MergeSnapshot(messages)
	if partErr == nil {
		s.participants = participants
	}
	s.mu.Unlock()
	s.notifyChange()
}

func (s *Session) notifyChange() {
	if s.onChange != nil {
		s.onChange()
	}
}
