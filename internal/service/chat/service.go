package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labsense/backend/internal/model/chat"
	"github.com/labsense/backend/internal/service/assistant"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrServiceClosed   = errors.New("chat service closed")
)

// Responder turns a transcript ending in a user turn into the assistant reply.
// It is called with the service lock held and must not block.
type Responder interface {
	Reply(ctx context.Context, transcript []chat.Message) (string, error)
}

// Stats summarises activity across all sessions.
type Stats struct {
	ActiveSessions  int `json:"activeSessions"`
	CreatedSessions int `json:"createdSessions"`
	UserTurns       int `json:"userTurns"`
	Replies         int `json:"replies"`
	PDFUploads      int `json:"pdfUploads"`
	ImageUploads    int `json:"imageUploads"`
	AwaitingReplies int `json:"awaitingReplies"`
}

type sessionEntry struct {
	session     chat.Session
	state       chat.State
	awaiting    []string
	subscribers map[int]chan Event
}

// Service encapsulates conversation state management.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	timers   map[uint64]Timer
	stats    Stats
	closed   bool

	nextTimer uint64
	nextSub   int

	clock     Clock
	delay     time.Duration
	responder Responder
	newID     func() string
	logger    *zap.Logger
}

// NewService bootstraps the in-memory chat service.
func NewService(opts ...Option) *Service {
	s := &Service{
		sessions: make(map[string]*sessionEntry),
		timers:   make(map[uint64]Timer),
		clock:    systemClock{},
		delay:    DefaultReplyDelay,
		newID:    newMessageID,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newMessageID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ReplyDelay reports the configured reply delay.
func (s *Service) ReplyDelay() time.Duration {
	return s.delay
}

// CreateSession provisions an anonymous session seeded with the greeting.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	now := s.clock.Now().UTC()
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return chat.Session{}, ErrServiceClosed
	}

	s.sessions[session.ID] = &sessionEntry{
		session:     session,
		state:       chat.NewState(chat.Greeting(session.ID, now)),
		subscribers: make(map[int]chan Event),
	}
	s.stats.CreatedSessions++

	s.logger.Info("session created", zap.String("session", session.ID))
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

// Snapshot returns everything a renderer needs for one session.
func (s *Service) Snapshot(_ context.Context, sessionID string) (chat.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return chat.Snapshot{}, ErrSessionNotFound
	}

	return chat.Snapshot{
		Session:         entry.session,
		Messages:        entry.state.Transcript(),
		Pending:         copyAttachment(entry.state.Pending),
		AwaitingReplies: len(entry.awaiting),
		Disclaimer:      chat.Disclaimer,
	}, nil
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry.state.Transcript(), nil
}

// PendingAttachment returns the staged attachment, or nil.
func (s *Service) PendingAttachment(_ context.Context, sessionID string) (*chat.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copyAttachment(entry.state.Pending), nil
}

// SelectAttachment stages att for the next send, replacing any previous one.
// A nil att is ignored.
func (s *Service) SelectAttachment(_ context.Context, sessionID string, att *chat.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if att == nil {
		return nil
	}

	entry.state = entry.state.SelectAttachment(att)
	s.publish(entry, Event{Type: EventAttachment, SessionID: sessionID, Pending: copyAttachment(entry.state.Pending)})

	s.logger.Debug("attachment staged",
		zap.String("session", sessionID),
		zap.String("name", att.Name),
		zap.String("mimeType", att.MimeType))
	return nil
}

// ClearAttachment empties the pending slot.
func (s *Service) ClearAttachment(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if entry.state.Pending == nil {
		return nil
	}

	entry.state = entry.state.ClearAttachment()
	s.publish(entry, Event{Type: EventAttachment, SessionID: sessionID})
	return nil
}

// Send appends a user message and schedules exactly one assistant reply after
// the reply delay. When text is blank and nothing is staged it does nothing
// and reports sent=false. Scheduled replies cannot be cancelled.
func (s *Service) Send(_ context.Context, sessionID, text string) (chat.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return chat.Message{}, false, ErrSessionNotFound
	}

	hadPending := entry.state.Pending != nil
	next, sent, ok := entry.state.Send(sessionID, s.newID(), text, s.clock.Now().UTC())
	if !ok {
		return chat.Message{}, false, nil
	}

	entry.state = next
	entry.awaiting = append(entry.awaiting, sent.ID)
	s.stats.UserTurns++
	if sent.Attachment != nil {
		if sent.Attachment.IsPDF() {
			s.stats.PDFUploads++
		} else {
			s.stats.ImageUploads++
		}
	}

	s.armReply(sessionID)

	s.publish(entry, Event{Type: EventMessage, SessionID: sessionID, Message: &sent})
	if hadPending {
		s.publish(entry, Event{Type: EventAttachment, SessionID: sessionID})
	}

	s.logger.Info("user message appended",
		zap.String("session", sessionID),
		zap.String("message", sent.ID),
		zap.Bool("attachment", sent.Attachment != nil),
		zap.Int("awaiting", len(entry.awaiting)))
	return sent, true, nil
}

// armReply must be called with s.mu held.
func (s *Service) armReply(sessionID string) {
	s.nextTimer++
	id := s.nextTimer
	s.timers[id] = s.clock.AfterFunc(s.delay, func() {
		s.deliverReply(sessionID, id)
	})
}

// deliverReply answers the oldest outstanding turn of the session. Each
// timer answers one turn and the delay is constant, so replies follow send
// order. Replies for closed sessions are dropped.
func (s *Service) deliverReply(sessionID string, timerID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.timers, timerID)
	if s.closed {
		return
	}

	entry, ok := s.sessions[sessionID]
	if !ok || len(entry.awaiting) == 0 {
		s.logger.Debug("dropping reply for closed session", zap.String("session", sessionID))
		return
	}

	userID := entry.awaiting[0]
	entry.awaiting = entry.awaiting[1:]

	reply := chat.Message{
		ID:        s.newID(),
		SessionID: sessionID,
		Sender:    chat.SenderAssistant,
		Content:   s.replyText(sessionID, entry.state.Messages, userID),
		CreatedAt: s.clock.Now().UTC(),
	}

	entry.state = entry.state.AppendReply(reply)
	s.stats.Replies++
	s.publish(entry, Event{Type: EventMessage, SessionID: sessionID, Message: &reply})

	s.logger.Info("assistant reply appended",
		zap.String("session", sessionID),
		zap.String("inReplyTo", userID),
		zap.Int("awaiting", len(entry.awaiting)))
}

// replyText asks the responder about the transcript up to and including the
// user turn being answered, falling back to the canned text on failure.
func (s *Service) replyText(sessionID string, log []chat.Message, userID string) string {
	idx := len(log) - 1
	for ; idx >= 0; idx-- {
		if log[idx].ID == userID {
			break
		}
	}
	if idx < 0 {
		return assistant.CannedReply(nil)
	}

	turn := log[idx]
	if s.responder == nil {
		return assistant.CannedReply(turn.Attachment)
	}

	text, err := s.responder.Reply(context.Background(), append([]chat.Message(nil), log[:idx+1]...))
	if err != nil || text == "" {
		s.logger.Warn("responder failed, using canned reply", zap.String("session", sessionID), zap.Error(err))
		return assistant.CannedReply(turn.Attachment)
	}
	return text
}

// CloseSession discards a session. Replies still pending for it are dropped
// and its subscribers are closed.
func (s *Service) CloseSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	delete(s.sessions, sessionID)
	for id, ch := range entry.subscribers {
		delete(entry.subscribers, id)
		close(ch)
	}

	s.logger.Info("session closed", zap.String("session", sessionID), zap.Int("dropped", len(entry.awaiting)))
	return nil
}

// Subscribe streams events of one session until cancel is called or the
// session closes. Events are dropped for subscribers that fall behind.
func (s *Service) Subscribe(_ context.Context, sessionID string) (<-chan Event, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	s.nextSub++
	id := s.nextSub
	ch := make(chan Event, subscriberBuffer)
	entry.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if current, ok := s.sessions[sessionID]; ok {
				if sub, ok := current.subscribers[id]; ok {
					delete(current.subscribers, id)
					close(sub)
				}
			}
		})
	}
	return ch, cancel, nil
}

// publish must be called with s.mu held.
func (s *Service) publish(entry *sessionEntry, event Event) {
	for id, ch := range entry.subscribers {
		select {
		case ch <- event:
		default:
			s.logger.Warn("subscriber lagging, event dropped",
				zap.String("session", entry.session.ID),
				zap.Int("subscriber", id),
				zap.String("event", string(event.Type)))
		}
	}
}

// Stats reports activity counters.
func (s *Service) Stats(_ context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats
	stats.ActiveSessions = len(s.sessions)
	for _, entry := range s.sessions {
		stats.AwaitingReplies += len(entry.awaiting)
	}
	return stats
}

// Close stops every pending timer and discards all sessions.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	for id, entry := range s.sessions {
		for subID, ch := range entry.subscribers {
			delete(entry.subscribers, subID)
			close(ch)
		}
		delete(s.sessions, id)
	}

	s.logger.Info("chat service closed")
	return nil
}

func copyAttachment(att *chat.Attachment) *chat.Attachment {
	if att == nil {
		return nil
	}
	c := *att
	return &c
}
