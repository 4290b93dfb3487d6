package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/hoopsight/hoopsight/internal/chat"
	"github.com/hoopsight/hoopsight/internal/log"
	"github.com/hoopsight/hoopsight/internal/odds"
	"github.com/hoopsight/hoopsight/internal/prediction"
)

// Store errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session already has a message in flight")
	ErrEmptyMessage    = errors.New("message text is empty")
)

// Orchestrator is the conversational engine as the store needs it.
// internal/chat provides the production implementation.
type Orchestrator interface {
	SendTurn(ctx context.Context, history []*genai.Content, userText string) *chat.Result
	FormatPreloaded(ctx context.Context, oddsData map[string]any, userQueryHint string) *chat.Result
}

// Store is the in-memory session store. All state is guarded by one mutex;
// the lock is released for the duration of the orchestrator call so slow
// model turns in one session never block reads or sends in others.
//
// At most one send may be in flight per session. Concurrent sends to the
// same session fail fast with ErrSessionBusy.
type Store struct {
	mu       sync.Mutex
	sessions []*Session // creation order
	byID     map[string]*Session
	activeID string
	inFlight map[string]bool

	currentOdds []prediction.GamePrediction

	engine Orchestrator
	logger log.Logger

	// Injectable for tests.
	now   func() time.Time
	newID func() string
}

// NewStore creates a session store bound to the given orchestrator.
func NewStore(engine Orchestrator, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{
		byID:     make(map[string]*Session),
		inFlight: make(map[string]bool),
		engine:   engine,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Bootstrap creates the default session with the assistant greeting and makes
// it active. Calling it on a non-empty store is a no-op.
func (s *Store) Bootstrap() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) > 0 {
		return s.byID[s.activeID].clone()
	}
	sess := s.createLocked(DefaultSessionTitle)
	return sess.clone()
}

// NewChat creates a session pre-seeded with the greeting and makes it active.
func (s *Store) NewChat(title string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultSessionTitle
	}
	return s.createLocked(title).clone()
}

func (s *Store) createLocked(title string) *Session {
	now := s.now()
	sess := &Session{
		ID:    s.newID(),
		Title: title,
		Messages: []Message{{
			ID:        s.newID(),
			Sender:    SenderAI,
			Text:      chat.Greeting,
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions = append(s.sessions, sess)
	s.byID[sess.ID] = sess
	s.activeID = sess.ID
	s.logger.Debug("session created", "session_id", sess.ID, "title", title)
	return sess
}

// Sessions returns all sessions in creation order.
func (s *Store) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.clone()
	}
	return out
}

// Session returns one session by ID.
func (s *Store) Session(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.clone(), nil
}

// Active returns the currently selected session.
func (s *Store) Active() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[s.activeID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.clone(), nil
}

// SelectChat makes the given session active. Selecting an unknown ID leaves
// the current selection in place.
func (s *Store) SelectChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; ok {
		s.activeID = id
	}
}

// RenameChat sets a session title. Blank titles are ignored.
func (s *Store) RenameChat(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return ErrSessionNotFound
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	sess.Title = title
	sess.UpdatedAt = s.now()
	return nil
}

// LoadInitialOdds maps a feed payload into the odds snapshot served to
// clients alongside the chat.
func (s *Store) LoadInitialOdds(payload *odds.FeedPayload) {
	mapped := prediction.MapFeedPayload(payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentOdds = mapped
	s.logger.Info("initial odds loaded", "games", len(mapped))
}

// CurrentOdds returns the mapped odds snapshot, which may be empty.
func (s *Store) CurrentOdds() []prediction.GamePrediction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]prediction.GamePrediction, len(s.currentOdds))
	copy(out, s.currentOdds)
	return out
}

// Send runs one conversational turn against a session.
//
// The user message and an assistant loading placeholder are appended under
// the lock, the lock is released for the orchestrator call, and the
// placeholder is then settled in place by ID. The returned session reflects
// the settled state.
//
// When isInitialOddsQuery is set with a raw odds payload, the turn takes the
// preload path instead of the tool-calling one.
func (s *Store) Send(ctx context.Context, sessionID, text string, isInitialOddsQuery bool, rawInitialOddsData map[string]any) (*Session, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	sess, ok := s.byID[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if s.inFlight[sessionID] {
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	s.inFlight[sessionID] = true

	now := s.now()
	placeholderID := s.newID()
	sess.Messages = append(sess.Messages,
		Message{
			ID:        s.newID(),
			Sender:    SenderUser,
			Text:      text,
			Timestamp: now,
		},
		Message{
			ID:        placeholderID,
			Sender:    SenderAI,
			Timestamp: now,
			IsLoading: true,
		},
	)
	sess.UpdatedAt = now
	history := s.historyLocked(sess)
	s.mu.Unlock()

	var result *chat.Result
	if isInitialOddsQuery && rawInitialOddsData != nil {
		result = s.engine.FormatPreloaded(ctx, rawInitialOddsData, text)
	} else {
		result = s.engine.SendTurn(ctx, history, text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)

	s.settleLocked(sess, placeholderID, result)
	sess.UpdatedAt = s.now()
	return sess.clone(), nil
}

// settleLocked replaces the loading placeholder with the settled result.
func (s *Store) settleLocked(sess *Session, placeholderID string, result *chat.Result) {
	for i := range sess.Messages {
		if sess.Messages[i].ID != placeholderID {
			continue
		}
		sess.Messages[i].Text = result.Text
		sess.Messages[i].IsLoading = false
		sess.Messages[i].IsError = result.IsError
		sess.Messages[i].GroundingSources = result.GroundingSources
		if result.StructuredData != nil {
			sess.Messages[i].GamePredictionData = result.StructuredData
		}
		sess.Messages[i].Timestamp = s.now()
		return
	}
	// Placeholder gone means the session was mutated out from under us;
	// append rather than drop the answer.
	settled := Message{
		ID:               placeholderID,
		Sender:           SenderAI,
		Text:             result.Text,
		Timestamp:        s.now(),
		IsError:          result.IsError,
		GroundingSources: result.GroundingSources,
	}
	if result.StructuredData != nil {
		settled.GamePredictionData = result.StructuredData
	}
	sess.Messages = append(sess.Messages, settled)
}

// historyLocked converts the settled portion of a session timeline into model
// contents. Loading placeholders, errored replies, and the current user
// message (appended last, replayed by the orchestrator itself) are excluded.
func (s *Store) historyLocked(sess *Session) []*genai.Content {
	msgs := sess.Messages
	// Drop the user message and placeholder just appended.
	if len(msgs) >= 2 {
		msgs = msgs[:len(msgs)-2]
	}

	history := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		if m.IsLoading || m.IsError || strings.TrimSpace(m.Text) == "" {
			continue
		}
		role := genai.Role(genai.RoleModel)
		if m.Sender == SenderUser {
			role = genai.RoleUser
		}
		history = append(history, genai.NewContentFromText(m.Text, role))
	}
	return history
}
