// Package session holds the in-memory conversation state: sessions, their
// message timelines, and the odds snapshot preloaded at startup.
package session

import (
	"time"

	"github.com/hoopsight/hoopsight/internal/chat"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	// SenderUser marks a message typed by the user.
	SenderUser Sender = "user"
	// SenderAI marks a message produced by the assistant.
	SenderAI Sender = "ai"
)

// DefaultSessionTitle is the title of the session created at bootstrap.
const DefaultSessionTitle = "NBA Insights Chat"

// Message is one entry in a session timeline.
//
// A message settles exactly once: the assistant placeholder appended on send
// starts with IsLoading set and is later replaced in place, identified by ID.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsLoading bool      `json:"isLoading,omitempty"`
	IsError   bool      `json:"isError,omitempty"`

	// GroundingSources carries search citations attached to an assistant
	// message, passed through opaquely.
	GroundingSources []chat.GroundingSource `json:"groundingSources,omitempty"`

	// GamePredictionData is the structured uiGamePrediction(s) payload
	// extracted from the assistant's reply, when present.
	GamePredictionData any `json:"gamePredictionData,omitempty"`
}

// Session is one conversation.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// clone returns a deep-enough copy for handing outside the store lock. The
// message slice is copied; the payloads inside are treated as immutable once
// settled.
func (s *Session) clone() *Session {
	cp := *s
	cp.Messages = make([]Message, len(s.Messages))
	copy(cp.Messages, s.Messages)
	return &cp
}
