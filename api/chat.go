package api

import (
	"context"
	"encoding/json"
	"net/http"

	"google.golang.org/genai"

	"github.com/hoopsight/hoopsight/internal/chat"
	"github.com/hoopsight/hoopsight/internal/log"
)

// MaxMessageLength bounds the user message body.
const MaxMessageLength = 10000

// ChatService is the conversational engine as the HTTP layer needs it.
type ChatService interface {
	SendTurn(ctx context.Context, history []*genai.Content, userText string) *chat.Result
	FormatPreloaded(ctx context.Context, oddsData map[string]any, userQueryHint string) *chat.Result
}

// ChatHandler handles the stateless chat endpoint. Clients that manage their
// own conversation state send the full history with each request; sessions
// held server-side go through the session endpoints instead.
type ChatHandler struct {
	engine ChatService
	logger log.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(engine ChatService, logger log.Logger) *ChatHandler {
	return &ChatHandler{engine: engine, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.send)
}

// HistoryPart is one part of a history message.
type HistoryPart struct {
	Text string `json:"text"`
}

// HistoryItem is one prior conversation turn supplied by the client.
type HistoryItem struct {
	Role  string        `json:"role"`
	Parts []HistoryPart `json:"parts"`
}

// ChatRequest is the request body for a conversational turn.
type ChatRequest struct {
	Message            string         `json:"message"`
	History            []HistoryItem  `json:"history"`
	IsInitialOddsQuery bool           `json:"isInitialOddsQuery"`
	RawInitialOddsData map[string]any `json:"rawInitialOddsData"`
}

// ChatResponse is the settled turn returned to the client.
type ChatResponse struct {
	Response           string                 `json:"response"`
	StructuredGameData map[string]any         `json:"structuredGameData,omitempty"`
	GroundingSources   []chat.GroundingSource `json:"groundingSources,omitempty"`
	IsError            bool                   `json:"isError,omitempty"`
}

// send runs one conversational turn.
func (h *ChatHandler) send(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		h.logger.Error("chat engine is nil")
		writeError(w, http.StatusInternalServerError, "internal_error", "chat engine not configured")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}
	if len(req.Message) > MaxMessageLength {
		writeError(w, http.StatusBadRequest, "message_too_long", "message too long (max 10000 characters)")
		return
	}

	var result *chat.Result
	if req.IsInitialOddsQuery && req.RawInitialOddsData != nil {
		result = h.engine.FormatPreloaded(r.Context(), req.RawInitialOddsData, req.Message)
	} else {
		result = h.engine.SendTurn(r.Context(), toContents(req.History), req.Message)
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:           result.Text,
		StructuredGameData: result.StructuredData,
		GroundingSources:   result.GroundingSources,
		IsError:            result.IsError,
	})
}

// toContents converts client-supplied history into model contents. Roles
// other than "model" are treated as user turns; the orchestrator's history
// validation handles alternation from there.
func toContents(items []HistoryItem) []*genai.Content {
	contents := make([]*genai.Content, 0, len(items))
	for _, item := range items {
		var text string
		for _, p := range item.Parts {
			text += p.Text
		}
		if text == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if item.Role == "model" || item.Role == "ai" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(text, role))
	}
	return contents
}
