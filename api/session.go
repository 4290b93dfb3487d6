package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hoopsight/hoopsight/internal/log"
	"github.com/hoopsight/hoopsight/internal/session"
)

// Session validation constants.
const MaxTitleLength = 100

// SessionHandler handles session-related HTTP endpoints.
type SessionHandler struct {
	store  *session.Store
	logger log.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(store *session.Store, logger log.Logger) *SessionHandler {
	return &SessionHandler{store: store, logger: logger}
}

// RegisterRoutes registers session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions", h.list)
	mux.HandleFunc("POST /api/sessions", h.create)
	mux.HandleFunc("GET /api/sessions/active", h.active)
	mux.HandleFunc("POST /api/sessions/{id}/select", h.selectSession)
	mux.HandleFunc("POST /api/sessions/{id}/rename", h.rename)
	mux.HandleFunc("POST /api/sessions/{id}/messages", h.send)
	mux.HandleFunc("GET /api/current-odds", h.currentOdds)
}

// list returns all sessions in creation order.
func (h *SessionHandler) list(w http.ResponseWriter, _ *http.Request) {
	if h.store == nil {
		h.logger.Error("session store is nil")
		writeError(w, http.StatusInternalServerError, "internal_error", "session store not configured")
		return
	}

	sessions := h.store.Sessions()
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	Title string `json:"title"`
}

// create creates a new session, pre-seeded with the assistant greeting, and
// makes it active.
func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.logger.Error("session store is nil")
		writeError(w, http.StatusInternalServerError, "internal_error", "session store not configured")
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if len(req.Title) > MaxTitleLength {
		writeError(w, http.StatusBadRequest, "title_too_long", "title too long (max 100 characters)")
		return
	}

	sess := h.store.NewChat(req.Title)
	writeJSON(w, http.StatusCreated, sess)
}

// active returns the currently selected session.
func (h *SessionHandler) active(w http.ResponseWriter, _ *http.Request) {
	sess, err := h.store.Active()
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "no active session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// selectSession makes the given session active. Unknown IDs leave the current
// selection unchanged, matching the store's tolerance.
func (h *SessionHandler) selectSession(w http.ResponseWriter, r *http.Request) {
	h.store.SelectChat(r.PathValue("id"))
	sess, err := h.store.Active()
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "no active session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// RenameSessionRequest is the request body for renaming a session.
type RenameSessionRequest struct {
	Title string `json:"title"`
}

// rename sets a session title.
func (h *SessionHandler) rename(w http.ResponseWriter, r *http.Request) {
	var req RenameSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if len(req.Title) > MaxTitleLength {
		writeError(w, http.StatusBadRequest, "title_too_long", "title too long (max 100 characters)")
		return
	}

	id := r.PathValue("id")
	if err := h.store.RenameChat(id, req.Title); err != nil {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	sess, err := h.store.Session(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// SendMessageRequest is the request body for sending a message into a session.
type SendMessageRequest struct {
	Message            string         `json:"message"`
	IsInitialOddsQuery bool           `json:"isInitialOddsQuery"`
	RawInitialOddsData map[string]any `json:"rawInitialOddsData"`
}

// send runs a conversational turn inside a session and returns the session
// with the settled assistant reply appended.
func (h *SessionHandler) send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if len(req.Message) > MaxMessageLength {
		writeError(w, http.StatusBadRequest, "message_too_long", "message too long (max 10000 characters)")
		return
	}

	sess, err := h.store.Send(r.Context(), r.PathValue("id"), req.Message, req.IsInitialOddsQuery, req.RawInitialOddsData)
	switch {
	case errors.Is(err, session.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	case errors.Is(err, session.ErrSessionBusy):
		writeError(w, http.StatusConflict, "session_busy", "a message is already in flight for this session")
		return
	case err != nil:
		h.logger.Error("session send failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// currentOdds returns the odds snapshot preloaded at startup.
func (h *SessionHandler) currentOdds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"games": h.store.CurrentOdds(),
	})
}
