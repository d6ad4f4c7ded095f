package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Unity-Lab-AI/Trader-sub008/internal/session"
)

// SessionHandler serves the session resource and its sub-resources.
// Routes:
// POST   /v1/sessions                                - Create new session
// GET    /v1/sessions/{id}                           - Read session by ID
// DELETE /v1/sessions/{id}                           - Delete session by ID
// POST   /v1/sessions/{id}/events                    - Apply a game event
// POST   /v1/sessions/{id}/encounters/{eid}/resolve  - Resolve an encounter
// POST   /v1/sessions/{id}/encounters/{eid}/dismiss  - Dismiss an encounter
// POST   /v1/sessions/{id}/bounty/pay                - Pay down the bounty
type SessionHandler struct {
	manager *session.Manager
	logger  *slog.Logger
}

func NewSessionHandler(manager *session.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		logger:  logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		respondError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, sessionID)
		case http.MethodDelete:
			h.handleDelete(w, r, sessionID)
		default:
			respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}

	case len(parts) == 2 && parts[1] == "events":
		if r.Method != http.MethodPost {
			respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleApplyEvent(w, r, sessionID)

	case len(parts) == 3 && parts[1] == "bounty" && parts[2] == "pay":
		if r.Method != http.MethodPost {
			respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handlePayBounty(w, r, sessionID)

	case len(parts) == 4 && parts[1] == "encounters":
		if r.Method != http.MethodPost {
			respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleEncounterAction(w, r, sessionID, parts[2], parts[3])

	default:
		respondError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new session")

	ss, err := h.manager.CreateSession(r.Context())
	if err != nil {
		h.logger.Error("Failed to create session", "error", err)
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, ss)
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	ss, err := h.manager.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			h.logger.Warn("Session not found", "id", sessionID.String())
			respondError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to load session", "error", err, "id", sessionID.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, ss)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	if err := h.manager.DeleteSession(r.Context(), sessionID); err != nil {
		h.logger.Error("Failed to delete session", "error", err, "id", sessionID.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	h.logger.Debug("Session deleted", "id", sessionID.String())
	w.WriteHeader(http.StatusNoContent)
}
