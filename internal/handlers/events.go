package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Unity-Lab-AI/Trader-sub008/internal/session"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/game"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
)

// ApplyEventResponse is the outcome of applying one game event.
type ApplyEventResponse struct {
	Outcome *session.EventOutcome `json:"outcome"`
	Session *state.SessionState   `json:"session"`
}

func (h *SessionHandler) handleApplyEvent(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	var env game.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		respondError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if env.EventType == "" {
		respondError(w, h.logger, http.StatusBadRequest, "type field is required")
		return
	}

	out, ss, err := h.manager.ApplyEvent(r.Context(), sessionID, env)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			respondError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		if _, uerr := env.Unwrap(); uerr != nil {
			h.logger.Warn("Unknown event type", "type", env.EventType)
			respondError(w, h.logger, http.StatusBadRequest, "Unknown event type: "+string(env.EventType))
			return
		}
		h.logger.Error("Failed to apply event", "error", err, "id", sessionID.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to apply event")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, ApplyEventResponse{Outcome: out, Session: ss})
}

// EncounterActionRequest carries a resolution choice for an encounter.
type EncounterActionRequest struct {
	Resolution string `json:"resolution,omitempty"`
}

func (h *SessionHandler) handleEncounterAction(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID, encounterID, action string) {
	var ss *state.SessionState
	var err error

	switch action {
	case "resolve":
		var req EncounterActionRequest
		if derr := json.NewDecoder(r.Body).Decode(&req); derr != nil {
			h.logger.Warn("Invalid JSON in request body", "error", derr)
			respondError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
		resolution := encounter.Resolution(req.Resolution)
		if !encounter.ValidResolution(resolution) {
			respondError(w, h.logger, http.StatusBadRequest, "Invalid resolution: "+req.Resolution)
			return
		}
		ss, err = h.manager.ResolveEncounter(r.Context(), sessionID, encounterID, resolution)

	case "dismiss":
		ss, err = h.manager.DismissEncounter(r.Context(), sessionID, encounterID)

	default:
		respondError(w, h.logger, http.StatusNotFound, "Unknown encounter action: "+action)
		return
	}

	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			respondError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Warn("Encounter action failed", "error", err, "encounter_id", encounterID)
		respondError(w, h.logger, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, h.logger, http.StatusOK, ss)
}
