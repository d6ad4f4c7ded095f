package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Unity-Lab-AI/Trader-sub008/internal/session"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
)

// PayBountyRequest carries a bounty payment. WalletGold states what the
// caller can spend; the engine does not track the player's purse.
type PayBountyRequest struct {
	Amount     int `json:"amount"`
	WalletGold int `json:"wallet_gold"`
}

// PayBountyResponse reports the post-payment bounty and remaining funds.
type PayBountyResponse struct {
	Session       *state.SessionState `json:"session"`
	RemainingGold int                 `json:"remaining_gold"`
}

func (h *SessionHandler) handlePayBounty(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	var req PayBountyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		respondError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Amount <= 0 {
		respondError(w, h.logger, http.StatusBadRequest, "amount must be positive")
		return
	}

	ss, remaining, err := h.manager.PayBounty(r.Context(), sessionID, req.Amount, req.WalletGold)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			respondError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		if errors.Is(err, reputation.ErrInsufficientFunds) {
			respondError(w, h.logger, http.StatusPaymentRequired, "Insufficient funds to pay bounty")
			return
		}
		h.logger.Error("Failed to pay bounty", "error", err, "id", sessionID.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to pay bounty")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, PayBountyResponse{Session: ss, RemainingGold: remaining})
}
