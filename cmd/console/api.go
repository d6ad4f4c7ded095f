package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/Unity-Lab-AI/Trader-sub008/internal/session"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/game"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
)

// ErrorResponse matches the API error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ApplyEventResponse matches the API response for an applied event.
type ApplyEventResponse struct {
	Outcome *session.EventOutcome `json:"outcome"`
	Session *state.SessionState   `json:"session"`
}

// PayBountyResponse matches the API response for a bounty payment.
type PayBountyResponse struct {
	Session       *state.SessionState `json:"session"`
	RemainingGold int                 `json:"remaining_gold"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func createSession(client *http.Client, baseURL string) (*state.SessionState, error) {
	resp, err := client.Post(baseURL+"/v1/sessions", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to create session: %s", errorResp.Error)
	}

	var ss state.SessionState
	if err := json.Unmarshal(body, &ss); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &ss, nil
}

func getSession(client *http.Client, baseURL string, sessionID uuid.UUID) (*state.SessionState, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get session: %s", errorResp.Error)
	}

	var ss state.SessionState
	if err := json.Unmarshal(body, &ss); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &ss, nil
}

func applyEvent(client *http.Client, baseURL string, sessionID uuid.UUID, ev game.Event) (*ApplyEventResponse, error) {
	env, err := game.Wrap(ev)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/sessions/%s/events", baseURL, sessionID),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to apply event: %s", errorResp.Error)
	}

	var applyResp ApplyEventResponse
	if err := json.Unmarshal(body, &applyResp); err != nil {
		return nil, fmt.Errorf("failed to parse event response: %w", err)
	}
	return &applyResp, nil
}

func encounterAction(client *http.Client, baseURL string, sessionID uuid.UUID, encounterID, action string, resolution encounter.Resolution) (*state.SessionState, error) {
	reqBody := map[string]string{}
	if resolution != "" {
		reqBody["resolution"] = string(resolution)
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/sessions/%s/encounters/%s/%s", baseURL, sessionID, encounterID, action),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("encounter %s failed: %s", action, errorResp.Error)
	}

	var ss state.SessionState
	if err := json.Unmarshal(body, &ss); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &ss, nil
}

func resolveEncounter(client *http.Client, baseURL string, sessionID uuid.UUID, encounterID string, resolution encounter.Resolution) (*state.SessionState, error) {
	return encounterAction(client, baseURL, sessionID, encounterID, "resolve", resolution)
}

func dismissEncounter(client *http.Client, baseURL string, sessionID uuid.UUID, encounterID string) (*state.SessionState, error) {
	return encounterAction(client, baseURL, sessionID, encounterID, "dismiss", "")
}

func payBounty(client *http.Client, baseURL string, sessionID uuid.UUID, amount, walletGold int) (*PayBountyResponse, error) {
	reqBody := map[string]int{
		"amount":      amount,
		"wallet_gold": walletGold,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/sessions/%s/bounty/pay", baseURL, sessionID),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to pay bounty: %s", errorResp.Error)
	}

	var payResp PayBountyResponse
	if err := json.Unmarshal(body, &payResp); err != nil {
		return nil, fmt.Errorf("failed to parse bounty response: %w", err)
	}
	return &payResp, nil
}
