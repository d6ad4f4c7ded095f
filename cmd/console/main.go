package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
)

func main() {
	defaultURL := os.Getenv("API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	apiURL := flag.String("api", defaultURL, "Base URL of the encounter engine API")
	sessionID := flag.String("session", "", "Resume an existing session by ID instead of creating one")
	flag.Parse()

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	fmt.Printf("Connecting to %s ...\n", *apiURL)
	if !testConnection(client, *apiURL) {
		fmt.Fprintf(os.Stderr, "Could not reach the API at %s. Is it running?\n", *apiURL)
		os.Exit(1)
	}

	var session *state.SessionState
	var err error
	if *sessionID != "" {
		id, perr := uuid.Parse(*sessionID)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Invalid session ID %q: %v\n", *sessionID, perr)
			os.Exit(1)
		}
		session, err = getSession(client, *apiURL, id)
	} else {
		session, err = createSession(client, *apiURL)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start session: %v\n", err)
		os.Exit(1)
	}

	ui := NewConsoleUI(client, *apiURL, session)
	p := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Console error: %v\n", err)
		os.Exit(1)
	}
}
