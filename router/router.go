// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-tally/events"
	"github.com/danielhkuo/quickly-tally/handlers"
	"github.com/danielhkuo/quickly-tally/hub"
	"github.com/danielhkuo/quickly-tally/middleware"
	"github.com/danielhkuo/quickly-tally/status"
	"github.com/danielhkuo/quickly-tally/tally"
)

// Deps are the long-lived components built by main
type Deps struct {
	Store     tally.Store
	Picker    *status.Picker
	Publisher events.Publisher
	Hub       *hub.Hub
}

func NewRouter(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	var updates handlers.Broadcaster
	if deps.Hub != nil {
		updates = deps.Hub
	}
	voteHandler := handlers.NewVoteHandler(deps.Store, deps.Picker, deps.Publisher, updates)
	resultsHandler := handlers.NewResultsHandler(deps.Store)

	// Version root; {$} keeps unknown paths on the default 404
	mux.HandleFunc("GET /{$}", handlers.Version)

	// Health check
	mux.HandleFunc("GET /health", handlers.Health)

	// Voting
	mux.HandleFunc("POST /vote", middleware.WithLogging(voteHandler.SubmitVote))

	// Results
	mux.HandleFunc("GET /polls/{poll_id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Live updates
	if deps.Hub != nil {
		wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.Store)
		mux.HandleFunc("GET /ws", middleware.WithLogging(wsHandler.Subscribe))
	}

	return mux
}
