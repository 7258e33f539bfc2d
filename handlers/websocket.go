// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickly-tally/hub"
	"github.com/danielhkuo/quickly-tally/middleware"
	"github.com/danielhkuo/quickly-tally/models"
	"github.com/danielhkuo/quickly-tally/tally"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Subscriptions manages per-poll websocket clients. *hub.Hub satisfies it.
type Subscriptions interface {
	Register(pollID string, client hub.Client)
	Unregister(pollID string, client hub.Client)
}

type WebSocketHandler struct {
	subs  Subscriptions
	store tally.Store
}

func NewWebSocketHandler(subs Subscriptions, store tally.Store) *WebSocketHandler {
	return &WebSocketHandler{subs: subs, store: store}
}

// Subscribe handles GET /ws?poll_id=...
// Sends the current results, then one TallyUpdate per recorded vote on the poll.
func (h *WebSocketHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	logger := middleware.Logger(r.Context())

	pollID := r.URL.Query().Get("poll_id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id query parameter is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := hub.NewWebsocketClient(conn)

	// Register before the snapshot so no update falls between them
	h.subs.Register(pollID, client)
	defer h.subs.Unregister(pollID, client)

	counts, err := h.store.Counts(r.Context(), pollID)
	if err != nil {
		logger.Error("failed to read initial tallies", "error", err, "poll_id", pollID)
	} else if initial, err := json.Marshal(models.ResultsResponse{PollID: pollID, Counts: counts}); err == nil {
		client.WriteMessage(websocket.TextMessage, initial)
	}

	// Keep the connection alive until the client goes away
	for {
		if _, _, err := client.ReadMessage(); err != nil {
			break
		}
	}
}
