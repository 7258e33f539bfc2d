// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickly-tally/models"
)

const (
	// broadcastBuffer bounds pending updates; past it updates are dropped
	broadcastBuffer = 256

	// sendBuffer bounds the messages queued for one client. A client that
	// falls this far behind is disconnected.
	sendBuffer = 16
)

type subscription struct {
	pollID string
	client Client
}

// subscriber owns the outbound queue of one client; writePump drains it
type subscriber struct {
	pollID string
	client Client
	send   chan []byte
}

type tallyKey struct {
	pollID string
	choice string
}

// Hub fans tally updates out to the websocket clients subscribed to each poll.
// All client bookkeeping happens on the Run goroutine; each client is written
// to by its own writePump goroutine.
type Hub struct {
	register   chan subscription
	unregister chan subscription
	broadcast  chan models.TallyUpdate
	done       chan struct{}

	// pollID -> subscribers
	clients map[string]map[Client]*subscriber

	// highest count sent per tally; votes can be queued out of order
	latest map[tallyKey]int64
}

func New() *Hub {
	return &Hub{
		register:   make(chan subscription),
		unregister: make(chan subscription),
		broadcast:  make(chan models.TallyUpdate, broadcastBuffer),
		done:       make(chan struct{}),
		clients:    make(map[string]map[Client]*subscriber),
		latest:     make(map[tallyKey]int64),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled,
// then closes every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for pollID, subs := range h.clients {
				for client := range subs {
					h.remove(pollID, client)
				}
			}
			return

		case sub := <-h.register:
			subs, ok := h.clients[sub.pollID]
			if !ok {
				subs = make(map[Client]*subscriber)
				h.clients[sub.pollID] = subs
			}
			if _, ok := subs[sub.client]; ok {
				continue
			}
			s := &subscriber{pollID: sub.pollID, client: sub.client, send: make(chan []byte, sendBuffer)}
			subs[sub.client] = s
			go h.writePump(s)

		case sub := <-h.unregister:
			h.remove(sub.pollID, sub.client)

		case update := <-h.broadcast:
			h.send(update)
		}
	}
}

func (h *Hub) send(update models.TallyUpdate) {
	key := tallyKey{pollID: update.PollID, choice: update.Choice}
	if last, ok := h.latest[key]; ok && update.Count <= last {
		return
	}
	h.latest[key] = update.Count

	subs := h.clients[update.PollID]
	if len(subs) == 0 {
		return
	}

	message, err := json.Marshal(update)
	if err != nil {
		slog.Error("failed to encode tally update", "error", err)
		return
	}

	for client, s := range subs {
		select {
		case s.send <- message:
		default:
			slog.Warn("dropping slow websocket client", "poll_id", update.PollID)
			h.remove(update.PollID, client)
		}
	}
}

// writePump delivers queued messages to one client until its queue is closed.
// After a failed write the client is unregistered and the rest of the queue discarded.
func (h *Hub) writePump(s *subscriber) {
	failed := false
	for message := range s.send {
		if failed {
			continue
		}
		if err := s.client.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Warn("dropping websocket client", "poll_id", s.pollID, "error", err)
			failed = true
			h.Unregister(s.pollID, s.client)
		}
	}
}

func (h *Hub) remove(pollID string, client Client) {
	subs, ok := h.clients[pollID]
	if !ok {
		return
	}
	s, ok := subs[client]
	if !ok {
		return
	}
	delete(subs, client)
	close(s.send)
	client.Close()
	if len(subs) == 0 {
		delete(h.clients, pollID)
	}
}

// Register subscribes client to updates for pollID. No-op once Run has stopped.
func (h *Hub) Register(pollID string, client Client) {
	select {
	case h.register <- subscription{pollID: pollID, client: client}:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes and closes client. No-op once Run has stopped.
func (h *Hub) Unregister(pollID string, client Client) {
	select {
	case h.unregister <- subscription{pollID: pollID, client: client}:
	case <-h.done:
	}
}

// Broadcast queues update without blocking. It reports false when the update was dropped.
func (h *Hub) Broadcast(update models.TallyUpdate) bool {
	select {
	case h.broadcast <- update:
		return true
	default:
		slog.Warn("tally update dropped, hub queue full", "poll_id", update.PollID)
		return false
	}
}
