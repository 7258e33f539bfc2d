// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-tally/events"
	"github.com/danielhkuo/quickly-tally/middleware"
	"github.com/danielhkuo/quickly-tally/models"
	"github.com/danielhkuo/quickly-tally/status"
	"github.com/danielhkuo/quickly-tally/tally"
)

const publishTimeout = 2 * time.Second

// Broadcaster receives a TallyUpdate after every recorded vote. *hub.Hub satisfies it.
type Broadcaster interface {
	Broadcast(update models.TallyUpdate) bool
}

type VoteHandler struct {
	store     tally.Store
	picker    *status.Picker
	publisher events.Publisher
	updates   Broadcaster
}

// NewVoteHandler wires the vote path. publisher and updates may be nil.
func NewVoteHandler(store tally.Store, picker *status.Picker, publisher events.Publisher, updates Broadcaster) *VoteHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &VoteHandler{store: store, picker: picker, publisher: publisher, updates: updates}
}

// SubmitVote handles POST /vote
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	logger := middleware.Logger(r.Context())

	// Parse request
	var raw json.RawMessage
	if err := middleware.ParseJSONBody(r, &raw); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req, err := decodeVote(raw)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// Empty strings are valid; only absent fields are rejected
	if req.PollID == nil {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "poll_id is required")
		return
	}
	if req.Choice == nil {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "choice is required")
		return
	}
	pollID, choice := *req.PollID, *req.Choice

	logger.Info("vote received", "poll_id", pollID, "choice", choice)

	// A vote that started runs to completion even if the client goes away
	ctx := context.WithoutCancel(r.Context())

	count, err := h.store.Increment(ctx, pollID, choice)
	if err != nil {
		logger.Error("failed to record vote", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	if h.updates != nil {
		h.updates.Broadcast(models.TallyUpdate{PollID: pollID, Choice: choice, Count: count})
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := h.publisher.Publish(pubCtx, events.NewVoteEvent(pollID, choice, count)); err != nil {
		logger.Warn("failed to publish vote event", "error", err, "poll_id", pollID)
	}

	resp := models.VoteResponse{
		Status: h.picker.Message(pollID),
		Count:  count,
	}

	logger.Info("vote recorded", "status", resp.Status, "count", resp.Count)

	middleware.JSONResponse(w, http.StatusOK, resp)
}
