// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-tally/middleware"
	"github.com/danielhkuo/quickly-tally/models"
	"github.com/danielhkuo/quickly-tally/tally"
)

type ResultsHandler struct {
	store tally.Store
}

func NewResultsHandler(store tally.Store) *ResultsHandler {
	return &ResultsHandler{store: store}
}

// GetResults handles GET /polls/{poll_id}/results
// Polls have no lifecycle, so an unknown poll is an empty tally rather than a 404
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("poll_id")

	counts, err := h.store.Counts(r.Context(), pollID)
	if err != nil {
		middleware.Logger(r.Context()).Error("failed to read tallies", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		PollID: pollID,
		Counts: counts,
	})
}
