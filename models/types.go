// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Version is served verbatim by GET /
const Version = "version 0.0.2"

// Store type constants
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Request types

// Pointers let the handler tell a missing field from an empty string.
type VoteRequest struct {
	PollID *string `json:"poll_id"`
	Choice *string `json:"choice"`
}

// Response types

type VoteResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// choice -> count
type ResultsResponse struct {
	PollID string           `json:"poll_id"`
	Counts map[string]int64 `json:"counts"`
}

// Pushed to websocket subscribers after every recorded vote
type TallyUpdate struct {
	PollID string `json:"poll_id"`
	Choice string `json:"choice"`
	Count  int64  `json:"count"`
}

// Event types

type VoteEvent struct {
	ID         string    `json:"id"`
	PollID     string    `json:"poll_id"`
	Choice     string    `json:"choice"`
	Count      int64     `json:"count"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
