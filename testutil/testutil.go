// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/danielhkuo/quickly-tally/db"
	"github.com/danielhkuo/quickly-tally/models"
	"github.com/danielhkuo/quickly-tally/status"
	"github.com/danielhkuo/quickly-tally/tally"
)

// FixedSource always draws the same value, pinning the status message
type FixedSource float64

func (f FixedSource) Float64() float64 { return float64(f) }

// RecordedPicker never picks the legend message
func RecordedPicker() *status.Picker {
	return status.NewPicker(0.1, FixedSource(0.99))
}

// LegendPicker always picks the legend message
func LegendPicker() *status.Picker {
	return status.NewPicker(0.1, FixedSource(0))
}

// NewSQLiteStore creates a SQL tally store backed by a temp-dir SQLite file
func NewSQLiteStore(t *testing.T) *tally.SQLStore {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	store := tally.NewSQLStore(conn)
	t.Cleanup(func() { store.Close() })
	return store
}

// RecordingPublisher keeps every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []models.VoteEvent
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, event models.VoteEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, event)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Published returns a copy of the recorded events
func (p *RecordingPublisher) Published() []models.VoteEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.VoteEvent(nil), p.Events...)
}

// VoteBody builds a POST /vote body
func VoteBody(pollID, choice string) map[string]string {
	return map[string]string{"poll_id": pollID, "choice": choice}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
