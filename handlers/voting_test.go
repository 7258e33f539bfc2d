package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-tally/models"
	"github.com/danielhkuo/quickly-tally/status"
	"github.com/danielhkuo/quickly-tally/tally"
	"github.com/danielhkuo/quickly-tally/testutil"
)

type failingStore struct{}

func (failingStore) Increment(context.Context, string, string) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingStore) Counts(context.Context, string) (map[string]int64, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Close() error { return nil }

type recordingBroadcaster struct {
	updates []models.TallyUpdate
}

func (b *recordingBroadcaster) Broadcast(u models.TallyUpdate) bool {
	b.updates = append(b.updates, u)
	return true
}

func submit(t *testing.T, h *VoteHandler, pollID, choice string) models.VoteResponse {
	t.Helper()

	req := testutil.MakeRequest("POST", "/vote", testutil.VoteBody(pollID, choice), nil)
	w := httptest.NewRecorder()
	h.SubmitVote(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.VoteResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func TestSubmitVote(t *testing.T) {
	handler := NewVoteHandler(tally.NewMemoryStore(), testutil.RecordedPicker(), nil, nil)

	// Three votes for red count up, blue starts fresh
	for want := int64(1); want <= 3; want++ {
		resp := submit(t, handler, "p1", "red")
		if resp.Count != want {
			t.Errorf("Expected count %d, got %d", want, resp.Count)
		}
		if resp.Status != "Vote for p1 recorded" {
			t.Errorf("Unexpected status '%s'", resp.Status)
		}
	}

	if resp := submit(t, handler, "p1", "blue"); resp.Count != 1 {
		t.Errorf("Expected blue to start at 1, got %d", resp.Count)
	}
}

func TestSubmitVote_KeyIsolation(t *testing.T) {
	handler := NewVoteHandler(tally.NewMemoryStore(), testutil.RecordedPicker(), nil, nil)

	for i := 0; i < 4; i++ {
		submit(t, handler, "A", "x")
	}

	if resp := submit(t, handler, "A", "y"); resp.Count != 1 {
		t.Errorf("A/y should be unaffected by A/x, got %d", resp.Count)
	}
	if resp := submit(t, handler, "B", "x"); resp.Count != 1 {
		t.Errorf("B/x should be unaffected by A/x, got %d", resp.Count)
	}
	if resp := submit(t, handler, "A", "x"); resp.Count != 5 {
		t.Errorf("Expected A/x count 5, got %d", resp.Count)
	}
}

func TestSubmitVote_StatusMessages(t *testing.T) {
	tests := []struct {
		name     string
		picker   *status.Picker
		expected string
	}{
		{"recorded", testutil.RecordedPicker(), "Vote for p1 recorded"},
		{"legend", testutil.LegendPicker(), "Vote for p1 counted, Fort Atkinson legend!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewVoteHandler(tally.NewMemoryStore(), tt.picker, nil, nil)

			resp := submit(t, handler, "p1", "red")
			if resp.Status != tt.expected {
				t.Errorf("Expected status '%s', got '%s'", tt.expected, resp.Status)
			}
			if resp.Count != 1 {
				t.Errorf("Expected count 1, got %d", resp.Count)
			}
		})
	}
}

func TestSubmitVote_EmptyStringsAccepted(t *testing.T) {
	handler := NewVoteHandler(tally.NewMemoryStore(), testutil.RecordedPicker(), nil, nil)

	resp := submit(t, handler, "", "")
	if resp.Count != 1 {
		t.Errorf("Expected count 1, got %d", resp.Count)
	}
	if resp.Status != "Vote for  recorded" {
		t.Errorf("Unexpected status '%s'", resp.Status)
	}
}

func TestSubmitVote_InvalidBodies(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"malformed JSON", `{"poll_id": "p1", "choice":`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
		{"not JSON", `poll_id=p1&choice=red`, http.StatusBadRequest},
		{"missing poll_id", `{"choice":"red"}`, http.StatusUnprocessableEntity},
		{"missing choice", `{"poll_id":"p1"}`, http.StatusUnprocessableEntity},
		{"null body", `null`, http.StatusUnprocessableEntity},
		{"numeric poll_id", `{"poll_id":1,"choice":"red"}`, http.StatusUnprocessableEntity},
		{"array body", `["p1","red"]`, http.StatusUnprocessableEntity},
		{"trailing garbage", `{"poll_id":"p1","choice":"red"} trailing-garbage`, http.StatusBadRequest},
		{"truncated second value", `{"poll_id":"p1","choice":"red"}{"x":`, http.StatusBadRequest},
		{"second object", `{"poll_id":"p1","choice":"red"}{}`, http.StatusBadRequest},
		{"mis-cased keys", `{"POLL_ID":"p1","Choice":"red"}`, http.StatusUnprocessableEntity},
		{"mis-cased extra key", `{"poll_id":"p1","choice":"red","Choice":"blue"}`, http.StatusUnprocessableEntity},
		{"duplicate choice", `{"poll_id":"p1","choice":"red","choice":"blue"}`, http.StatusUnprocessableEntity},
		{"duplicate poll_id", `{"poll_id":"p1","poll_id":"p2","choice":"red"}`, http.StatusUnprocessableEntity},
		{"null choice", `{"poll_id":"p1","choice":null}`, http.StatusUnprocessableEntity},
	}

	store := tally.NewMemoryStore()
	handler := NewVoteHandler(store, testutil.RecordedPicker(), nil, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/vote", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.SubmitVote(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Message == "" {
				t.Error("Expected an error message")
			}
		})
	}

	// Rejected requests never touch the store
	for _, pollID := range []string{"p1", "p2"} {
		counts, _ := store.Counts(context.Background(), pollID)
		if len(counts) != 0 {
			t.Errorf("Expected no tallies for %s after rejected votes, got %v", pollID, counts)
		}
	}
}

func TestSubmitVote_UnknownFieldsIgnored(t *testing.T) {
	store := tally.NewMemoryStore()
	handler := NewVoteHandler(store, testutil.RecordedPicker(), nil, nil)

	body := `{"voter":"anon","poll_id":"p1","meta":{"poll_id":"x"},"choice":"red"}`
	req := httptest.NewRequest("POST", "/vote", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.SubmitVote(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	counts, _ := store.Counts(context.Background(), "p1")
	if counts["red"] != 1 || len(counts) != 1 {
		t.Errorf("Expected p1/red counted once, got %v", counts)
	}
}

func TestSubmitVote_StoreError(t *testing.T) {
	handler := NewVoteHandler(failingStore{}, testutil.RecordedPicker(), nil, nil)

	req := testutil.MakeRequest("POST", "/vote", testutil.VoteBody("p1", "red"), nil)
	w := httptest.NewRecorder()
	handler.SubmitVote(w, req)

	testutil.AssertStatus(t, w, http.StatusInternalServerError)
}

func TestSubmitVote_PublishesAndBroadcasts(t *testing.T) {
	publisher := &testutil.RecordingPublisher{}
	updates := &recordingBroadcaster{}
	handler := NewVoteHandler(tally.NewMemoryStore(), testutil.RecordedPicker(), publisher, updates)

	submit(t, handler, "p1", "red")
	submit(t, handler, "p1", "red")

	events := publisher.Published()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[1].PollID != "p1" || events[1].Choice != "red" || events[1].Count != 2 {
		t.Errorf("Unexpected event: %+v", events[1])
	}
	if events[0].ID == events[1].ID {
		t.Error("Expected distinct event ids")
	}

	if len(updates.updates) != 2 || updates.updates[1].Count != 2 {
		t.Errorf("Unexpected broadcasts: %+v", updates.updates)
	}
}

func TestSubmitVote_PublishFailureIsNotFatal(t *testing.T) {
	publisher := &testutil.RecordingPublisher{Err: errors.New("broker down")}
	handler := NewVoteHandler(tally.NewMemoryStore(), testutil.RecordedPicker(), publisher, nil)

	if resp := submit(t, handler, "p1", "red"); resp.Count != 1 {
		t.Errorf("Expected count 1, got %d", resp.Count)
	}
}

func TestSubmitVote_SQLiteStore(t *testing.T) {
	handler := NewVoteHandler(testutil.NewSQLiteStore(t), testutil.RecordedPicker(), nil, nil)

	for want := int64(1); want <= 3; want++ {
		if resp := submit(t, handler, "p1", "red"); resp.Count != want {
			t.Errorf("Expected count %d, got %d", want, resp.Count)
		}
	}
	if resp := submit(t, handler, "p1", "blue"); resp.Count != 1 {
		t.Errorf("Expected blue to start at 1, got %d", resp.Count)
	}
}

func TestSubmitVote_CancelledRequestStillCounts(t *testing.T) {
	store := tally.NewMemoryStore()
	handler := NewVoteHandler(store, testutil.RecordedPicker(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := testutil.MakeRequest("POST", "/vote", testutil.VoteBody("p1", "red"), nil).WithContext(ctx)
	w := httptest.NewRecorder()
	handler.SubmitVote(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	counts, _ := store.Counts(context.Background(), "p1")
	if counts["red"] != 1 {
		t.Errorf("Expected vote to be counted, got %v", counts)
	}
}
