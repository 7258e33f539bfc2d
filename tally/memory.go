// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"sync"
)

// MemoryStore keeps counters in a map guarded by a single mutex.
// Counters live as long as the process.
type MemoryStore struct {
	mu     sync.Mutex
	counts map[string]int64
	// pollID -> choices seen, for Counts
	choices map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counts:  make(map[string]int64),
		choices: make(map[string]map[string]struct{}),
	}
}

// Increment never fails and does not observe ctx; it blocks until the lock is free.
func (s *MemoryStore) Increment(_ context.Context, pollID, choice string) (int64, error) {
	key := Key(pollID, choice)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[key]++

	seen, ok := s.choices[pollID]
	if !ok {
		seen = make(map[string]struct{})
		s.choices[pollID] = seen
	}
	seen[choice] = struct{}{}

	return s.counts[key], nil
}

func (s *MemoryStore) Counts(_ context.Context, pollID string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int64, len(s.choices[pollID]))
	for choice := range s.choices[pollID] {
		counts[choice] = s.counts[Key(pollID, choice)]
	}
	return counts, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
