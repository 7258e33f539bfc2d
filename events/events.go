// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-tally/models"
)

// Publisher announces recorded votes to other services
type Publisher interface {
	Publish(ctx context.Context, event models.VoteEvent) error
	Close() error
}

// NewVoteEvent stamps a recorded vote with a fresh id and time
func NewVoteEvent(pollID, choice string, count int64) models.VoteEvent {
	return models.VoteEvent{
		ID:         uuid.NewString(),
		PollID:     pollID,
		Choice:     choice,
		Count:      count,
		RecordedAt: time.Now().UTC(),
	}
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.VoteEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
