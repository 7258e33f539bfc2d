// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package events publishes a VoteEvent for every recorded vote.
//
// With RABBITMQ_URL set, Connect returns an AMQPPublisher that sends JSON
// events to a durable queue (default "votes"). Without it, main uses
// NopPublisher. Publishing never affects the vote response.
package events
