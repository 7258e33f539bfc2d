// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and event types for the API.

# Request Types

  - VoteRequest: poll_id, choice (pointers, so a missing field is detectable)

# Response Types

  - VoteResponse: status, count
  - ResultsResponse: poll_id, counts (choice -> count)
  - TallyUpdate: poll_id, choice, count (websocket push)
  - ErrorResponse: error, message

# Event Types

  - VoteEvent: id, poll_id, choice, count, recorded_at (AMQP body)

# Constants

	Version = "version 0.0.2"

Store types:

	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
*/
package models
