// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the tally API.

# Handler Types

  - VoteHandler: records votes (POST /vote)
  - ResultsHandler: per-poll counts (GET /polls/{poll_id}/results)
  - WebSocketHandler: live tally feed (GET /ws)
  - Version, Health: static probes (GET /, GET /health)

Handlers receive their dependencies through constructors; the store handle
is owned by main and never global:

	voteHandler := handlers.NewVoteHandler(store, picker, publisher, hub)

# Vote Flow

	POST /vote {"poll_id": "p1", "choice": "red"}

 1. Decode the body. Invalid JSON or trailing data is 400; a missing,
    duplicated, mis-cased or non-string field is 422.
    Empty strings are accepted.
 2. Increment the counter for "poll:p1:red" in the store (one atomic call).
 3. Broadcast a TallyUpdate to websocket subscribers and publish a VoteEvent.
    Neither can fail the request.
 4. Answer {"status": "...", "count": N} with 200.

The status is "Vote for p1 recorded", or with the picker's legend rate
(0.1 by default) "Vote for p1 counted, Fort Atkinson legend!".

Once decoded, a vote is counted even if the client disconnects: the store
call runs on a context detached from request cancellation.
*/
package handlers
