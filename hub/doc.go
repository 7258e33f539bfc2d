// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package hub pushes live tally updates to websocket subscribers.

Clients subscribe to a single poll. After each recorded vote the vote handler
calls Broadcast, and every subscriber of that poll receives:

	{"poll_id": "p1", "choice": "red", "count": 3}

Broadcast never blocks the vote path; when the queue is full the update is
dropped and logged. Clients that fail a write are closed and removed.

	h := hub.New()
	go h.Run(ctx)
*/
package hub
