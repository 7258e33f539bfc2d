// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the tally API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Deps{Store: store, Picker: picker, Publisher: pub, Hub: h})

# Endpoints

	GET  /                        - Version string ("version 0.0.2")
	GET  /health                  - Liveness probe ("OK")
	POST /vote                    - Record a vote, returns {status, count}
	GET  /polls/{poll_id}/results - Current counts per choice
	GET  /ws?poll_id=...          - Websocket feed of tally updates (when Hub is set)

Any other path returns the mux's default 404; a known path with the wrong
method returns 405.

# Handler Initialization

Handlers receive the store handle owned by main, so no state is global:

	voteHandler := handlers.NewVoteHandler(deps.Store, deps.Picker, deps.Publisher, deps.Hub)
	resultsHandler := handlers.NewResultsHandler(deps.Store)
*/
package router
