// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("POST /vote", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). Every request gets an id, taken from X-Request-ID when the
caller sends one, otherwise a new UUID. The id is echoed in the response
header and attached to the request-scoped logger:

	logger := middleware.Logger(r.Context())
	logger.Info("vote received", "poll_id", pollID)

# CORS Middleware

Enable cross-origin requests for dashboards:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type and X-Request-ID.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies. Anything after the first JSON value is ErrTrailingData:

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
