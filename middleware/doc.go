// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start at debug level and completion (status, duration_ms).
Successful GETs are logged at debug level because clients poll every few
seconds.

# CORS Middleware

Enable cross-origin requests for frontend access:

	handler := middleware.CORS(mux)

Allows methods GET, POST, PATCH, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-User-ID.

# Rate Limiting

One token bucket per client IP:

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	handler := limiter.Middleware(mux)

Requests over the limit get 429 with a JSON error body. A zero rate turns
limiting off. Buckets idle for ten minutes are dropped.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used as the rate limiter key.
*/
package middleware
