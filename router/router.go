// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/syncup/cliparse"
	"github.com/danielhkuo/syncup/handlers"
	"github.com/danielhkuo/syncup/middleware"
)

// NewRouter registers every route and wraps the mux with CORS and per-IP
// rate limiting
func NewRouter(db *sql.DB, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(db, cfg)
	responseHandler := handlers.NewResponseHandler(db, cfg)
	gridHandler := handlers.NewGridHandler(db, cfg)
	participantHandler := handlers.NewParticipantHandler(db, cfg)
	calendarHandler := handlers.NewCalendarHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Events
	mux.HandleFunc("POST /api/events", middleware.WithLogging(eventHandler.CreateEvent))
	mux.HandleFunc("GET /api/events/{id}", middleware.WithLogging(eventHandler.GetEvent))
	mux.HandleFunc("PATCH /api/events/{id}", middleware.WithLogging(eventHandler.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{id}", middleware.WithLogging(eventHandler.DeleteEvent))

	// Responses
	mux.HandleFunc("POST /api/events/{id}/response", middleware.WithLogging(responseHandler.SubmitResponse))

	// Derived grid for one viewer
	mux.HandleFunc("GET /api/events/{id}/grid", middleware.WithLogging(gridHandler.GetGrid))
	mux.HandleFunc("GET /api/events/{id}/calendar.ics", middleware.WithLogging(calendarHandler.ExportICS))

	// Participants
	mux.HandleFunc("GET /api/participants/me/events", middleware.WithLogging(participantHandler.GetMyEvents))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("syncup API v1"))
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	return middleware.CORS(limiter.Middleware(mux))
}
