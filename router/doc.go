// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the syncup API.

# Route Registration

NewRouter creates the handler for all endpoints, wrapped with CORS and the
per-IP rate limiter:

	handler := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Events:

	POST   /api/events      - Create event (setup phase)
	GET    /api/events/{id} - Event with all responses
	PATCH  /api/events/{id} - definedSlots, setupComplete, responses.<uid>
	DELETE /api/events/{id} - Delete event and its responses

Responses:

	POST /api/events/{id}/response - Replace one user's response set

Grid:

	GET /api/events/{id}/grid?viewer=<uid>&week=<YYYY-MM-DD>

Calendar export:

	GET /api/events/{id}/calendar.ics[?best=1]

Participants (requires X-User-ID):

	GET /api/participants/me/events

# Handler Initialization

The router creates handler instances with dependency injection:

	eventHandler := handlers.NewEventHandler(db, cfg)
	responseHandler := handlers.NewResponseHandler(db, cfg)
	gridHandler := handlers.NewGridHandler(db, cfg)
	participantHandler := handlers.NewParticipantHandler(db, cfg)
	calendarHandler := handlers.NewCalendarHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
