// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the syncup API.

# Handler Types

Each handler is a struct with store and config dependencies:

  - EventHandler: Event lifecycle (create, read, patch, delete)
  - ResponseHandler: Per-user response submission
  - GridHandler: Server-side week projection with vote tallies
  - ParticipantHandler: "My events" lookup by user id
  - CalendarHandler: iCalendar export of candidate slots

Handlers are created via constructor functions that accept *sql.DB and Config:

	eventHandler := handlers.NewEventHandler(db, cfg)

# Event Lifecycle

Events start in setup phase. The host picks candidate slots, then finalizes:

	POST   /api/events       → CreateEvent (definedSlots=[], setupComplete=false)
	PATCH  /api/events/{id}  → UpdateEvent (definedSlots, setupComplete, responses.<uid>)
	DELETE /api/events/{id}  → DeleteEvent (removes responses too)

A PATCH body routes each "responses.<uid>" key to that user's response row,
independently of the event row. Unknown keys are ignored.

# Responses

	POST /api/events/{id}/response → SubmitResponse ({userId, slots})

The whole set is replaced. Rows are keyed by (event, user), so writers for
different users never conflict; the last write for one user wins.

# Grid

	GET /api/events/{id}/grid?viewer=<uid>&week=<YYYY-MM-DD>

Returns the 7×28 slot grid for one week with vote counts, indicators, and
selectability for the viewer. Toggle rules themselves run in the client.

# Calendar Export

	GET /api/events/{id}/calendar.ics → ExportICS

One VEVENT per candidate slot with floating start and end times, since slot
ids carry no zone. ?best=1 keeps only the slots with the most votes.

# Participants

	GET /api/participants/me/events

Requires the X-User-ID header.
*/
package handlers
