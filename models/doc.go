// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateEventRequest: name, duration, hostId
  - UpdateEventRequest: definedSlots, setupComplete, responses.<uid>
  - SubmitResponseRequest: userId, slots

UpdateEventRequest has custom JSON handling. Per-user response sets are sent
as flattened keys so a host can persist its candidate slots and its own
response in one PATCH:

	{"definedSlots": ["2024-01-08T09:00:00"], "responses.u1": ["2024-01-08T09:00:00"]}

Unrecognized keys are ignored.

# Response Types

  - SuccessResponse: success
  - GetMyEventsResponse: events linked to a participant
  - GridResponse: projected week with per-slot availability
  - ErrorResponse: error, message

# Domain Types

  - Event: host, candidate slots, setup flag, per-user responses
  - ParticipantEventSummary: an event as seen from a participant's history
  - HistoryEntry: a "recent events" item kept by the client

# Constants

Participant roles:

	RoleHost    = "host"
	RoleInvitee = "invitee"
*/
package models
