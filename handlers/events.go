// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/syncup/auth"
	"github.com/danielhkuo/syncup/cliparse"
	"github.com/danielhkuo/syncup/db"
	"github.com/danielhkuo/syncup/middleware"
	"github.com/danielhkuo/syncup/models"
	"github.com/danielhkuo/syncup/schedule"
)

type EventHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewEventHandler(conn *sql.DB, cfg cliparse.Config) *EventHandler {
	return &EventHandler{store: db.NewStore(conn), cfg: cfg}
}

// CreateEvent handles POST /api/events
// Creates an event in setup phase and links the host as a participant
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.HostID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "hostId is required")
		return
	}
	if err := auth.ValidateUserID(req.HostID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "hostId is invalid")
		return
	}
	if req.Duration < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "duration must be positive")
		return
	}

	ev, err := h.store.CreateEvent(r.Context(), req.Name, req.Duration, req.HostID)
	if err != nil {
		slog.Error("failed to create event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	// Link failures don't fail the create; the event itself is usable
	if err := h.store.LinkParticipant(r.Context(), req.HostID, ev.ID, models.RoleHost); err != nil {
		slog.Error("failed to link host to event", "error", err, "event_id", ev.ID)
	}

	slog.Info("event created", "event_id", ev.ID, "duration", ev.Duration)

	middleware.JSONResponse(w, http.StatusCreated, ev)
}

// GetEvent handles GET /api/events/{id}
// Returns the event with every user's response set
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}

	ev, err := h.store.GetEvent(r.Context(), eventID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		slog.Error("failed to load event", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ev)
}

// UpdateEvent handles PATCH /api/events/{id}
// Applies definedSlots, setupComplete and any responses.<uid> entries
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}

	var req models.UpdateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if bad := firstInvalidSlot(req.DefinedSlots); bad != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid slot id: "+bad)
		return
	}
	for userID, slots := range req.Responses {
		if err := auth.ValidateUserID(userID); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid user id in responses")
			return
		}
		if bad := firstInvalidSlot(slots); bad != "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid slot id: "+bad)
			return
		}
	}

	err := h.store.UpdateEvent(r.Context(), eventID, req)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		slog.Error("failed to update event", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update event")
		return
	}

	for userID := range req.Responses {
		if err := h.store.LinkParticipant(r.Context(), userID, eventID, models.RoleInvitee); err != nil {
			slog.Error("failed to link participant", "error", err, "event_id", eventID)
		}
	}

	if req.SetupComplete != nil && *req.SetupComplete {
		slog.Info("event setup finalized", "event_id", eventID)
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// DeleteEvent handles DELETE /api/events/{id}
// Removes the event with its responses; deleting twice is not an error
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if err := auth.ValidateEventID(eventID); err != nil {
		// Nothing by that id can exist
		middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
		return
	}

	if err := h.store.DeleteEvent(r.Context(), eventID); err != nil {
		slog.Error("failed to delete event", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}

	slog.Info("event deleted", "event_id", eventID)

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// eventIDFromPath reads the {id} path value. An id that fails validation can
// never name an event, so it gets the same 404 as an unknown one.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("id")
	if err := auth.ValidateEventID(eventID); err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return "", false
	}
	return eventID, true
}

// firstInvalidSlot returns the first malformed slot id, or "" if all are valid
func firstInvalidSlot(slots []string) string {
	for _, s := range slots {
		if !schedule.ValidSlot(s) {
			if s == "" {
				return `""`
			}
			return s
		}
	}
	return ""
}
