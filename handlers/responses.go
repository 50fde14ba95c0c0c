// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/syncup/auth"
	"github.com/danielhkuo/syncup/cliparse"
	"github.com/danielhkuo/syncup/db"
	"github.com/danielhkuo/syncup/middleware"
	"github.com/danielhkuo/syncup/models"
)

type ResponseHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewResponseHandler(conn *sql.DB, cfg cliparse.Config) *ResponseHandler {
	return &ResponseHandler{store: db.NewStore(conn), cfg: cfg}
}

// SubmitResponse handles POST /api/events/{id}/response
// Replaces the user's whole response set
func (h *ResponseHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}

	var req models.SubmitResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}
	if err := auth.ValidateUserID(req.UserID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is invalid")
		return
	}
	if req.Slots == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slots is required")
		return
	}
	if bad := firstInvalidSlot(req.Slots); bad != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid slot id: "+bad)
		return
	}

	err := h.store.UpsertResponse(r.Context(), eventID, req.UserID, req.Slots)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		slog.Error("failed to store response", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save response")
		return
	}

	if err := h.store.LinkParticipant(r.Context(), req.UserID, eventID, models.RoleInvitee); err != nil {
		slog.Error("failed to link participant", "error", err, "event_id", eventID)
	}

	slog.Debug("response stored", "event_id", eventID, "slots", len(req.Slots))

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
