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

type ParticipantHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewParticipantHandler(conn *sql.DB, cfg cliparse.Config) *ParticipantHandler {
	return &ParticipantHandler{store: db.NewStore(conn), cfg: cfg}
}

// GetMyEvents handles GET /api/participants/me/events
// Returns events this user hosts or answered, newest link first
func (h *ParticipantHandler) GetMyEvents(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(middleware.UserIDHeader)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-User-ID header required")
		return
	}
	if err := auth.ValidateUserID(userID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-User-ID is invalid")
		return
	}

	events, err := h.store.ListParticipantEvents(r.Context(), userID)
	if errors.Is(err, db.ErrUnknownParticipant) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Participant not registered")
		return
	}
	if err != nil {
		slog.Error("failed to list participant events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.GetMyEventsResponse{Events: events})
}
