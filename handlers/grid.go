// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/syncup/cliparse"
	"github.com/danielhkuo/syncup/db"
	"github.com/danielhkuo/syncup/middleware"
	"github.com/danielhkuo/syncup/models"
	"github.com/danielhkuo/syncup/schedule"
)

// GridHandler serves the projected, vote-annotated week for one viewer.
// Slot ids carry no zone, so they are read in the server's local time.
type GridHandler struct {
	store *db.Store
	cfg   cliparse.Config
	now   func() time.Time
}

func NewGridHandler(conn *sql.DB, cfg cliparse.Config) *GridHandler {
	return &GridHandler{store: db.NewStore(conn), cfg: cfg, now: time.Now}
}

// GetGrid handles GET /api/events/{id}/grid?viewer=<uid>&week=<YYYY-MM-DD>
// Without week, shows the week of the earliest candidate slot, else this week
func (h *GridHandler) GetGrid(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}

	now := h.now()
	viewerID := r.URL.Query().Get("viewer")

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

	anchor := now
	if week := r.URL.Query().Get("week"); week != "" {
		anchor, err = time.ParseInLocation(schedule.DateLayout, week, now.Location())
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "week must be YYYY-MM-DD")
			return
		}
	} else if first, _, ok := schedule.InitialView(ev.DefinedSlots, now.Location()); ok {
		anchor = first
	}

	week := schedule.Project(anchor, now)
	grid := schedule.BuildGrid(week, *ev, viewerID, ev.Responses[viewerID], now)

	middleware.JSONResponse(w, http.StatusOK, gridResponse(grid, schedule.CountVotes(ev.Responses).Best()))
}

func gridResponse(grid schedule.Grid, best []string) models.GridResponse {
	resp := models.GridResponse{
		WeekStart:   grid.Week.Start.Format(schedule.DateLayout),
		Headers:     make([]models.DayHeader, 0, len(grid.Week.Days)),
		Rows:        make([]models.GridRow, 0, len(grid.Rows)),
		IsSetupMode: grid.Phase == schedule.PhaseSetup,
		MaxVotes:    grid.MaxVotes,
		BestSlots:   best,
	}

	for _, day := range grid.Week.Days {
		resp.Headers = append(resp.Headers, models.DayHeader{
			Label:   day.Label,
			Date:    day.ISODate,
			IsToday: day.IsToday,
		})
	}

	for _, row := range grid.Rows {
		out := models.GridRow{
			Time:      row.Time,
			TimeLabel: row.Label,
			Cells:     make([]models.GridCell, 0, len(row.Cells)),
		}
		for _, c := range row.Cells {
			out.Cells = append(out.Cells, models.GridCell{
				ID:              c.ID,
				VoteCount:       c.VoteCount,
				TotalResponders: c.TotalResponders,
				IsDefined:       c.IsDefined,
				IsSelected:      c.IsSelected,
				IsPast:          c.IsPast,
				Indicator:       string(c.Indicator),
			})
		}
		resp.Rows = append(resp.Rows, out)
	}

	return resp
}
