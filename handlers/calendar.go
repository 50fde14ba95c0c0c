// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/emersion/go-ical"

	"github.com/danielhkuo/syncup/cliparse"
	"github.com/danielhkuo/syncup/db"
	"github.com/danielhkuo/syncup/middleware"
	"github.com/danielhkuo/syncup/models"
	"github.com/danielhkuo/syncup/schedule"
)

// icalDateTime is a floating DATE-TIME; slot ids carry no zone either
const icalDateTime = "20060102T150405"

// CalendarHandler exports candidate slots as iCalendar
type CalendarHandler struct {
	store *db.Store
	cfg   cliparse.Config
	now   func() time.Time
}

func NewCalendarHandler(conn *sql.DB, cfg cliparse.Config) *CalendarHandler {
	return &CalendarHandler{store: db.NewStore(conn), cfg: cfg, now: time.Now}
}

// ExportICS handles GET /api/events/{id}/calendar.ics
// With ?best=1 only the slots holding the most votes are exported
func (h *CalendarHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
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

	tally := schedule.CountVotes(ev.Responses)
	slots := exportSlots(ev.DefinedSlots, tally, r.URL.Query().Get("best") == "1")
	if len(slots) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event has no candidate slots to export")
		return
	}

	cal, err := eventCalendar(*ev, slots, tally, h.now())
	if err != nil {
		slog.Error("failed to build calendar", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to build calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ev.ID+".ics"))
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		slog.Error("failed to encode calendar", "error", err, "event_id", eventID)
	}
}

// exportSlots returns the defined slots to export in chronological order.
// bestOnly keeps those with the most votes among defined slots; votes left on
// slots the host has since removed do not count.
func exportSlots(defined []string, tally schedule.Tally, bestOnly bool) []string {
	out := make([]string, 0, len(defined))
	for _, slot := range defined {
		if !schedule.Contains(out, slot) {
			out = append(out, slot)
		}
	}
	sort.Strings(out)
	if !bestOnly {
		return out
	}

	top := 0
	for _, slot := range out {
		top = max(top, tally.Votes[slot])
	}
	if top == 0 {
		return []string{}
	}
	best := out[:0]
	for _, slot := range out {
		if tally.Votes[slot] == top {
			best = append(best, slot)
		}
	}
	return best
}

// eventCalendar builds one VEVENT per slot, lasting the event duration
func eventCalendar(ev models.Event, slots []string, tally schedule.Tally, now time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//syncup//EN")

	duration := time.Duration(ev.Duration) * time.Minute
	if duration <= 0 {
		duration = models.DefaultDuration * time.Minute
	}

	for _, slot := range slots {
		start, err := schedule.ParseSlot(slot, time.Local)
		if err != nil {
			return nil, err
		}

		ve := ical.NewComponent(ical.CompEvent)
		ve.Props.SetText(ical.PropUID, ev.ID+"-"+start.Format(icalDateTime)+"@syncup")
		ve.Props.SetText(ical.PropSummary, ev.Name)
		ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		ve.Props.Set(floatingDateTime(ical.PropDateTimeStart, start))
		ve.Props.Set(floatingDateTime(ical.PropDateTimeEnd, start.Add(duration)))
		ve.Props.SetText(ical.PropDescription,
			fmt.Sprintf("%d of %d available", tally.Votes[slot], tally.TotalResponders))

		cal.Children = append(cal.Children, ve)
	}

	return cal, nil
}

func floatingDateTime(name string, t time.Time) *ical.Prop {
	p := ical.NewProp(name)
	p.SetValueType(ical.ValueDateTime)
	p.Value = t.Format(icalDateTime)
	return p
}
