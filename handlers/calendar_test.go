// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"

	"github.com/danielhkuo/syncup/schedule"
	"github.com/danielhkuo/syncup/testutil"
)

func TestExportICS(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler := NewCalendarHandler(conn, testutil.GetTestConfig())
	handler.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }

	ev := testutil.CreateTestEvent(t, conn, "Kickoff", "host-1")
	slots := []string{"2024-01-08T09:30:00", "2024-01-08T09:00:00"}
	testutil.DefineTestSlots(t, conn, ev.ID, slots, true)
	testutil.SubmitTestResponse(t, conn, ev.ID, "host-1", slots)
	testutil.SubmitTestResponse(t, conn, ev.ID, "alice", []string{"2024-01-08T09:00:00"})

	export := func(t *testing.T, query string) *ical.Calendar {
		t.Helper()
		req := httptest.NewRequest("GET", "/api/events/"+ev.ID+"/calendar.ics"+query, nil)
		req.SetPathValue("id", ev.ID)
		w := httptest.NewRecorder()
		handler.ExportICS(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
			t.Errorf("Content-Type = %q", ct)
		}
		cal, err := ical.NewDecoder(w.Body).Decode()
		if err != nil {
			t.Fatalf("Failed to decode calendar: %v", err)
		}
		return cal
	}

	t.Run("all candidate slots in order", func(t *testing.T) {
		cal := export(t, "")
		if len(cal.Children) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(cal.Children))
		}

		first := cal.Children[0]
		if got := first.Props.Get(ical.PropDateTimeStart).Value; got != "20240108T090000" {
			t.Errorf("DTSTART = %s", got)
		}
		if got := first.Props.Get(ical.PropDateTimeEnd).Value; got != "20240108T100000" {
			t.Errorf("DTEND = %s, want one hour later", got)
		}
		if got := first.Props.Get(ical.PropSummary).Value; got != "Kickoff" {
			t.Errorf("SUMMARY = %s", got)
		}
		if got := first.Props.Get(ical.PropDescription).Value; got != "2 of 2 available" {
			t.Errorf("DESCRIPTION = %s", got)
		}
		if got := cal.Children[1].Props.Get(ical.PropDescription).Value; got != "1 of 2 available" {
			t.Errorf("second DESCRIPTION = %s", got)
		}
	})

	t.Run("best only", func(t *testing.T) {
		cal := export(t, "?best=1")
		if len(cal.Children) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(cal.Children))
		}
		if got := cal.Children[0].Props.Get(ical.PropDateTimeStart).Value; got != "20240108T090000" {
			t.Errorf("DTSTART = %s", got)
		}
	})
}

func TestExportICS_BestIgnoresRemovedSlots(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler := NewCalendarHandler(conn, testutil.GetTestConfig())
	ev := testutil.CreateTestEvent(t, conn, "Kickoff", "host-1")

	// 10:00 was defined, collected votes, then removed by the host
	testutil.DefineTestSlots(t, conn, ev.ID, []string{"2024-01-08T09:00:00", "2024-01-08T09:30:00"}, true)
	testutil.SubmitTestResponse(t, conn, ev.ID, "host-1", []string{"2024-01-08T09:00:00", "2024-01-08T09:30:00"})
	for _, user := range []string{"alice", "bob", "carol"} {
		testutil.SubmitTestResponse(t, conn, ev.ID, user, []string{"2024-01-08T10:00:00"})
	}
	testutil.SubmitTestResponse(t, conn, ev.ID, "dave", []string{"2024-01-08T09:30:00"})

	req := httptest.NewRequest("GET", "/api/events/"+ev.ID+"/calendar.ics?best=1", nil)
	req.SetPathValue("id", ev.ID)
	w := httptest.NewRecorder()
	handler.ExportICS(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	cal, err := ical.NewDecoder(w.Body).Decode()
	if err != nil {
		t.Fatalf("Failed to decode calendar: %v", err)
	}
	if len(cal.Children) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(cal.Children))
	}
	if got := cal.Children[0].Props.Get(ical.PropDateTimeStart).Value; got != "20240108T093000" {
		t.Errorf("DTSTART = %s, want the top defined slot", got)
	}
}

func TestExportSlots(t *testing.T) {
	defined := []string{"2024-01-08T09:30:00", "2024-01-08T09:00:00", "2024-01-08T09:00:00"}

	tests := []struct {
		name     string
		votes    map[string][]string
		bestOnly bool
		want     []string
	}{
		{"all sorted and deduplicated", nil, false, []string{"2024-01-08T09:00:00", "2024-01-08T09:30:00"}},
		{"best with no votes", nil, true, []string{}},
		{"best tie", map[string][]string{"a": {"2024-01-08T09:00:00", "2024-01-08T09:30:00"}}, true,
			[]string{"2024-01-08T09:00:00", "2024-01-08T09:30:00"}},
		{"stale maximum ignored", map[string][]string{
			"a": {"2024-01-08T12:00:00"},
			"b": {"2024-01-08T12:00:00", "2024-01-08T09:30:00"},
		}, true, []string{"2024-01-08T09:30:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exportSlots(defined, schedule.CountVotes(tt.votes), tt.bestOnly)
			if len(got) != len(tt.want) {
				t.Fatalf("exportSlots() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("exportSlots() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestExportICS_Errors(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler := NewCalendarHandler(conn, testutil.GetTestConfig())
	ev := testutil.CreateTestEvent(t, conn, "Empty", "host-1")

	tests := []struct {
		name string
		id   string
	}{
		{"no candidate slots", ev.ID},
		{"unknown event", "abcdefgh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/events/"+tt.id+"/calendar.ics", nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()
			handler.ExportICS(w, req)
			testutil.AssertStatus(t, w, http.StatusNotFound)
		})
	}
}
