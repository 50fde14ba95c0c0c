// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/syncup/models"
	"github.com/danielhkuo/syncup/schedule"
)

var sessionNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

func fixedClock() time.Time { return sessionNow }

// scriptedAPI is an in-memory EventAPI whose calls can fail or block
type scriptedAPI struct {
	mu         sync.Mutex
	event      *models.Event
	persistErr error
	updates    []models.UpdateEventRequest
	submits    [][]string
	gate       chan struct{}
}

func (a *scriptedAPI) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	a.mu.Lock()
	gate := a.gate
	a.mu.Unlock()
	if gate != nil {
		<-gate
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.event == nil {
		return nil, ErrNotFound
	}
	ev := a.event.Clone()
	return &ev, nil
}

func (a *scriptedAPI) UpdateEvent(ctx context.Context, id string, upd models.UpdateEventRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updates = append(a.updates, upd)
	return a.persistErr
}

func (a *scriptedAPI) SubmitResponse(ctx context.Context, eventID, userID string, slots []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.submits = append(a.submits, append([]string{}, slots...))
	return a.persistErr
}

func openEvent() *models.Event {
	done := true
	return &models.Event{
		ID:            "ev1",
		HostID:        "host",
		Name:          "Kickoff",
		Duration:      60,
		DefinedSlots:  []string{"2024-01-08T09:00:00", "2024-01-08T09:30:00"},
		SetupComplete: &done,
		Responses: map[string][]string{
			"host": {"2024-01-08T09:00:00", "2024-01-08T09:30:00"},
		},
	}
}

func TestSessionKickoffAgainstServer(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	created, err := c.CreateEvent(ctx, "Kickoff", 60, "host")
	if err != nil {
		t.Fatal(err)
	}

	host := NewSession(c, created.ID, "host", WithClock(fixedClock))
	if err := host.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if host.Phase() != schedule.PhaseSetup {
		t.Fatal("Host should start in setup phase")
	}
	if _, ok := host.InitialTimeRow(); ok {
		t.Error("No initial row before slots exist")
	}

	for _, slot := range []string{"2024-01-08T09:00:00", "2024-01-08T09:30:00"} {
		if _, err := host.Toggle(ctx, slot); err != nil {
			t.Fatalf("Toggle %s: %v", slot, err)
		}
	}
	if _, err := host.FinishSetup(ctx); err != nil {
		t.Fatal(err)
	}

	guest := NewSession(c, created.ID, "guest", WithClock(fixedClock))
	if err := guest.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if guest.Phase() != schedule.PhaseOpen {
		t.Fatal("Guest must see open phase")
	}
	if got := guest.WeekStart().Format(schedule.DateLayout); got != "2024-01-08" {
		t.Errorf("Expected view to jump to 2024-01-08, got %s", got)
	}
	if row, ok := guest.InitialTimeRow(); !ok || row != "09:00:00" {
		t.Errorf("Expected initial row 09:00:00, got %q", row)
	}

	if _, err := guest.Toggle(ctx, "2024-01-08T09:00:00"); err != nil {
		t.Fatal(err)
	}
	if _, err := guest.Toggle(ctx, "2024-01-08T10:00:00"); !errors.Is(err, schedule.ErrUndefinedSlot) {
		t.Errorf("Expected undefined slot rejection, got %v", err)
	}

	if err := host.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	grid, ok := host.Grid()
	if !ok {
		t.Fatal("Expected grid")
	}
	nine, _ := grid.Cell("2024-01-08T09:00:00")
	half, _ := grid.Cell("2024-01-08T09:30:00")
	if grid.MaxVotes != 2 || nine.VoteCount != 2 || half.VoteCount != 1 {
		t.Errorf("Unexpected tallies: max %d, 09:00 %d, 09:30 %d", grid.MaxVotes, nine.VoteCount, half.VoteCount)
	}
	if nine.Indicator != schedule.IndicatorSolid || half.Indicator != schedule.IndicatorHollow {
		t.Errorf("Unexpected indicators %s/%s", nine.Indicator, half.Indicator)
	}
}

func TestSessionOptimisticWithoutRollback(t *testing.T) {
	api := &scriptedAPI{event: openEvent(), persistErr: &TransientNetworkError{Op: "submit response", Status: 503}}
	s := NewSession(api, "ev1", "guest", WithClock(fixedClock))
	ctx := context.Background()

	if err := s.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	_, err := s.Toggle(ctx, "2024-01-08T09:00:00")
	if !IsTransient(err) {
		t.Fatalf("Expected persist failure to be returned, got %v", err)
	}
	if !schedule.SetEqual(s.Selection(), []string{"2024-01-08T09:00:00"}) {
		t.Errorf("Optimistic selection must survive a failed persist, got %v", s.Selection())
	}
	if got := s.Event().Responses["guest"]; len(got) != 1 {
		t.Errorf("Optimistic event state must survive, got %v", got)
	}

	// The next successful refresh is what heals the divergence
	api.mu.Lock()
	api.persistErr = nil
	api.mu.Unlock()
	if err := s.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Event().Responses["guest"]; ok {
		t.Error("Refresh must replace local event state with the server's")
	}
	if len(s.Selection()) != 1 {
		t.Error("Selection is only re-seeded when the server has a response for the viewer")
	}
}

func TestSessionRefreshReseedsSelection(t *testing.T) {
	api := &scriptedAPI{event: openEvent()}
	api.event.Responses["guest"] = []string{"2024-01-08T09:30:00"}
	s := NewSession(api, "ev1", "guest", WithClock(fixedClock))

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !schedule.SetEqual(s.Selection(), []string{"2024-01-08T09:30:00"}) {
		t.Errorf("Expected selection from server, got %v", s.Selection())
	}
}

func TestSessionRejectedToggles(t *testing.T) {
	api := &scriptedAPI{event: openEvent()}
	s := NewSession(api, "ev1", "guest", WithClock(fixedClock))
	ctx := context.Background()

	if _, err := s.Toggle(ctx, "2024-01-08T09:00:00"); !errors.Is(err, ErrNoEvent) {
		t.Errorf("Expected ErrNoEvent before load, got %v", err)
	}
	if err := s.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		slot string
		want error
	}{
		{"2023-12-31T09:00:00", schedule.ErrPastSlot},
		{"2024-01-08T10:00:00", schedule.ErrUndefinedSlot},
		{"not-a-slot", schedule.ErrInvalidSlot},
	}
	for _, tt := range tests {
		if _, err := s.Toggle(ctx, tt.slot); !errors.Is(err, tt.want) {
			t.Errorf("Toggle(%s) = %v, want %v", tt.slot, err, tt.want)
		}
	}

	if len(api.submits) != 0 || len(api.updates) != 0 {
		t.Error("Rejected toggles must not reach the server")
	}
	if len(s.Selection()) != 0 {
		t.Error("Rejected toggles must not change the selection")
	}
}

func TestSessionSetupToggleSendsDefineMutation(t *testing.T) {
	notDone := false
	api := &scriptedAPI{event: &models.Event{
		ID: "ev1", HostID: "host", Name: "Kickoff", Duration: 60,
		DefinedSlots: []string{}, SetupComplete: &notDone, Responses: map[string][]string{},
	}}
	s := NewSession(api, "ev1", "host", WithClock(fixedClock))
	ctx := context.Background()

	if err := s.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Toggle(ctx, "2024-01-03T14:00:00"); err != nil {
		t.Fatal(err)
	}

	if len(api.updates) != 1 {
		t.Fatalf("Expected one PATCH, got %d", len(api.updates))
	}
	upd := api.updates[0]
	if !schedule.SetEqual(upd.DefinedSlots, []string{"2024-01-03T14:00:00"}) {
		t.Errorf("Unexpected definedSlots %v", upd.DefinedSlots)
	}
	if !schedule.SetEqual(upd.Responses["host"], upd.DefinedSlots) {
		t.Errorf("Host response must mirror definedSlots, got %v", upd.Responses)
	}

	if _, err := s.Toggle(ctx, "2024-01-03T14:00:00"); err != nil {
		t.Fatal(err)
	}
	if ev := s.Event(); len(ev.DefinedSlots) != 0 || len(ev.Responses["host"]) != 0 {
		t.Errorf("Double toggle must restore the empty set, got %+v", ev)
	}
}

func TestSessionFinishSetup(t *testing.T) {
	notDone := false
	api := &scriptedAPI{event: &models.Event{
		ID: "ev1", HostID: "host", Name: "Empty", Duration: 60,
		DefinedSlots: []string{}, SetupComplete: &notDone, Responses: map[string][]string{},
	}}
	ctx := context.Background()

	guest := NewSession(api, "ev1", "guest", WithClock(fixedClock))
	if err := guest.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := guest.FinishSetup(ctx); !errors.Is(err, schedule.ErrNotHost) {
		t.Errorf("Expected ErrNotHost, got %v", err)
	}

	host := NewSession(api, "ev1", "host", WithClock(fixedClock))
	if err := host.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	res, err := host.FinishSetup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Empty {
		t.Error("Expected zero-slot finalize to be reported")
	}
	if host.Phase() != schedule.PhaseOpen {
		t.Error("Expected open phase after finishing setup")
	}
	if len(api.updates) != 1 || api.updates[0].SetupComplete == nil || !*api.updates[0].SetupComplete {
		t.Errorf("Expected setupComplete=true to be sent, got %+v", api.updates)
	}

	if _, err := host.FinishSetup(ctx); !errors.Is(err, schedule.ErrSetupClosed) {
		t.Errorf("Expected ErrSetupClosed on second finish, got %v", err)
	}
}

func TestSessionNotFound(t *testing.T) {
	api := &scriptedAPI{event: openEvent()}
	s := NewSession(api, "ev1", "guest", WithClock(fixedClock))
	ctx := context.Background()

	if err := s.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	api.mu.Lock()
	api.event = nil
	api.mu.Unlock()

	if err := s.Refresh(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if s.Event() != nil || !s.NotFound() {
		t.Error("Expected local state cleared for a missing event")
	}
	if _, ok := s.Grid(); ok {
		t.Error("No grid without an event")
	}
}

func TestSessionNotFoundForMalformedCode(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, srv.Client())

	for _, code := range []string{"no.such", "abc def", "x/y"} {
		t.Run(code, func(t *testing.T) {
			s := NewSession(c, code, "guest", WithClock(fixedClock))
			err := s.Refresh(context.Background())
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Expected ErrNotFound, got %v", err)
			}
			if !s.NotFound() {
				t.Error("Expected the not-found view for a mistyped code")
			}
		})
	}
}

func TestSessionIgnoresResultsAfterStop(t *testing.T) {
	api := &scriptedAPI{event: openEvent(), gate: make(chan struct{})}
	s := NewSession(api, "ev1", "guest", WithClock(fixedClock))

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()

	// Let the fetch start, then leave the view before it resolves
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	close(api.gate)

	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if s.Event() != nil {
		t.Error("A fetch resolving after Stop must be ignored")
	}
}

func TestSessionWeekNavigation(t *testing.T) {
	s := NewSession(&scriptedAPI{event: openEvent()}, "ev1", "guest", WithClock(fixedClock))

	start := s.WeekStart()
	if start.Format(schedule.DateLayout) != "2024-01-01" {
		t.Fatalf("Expected current week, got %s", start.Format(schedule.DateLayout))
	}

	s.PrevWeek()
	if got := s.WeekStart().Format(schedule.DateLayout); got != "2023-12-25" {
		t.Errorf("Expected previous week, got %s", got)
	}
	s.NextWeek()
	if !s.WeekStart().Equal(start) {
		t.Error("Back then forward must return to the same week")
	}
	s.NextWeek()
	s.NextWeek()
	s.ThisWeek()
	if !s.WeekStart().Equal(start) {
		t.Error("ThisWeek must return to the current week")
	}
}

func TestSessionRecordsHistory(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "events.json"))
	if err != nil {
		t.Fatal(err)
	}
	s := NewSession(&scriptedAPI{event: openEvent()}, "ev1", "host", WithClock(fixedClock), WithHistory(h))

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	entries := h.Entries()
	if len(entries) != 1 || entries[0].ID != "ev1" || !entries[0].IsOwner {
		t.Errorf("Expected owned history entry, got %+v", entries)
	}
}

func TestSessionPolling(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a poll tick")
	}

	api := &scriptedAPI{event: openEvent()}
	s := NewSession(api, "ev1", "guest", WithClock(fixedClock))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := s.Start(ctx); err == nil {
		t.Error("Expected second Start to fail")
	}

	waitFor := func(what string, timeout time.Duration, cond func() bool) {
		t.Helper()
		deadline := time.Now().Add(timeout)
		for time.Now().Before(deadline) {
			if cond() {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
		t.Fatalf("Timed out waiting for %s", what)
	}

	waitFor("initial fetch", 2*time.Second, func() bool { return s.Event() != nil })

	api.mu.Lock()
	api.event.Responses["other"] = []string{"2024-01-08T09:00:00"}
	api.mu.Unlock()

	waitFor("scheduled refresh", 5*time.Second, func() bool {
		ev := s.Event()
		if ev == nil {
			return false
		}
		_, ok := ev.Responses["other"]
		return ok
	})
}

func TestSessionStopsWhenContextDone(t *testing.T) {
	api := &scriptedAPI{event: openEvent()}
	s := NewSession(api, "ev1", "guest", WithClock(fixedClock))

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if !s.Polling() {
		t.Fatal("Expected polling after Start")
	}

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for s.Polling() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.Polling() {
		t.Fatal("Expected polling to stop once the context is done")
	}

	// Restart works, and Stop after cancel is harmless
	s.Stop()
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	if err := s.Start(ctx2); err != nil {
		t.Fatalf("Restart after cancel failed: %v", err)
	}
	s.Stop()
	if s.Polling() {
		t.Error("Expected Stop to halt the restarted poller")
	}
}
