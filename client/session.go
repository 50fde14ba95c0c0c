// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/danielhkuo/syncup/models"
	"github.com/danielhkuo/syncup/schedule"
)

// PollSpec is the refresh schedule of an active session
const PollSpec = "@every 3s"

// EventAPI is the part of the HTTP API a session drives
type EventAPI interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, upd models.UpdateEventRequest) error
	SubmitResponse(ctx context.Context, eventID, userID string, slots []string) error
}

// Session is one viewer's live view of one event.
//
// Toggles are applied to local state first and persisted afterwards. A failed
// persist is logged and not rolled back; the next successful refresh replaces
// local event state with the server's. Refresh results always win over local
// state (last fetch wins), so an optimistic edit still in flight can be
// briefly reverted by a poll that raced it.
type Session struct {
	api      EventAPI
	eventID  string
	viewerID string
	history  *History
	now      func() time.Time

	mu              sync.Mutex
	event           *models.Event
	selection       []string
	notFound        bool
	anchor          time.Time
	initialRow      string
	viewInitialized bool
	generation      uint64
	poller          *cron.Cron
	pollerDone      chan struct{}
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithHistory records every loaded event in h
func WithHistory(h *History) SessionOption {
	return func(s *Session) { s.history = h }
}

// WithClock replaces time.Now; slot ids are read in the clock's location
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession prepares a view of eventID for viewerID. Nothing is fetched
// until Refresh or Start.
func NewSession(api EventAPI, eventID, viewerID string, opts ...SessionOption) *Session {
	s := &Session{
		api:      api,
		eventID:  eventID,
		viewerID: viewerID,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.anchor = schedule.StartOfWeek(s.now())
	return s
}

// Start fetches the event now and then on PollSpec until Stop is called or
// ctx is done
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poller != nil {
		return errors.New("session already started")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(PollSpec, func() { s.poll(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}
	done := make(chan struct{})
	s.poller = c
	s.pollerDone = done
	c.Start()

	go func() {
		select {
		case <-ctx.Done():
			s.stop(c)
		case <-done:
		}
	}()
	go s.poll(ctx)
	return nil
}

// Stop halts polling. Fetches already in flight are not cancelled; their
// results are discarded.
func (s *Session) Stop() {
	s.mu.Lock()
	c := s.poller
	s.mu.Unlock()

	if c != nil {
		s.stop(c)
	}
}

// stop halts c if it is still the active poller. A later Start installs a
// new poller that an old context must not stop.
func (s *Session) stop(c *cron.Cron) {
	s.mu.Lock()
	if s.poller != c {
		s.mu.Unlock()
		return
	}
	s.poller = nil
	close(s.pollerDone)
	s.pollerDone = nil
	s.generation++
	s.mu.Unlock()

	c.Stop()
}

// Polling reports whether scheduled refresh is running
func (s *Session) Polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poller != nil
}

// poll is one scheduled refresh. Failures are logged, never surfaced.
func (s *Session) poll(ctx context.Context) {
	err := s.Refresh(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("event refresh failed", "event_id", s.eventID, "error", err)
	}
}

// Refresh replaces local event state with the server's. The viewer's
// selection is re-seeded only when the server holds a response for them.
// An unknown event clears local state and returns ErrNotFound.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	ev, err := s.api.GetEvent(ctx, s.eventID)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		s.event = nil
		s.notFound = true
		s.mu.Unlock()
		return err
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.event = ev
	s.notFound = false
	if slots, ok := ev.Responses[s.viewerID]; ok {
		s.selection = append([]string{}, slots...)
	}
	s.initView()
	snapshot := ev.Clone()
	s.mu.Unlock()

	if s.history != nil {
		if err := s.history.Record(snapshot, s.viewerID); err != nil {
			slog.Warn("failed to record event history", "event_id", s.eventID, "error", err)
		}
	}
	return nil
}

// initView jumps to the week of the earliest candidate slot the first time
// the event has any; the caller holds s.mu
func (s *Session) initView() {
	if s.viewInitialized || s.event == nil || len(s.event.DefinedSlots) == 0 {
		return
	}
	anchor, row, ok := schedule.InitialView(s.event.DefinedSlots, s.now().Location())
	if !ok {
		return
	}
	s.anchor = anchor
	s.initialRow = row
	s.viewInitialized = true
}

// Toggle flips one slot for the viewer. Rejected toggles (past, undefined
// outside setup, malformed) return the schedule error and change nothing.
// Accepted toggles update local state before persisting; a persist failure
// is logged and returned but local state is kept.
func (s *Session) Toggle(ctx context.Context, slot string) (schedule.ToggleResult, error) {
	s.mu.Lock()
	if s.event == nil {
		s.mu.Unlock()
		return schedule.ToggleResult{}, ErrNoEvent
	}
	res, err := schedule.Toggle(*s.event, s.viewerID, s.selection, slot, s.now())
	if err != nil {
		s.mu.Unlock()
		return res, err
	}
	next := res.Event.Clone()
	s.event = &next
	s.selection = append([]string{}, res.Selection...)
	s.mu.Unlock()

	switch res.Mutation.Kind {
	case schedule.MutationDefineSlots:
		err = s.api.UpdateEvent(ctx, s.eventID, res.Mutation.UpdateRequest())
	default:
		err = s.api.SubmitResponse(ctx, s.eventID, s.viewerID, res.Mutation.Slots)
	}
	if err != nil {
		slog.Error("failed to persist toggle", "event_id", s.eventID, "slot", slot, "error", err)
		return res, err
	}
	return res, nil
}

// FinishResult reports the outcome of FinishSetup
type FinishResult struct {
	// Empty is set when setup closed with no candidate slots, leaving an
	// event nobody can vote in
	Empty bool
}

// FinishSetup closes setup phase. Only the host can, and only once. The
// local flag flips after the server accepts the change.
func (s *Session) FinishSetup(ctx context.Context) (FinishResult, error) {
	s.mu.Lock()
	if s.event == nil {
		s.mu.Unlock()
		return FinishResult{}, ErrNoEvent
	}
	next, err := schedule.Finalize(*s.event, s.viewerID)
	s.mu.Unlock()
	if err != nil {
		return FinishResult{}, err
	}

	result := FinishResult{Empty: len(next.DefinedSlots) == 0}
	if result.Empty {
		slog.Warn("finishing setup with no candidate slots", "event_id", s.eventID)
	}

	if err := s.api.UpdateEvent(ctx, s.eventID, models.UpdateEventRequest{SetupComplete: next.SetupComplete}); err != nil {
		slog.Error("failed to finish setup", "event_id", s.eventID, "error", err)
		return result, err
	}

	s.mu.Lock()
	if s.event != nil {
		done := true
		s.event.SetupComplete = &done
	}
	s.mu.Unlock()

	return result, nil
}

// Event returns a copy of the current event state, or nil before the first
// load or after the event disappeared
func (s *Session) Event() *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.event == nil {
		return nil
	}
	ev := s.event.Clone()
	return &ev
}

// Selection returns the viewer's current response set
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.selection...)
}

// NotFound reports whether the last refresh found no event
func (s *Session) NotFound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notFound
}

// Phase is the event phase for this viewer
func (s *Session) Phase() schedule.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.event == nil {
		return schedule.PhaseOpen
	}
	return schedule.ResolvePhase(*s.event, s.viewerID)
}

// WeekStart is the Monday of the week on screen
func (s *Session) WeekStart() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor
}

// InitialTimeRow is the first row worth scrolling to, as HH:MM:00. ok is
// false until the event has candidate slots.
func (s *Session) InitialTimeRow() (row string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialRow, s.viewInitialized
}

// PrevWeek moves the view back one week
func (s *Session) PrevWeek() { s.shiftWeek(-1) }

// NextWeek moves the view forward one week
func (s *Session) NextWeek() { s.shiftWeek(1) }

// ThisWeek moves the view to the current week
func (s *Session) ThisWeek() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = schedule.StartOfWeek(s.now())
}

func (s *Session) shiftWeek(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = schedule.ShiftWeeks(s.anchor, n)
}

// Grid projects the week on screen with the current vote tallies. ok is false
// while no event is loaded.
func (s *Session) Grid() (grid schedule.Grid, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.event == nil {
		return schedule.Grid{}, false
	}
	now := s.now()
	week := schedule.Project(s.anchor, now)
	return schedule.BuildGrid(week, *s.event, s.viewerID, s.selection, now), true
}
