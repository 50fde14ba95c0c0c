// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/syncup/models"
	"github.com/danielhkuo/syncup/schedule"
)

// HistoryLimit caps the number of remembered events
const HistoryLimit = 20

// reconcileWorkers bounds concurrent fetches during Reconcile
const reconcileWorkers = 4

// EventGetter is the part of the API history reconciliation needs
type EventGetter interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

// EventDeleter is the part of the API history deletion needs
type EventDeleter interface {
	DeleteEvent(ctx context.Context, id string) error
}

// History is the viewer's list of recently visited events, persisted as a
// JSON file. The cache is only trusted for display order; Reconcile refreshes
// it from the server.
type History struct {
	mu      sync.Mutex
	path    string
	entries []models.HistoryEntry
	now     func() time.Time
}

// OpenHistory loads the history file at path. A missing file is an empty
// history; a corrupt one is logged and replaced on the next save.
func OpenHistory(path string) (*History, error) {
	h := &History{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	if err := json.Unmarshal(data, &h.entries); err != nil {
		slog.Warn("discarding unreadable event history", "path", path, "error", err)
		h.entries = nil
	}
	if len(h.entries) > HistoryLimit {
		h.entries = h.entries[:HistoryLimit]
	}
	return h, nil
}

// Entries returns a copy of the remembered events, most recent first
func (h *History) Entries() []models.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.HistoryEntry{}, h.entries...)
}

// Record remembers a visit to ev. A known event is updated in place; a new
// one goes to the front and the oldest entry beyond HistoryLimit is dropped.
func (h *History) Record(ev models.Event, viewerID string) error {
	if ev.ID == "" {
		return nil
	}

	entry := models.HistoryEntry{
		ID:            ev.ID,
		Name:          ev.Name,
		LastVisited:   h.now().UTC(),
		DateSummary:   schedule.Summarize(ev.DefinedSlots, ev.Duration),
		IsOwner:       viewerID != "" && viewerID == ev.HostID,
		ResponseCount: len(ev.Responses),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if i := h.indexOf(ev.ID); i >= 0 {
		h.entries[i] = entry
	} else {
		h.entries = append([]models.HistoryEntry{entry}, h.entries...)
	}
	if len(h.entries) > HistoryLimit {
		h.entries = h.entries[:HistoryLimit]
	}
	return h.save()
}

// Remove forgets an event. Unknown ids are ignored.
func (h *History) Remove(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.indexOf(id)
	if i < 0 {
		return nil
	}
	h.entries = append(h.entries[:i], h.entries[i+1:]...)
	return h.save()
}

// Delete deletes the event on the server, then forgets it. A failed delete
// leaves the history untouched and is returned to the caller.
func (h *History) Delete(ctx context.Context, api EventDeleter, id string) error {
	if err := api.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return h.Remove(id)
}

// Reconcile refetches every remembered event concurrently. Events the server
// no longer knows are dropped, events that fail to load for any other reason
// are kept as cached, and the rest get fresh name, summary, and count.
// It returns the ids that were dropped.
func (h *History) Reconcile(ctx context.Context, api EventGetter) ([]string, error) {
	snapshot := h.Entries()
	if len(snapshot) == 0 {
		return nil, nil
	}

	type outcome struct {
		ev      *models.Event
		missing bool
	}
	results := make([]outcome, len(snapshot))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileWorkers)
	for i, entry := range snapshot {
		g.Go(func() error {
			ev, err := api.GetEvent(gctx, entry.ID)
			switch {
			case errors.Is(err, ErrNotFound):
				results[i].missing = true
			case err != nil:
				slog.Warn("keeping cached history entry", "event_id", entry.ID, "error", err)
			default:
				results[i].ev = ev
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var dropped []string
	for i, entry := range snapshot {
		idx := h.indexOf(entry.ID)
		if idx < 0 {
			continue
		}
		switch {
		case results[i].missing:
			h.entries = append(h.entries[:idx], h.entries[idx+1:]...)
			dropped = append(dropped, entry.ID)
		case results[i].ev != nil:
			ev := results[i].ev
			h.entries[idx].Name = ev.Name
			h.entries[idx].DateSummary = schedule.Summarize(ev.DefinedSlots, ev.Duration)
			h.entries[idx].ResponseCount = len(ev.Responses)
		}
	}

	return dropped, h.save()
}

// LastVisitedLabel renders an entry's visit time relative to now, e.g.
// "3 minutes ago"
func LastVisitedLabel(e models.HistoryEntry, now time.Time) string {
	return humanize.RelTime(e.LastVisited, now, "ago", "from now")
}

func (h *History) indexOf(id string) int {
	for i, e := range h.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// save writes the history atomically; the caller holds h.mu
func (h *History) save() error {
	if h.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(h.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp, h.path); err != nil {
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}
