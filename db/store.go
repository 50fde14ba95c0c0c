// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/syncup/auth"
	"github.com/danielhkuo/syncup/models"
	"github.com/danielhkuo/syncup/schedule"
)

// ErrNotFound is returned for unknown event ids
var ErrNotFound = errors.New("event not found")

// Store persists events and per-user responses. Response rows are keyed by
// (event, user), so writers for different users never touch the same row.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateEvent inserts a new event with no candidate slots in setup phase
func (s *Store) CreateEvent(ctx context.Context, name string, duration int, hostID string) (*models.Event, error) {
	id, err := auth.GenerateEventID()
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = models.DefaultDuration
	}

	setup := false
	ev := &models.Event{
		ID:            id,
		HostID:        hostID,
		Name:          name,
		Duration:      duration,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
		DefinedSlots:  []string{},
		SetupComplete: &setup,
		Responses:     map[string][]string{},
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO event (id, host_id, name, duration, defined_slots, setup_complete, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ev.ID, ev.HostID, ev.Name, ev.Duration, "[]", false, ev.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	return ev, nil
}

// GetEvent loads an event together with every user's response set
func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var ev models.Event
	var definedRaw string
	var setup bool
	err := s.db.QueryRowContext(ctx, `
		SELECT id, host_id, name, duration, defined_slots, setup_complete, created_at
		FROM event
		WHERE id = $1
	`, id).Scan(&ev.ID, &ev.HostID, &ev.Name, &ev.Duration, &definedRaw, &setup, &ev.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query event: %w", err)
	}

	ev.DefinedSlots, err = decodeSlots(definedRaw)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", id, err)
	}
	ev.SetupComplete = &setup

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, slots FROM response WHERE event_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	ev.Responses = map[string][]string{}
	for rows.Next() {
		var userID, raw string
		if err := rows.Scan(&userID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		slots, err := decodeSlots(raw)
		if err != nil {
			return nil, fmt.Errorf("response %s/%s: %w", id, userID, err)
		}
		ev.Responses[userID] = slots
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read responses: %w", err)
	}

	return &ev, nil
}

// UpdateEvent applies the recognized fields of a PATCH. Response entries are
// upserted per user independently of the event row.
func (s *Store) UpdateEvent(ctx context.Context, id string, upd models.UpdateEventRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM event WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query event: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	if upd.DefinedSlots != nil {
		raw, err := encodeSlots(upd.DefinedSlots)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE event SET defined_slots = $1 WHERE id = $2`, raw, id); err != nil {
			return fmt.Errorf("failed to update defined slots: %w", err)
		}
	}

	if upd.SetupComplete != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE event SET setup_complete = $1 WHERE id = $2`, *upd.SetupComplete, id); err != nil {
			return fmt.Errorf("failed to update setup flag: %w", err)
		}
	}

	for userID, slots := range upd.Responses {
		if err := upsertResponse(ctx, tx, id, userID, slots); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpsertResponse replaces the whole response set of one user
func (s *Store) UpsertResponse(ctx context.Context, eventID, userID string, slots []string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM event WHERE id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query event: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	return upsertResponse(ctx, s.db, eventID, userID, slots)
}

// DeleteEvent removes an event, its responses and its participant links.
// Deleting an unknown id is not an error.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM response WHERE event_id = $1`,
		`DELETE FROM participant_event WHERE event_id = $1`,
		`DELETE FROM event WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertResponse(ctx context.Context, ex execer, eventID, userID string, slots []string) error {
	raw, err := encodeSlots(slots)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO response (event_id, user_id, slots, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			slots = EXCLUDED.slots,
			updated_at = EXCLUDED.updated_at
	`, eventID, userID, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert response: %w", err)
	}
	return nil
}

func encodeSlots(slots []string) (string, error) {
	if slots == nil {
		slots = []string{}
	}
	b, err := json.Marshal(slots)
	if err != nil {
		return "", fmt.Errorf("failed to encode slots: %w", err)
	}
	return string(b), nil
}

func decodeSlots(raw string) ([]string, error) {
	slots := []string{}
	if raw == "" {
		return slots, nil
	}
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

// summarize is shared by participant listings
func summarize(definedRaw string, duration int) string {
	slots, err := decodeSlots(definedRaw)
	if err != nil {
		return schedule.NoDatesSummary
	}
	return schedule.Summarize(slots, duration)
}
