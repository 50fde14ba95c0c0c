// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/syncup/auth"
	"github.com/danielhkuo/syncup/models"
)

// ErrUnknownParticipant is returned when a user id was never seen
var ErrUnknownParticipant = errors.New("participant not registered")

// GetOrCreateParticipant looks up or registers the participant row for a
// per-browser user id and returns its row id.
func (s *Store) GetOrCreateParticipant(ctx context.Context, userID string) (string, error) {
	var participantID string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM participant WHERE user_id = $1
	`, userID).Scan(&participantID)

	if err == nil {
		_, _ = s.db.ExecContext(ctx, `UPDATE participant SET last_seen_at = $1 WHERE id = $2`, time.Now().UTC(), participantID)
		return participantID, nil
	}

	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to query participant: %w", err)
	}

	participantID, err = auth.GenerateID(16)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO participant (id, user_id, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`, participantID, userID, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert participant: %w", err)
	}

	// A concurrent request may have won the insert
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM participant WHERE user_id = $1
	`, userID).Scan(&participantID)
	if err != nil {
		return "", fmt.Errorf("failed to query participant: %w", err)
	}

	return participantID, nil
}

// LinkParticipant associates a user with an event. A host link is never
// downgraded to invitee.
func (s *Store) LinkParticipant(ctx context.Context, userID, eventID, role string) error {
	if userID == "" {
		return nil
	}

	participantID, err := s.GetOrCreateParticipant(ctx, userID)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO participant_event (participant_id, event_id, role, linked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_id, event_id) DO UPDATE SET
			role = CASE WHEN participant_event.role = 'host' THEN 'host' ELSE EXCLUDED.role END
	`, participantID, eventID, role, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to link participant: %w", err)
	}

	return nil
}

// ListParticipantEvents returns the events a user hosts or answered, most
// recently linked first.
func (s *Store) ListParticipantEvents(ctx context.Context, userID string) ([]models.ParticipantEventSummary, error) {
	var participantID string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM participant WHERE user_id = $1
	`, userID).Scan(&participantID)
	if err == sql.ErrNoRows {
		return nil, ErrUnknownParticipant
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query participant: %w", err)
	}

	_, _ = s.db.ExecContext(ctx, `UPDATE participant SET last_seen_at = $1 WHERE id = $2`, time.Now().UTC(), participantID)

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			e.id,
			e.name,
			e.duration,
			e.defined_slots,
			e.setup_complete,
			pe.role,
			pe.linked_at,
			(SELECT COUNT(*) FROM response r WHERE r.event_id = e.id) AS response_count
		FROM participant_event pe
		JOIN event e ON pe.event_id = e.id
		WHERE pe.participant_id = $1
		ORDER BY pe.linked_at DESC
	`, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participant events: %w", err)
	}
	defer rows.Close()

	events := []models.ParticipantEventSummary{}
	for rows.Next() {
		var summary models.ParticipantEventSummary
		var duration int
		var definedRaw string
		if err := rows.Scan(
			&summary.EventID,
			&summary.Name,
			&duration,
			&definedRaw,
			&summary.SetupComplete,
			&summary.Role,
			&summary.LinkedAt,
			&summary.ResponseCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant event: %w", err)
		}
		summary.DateSummary = summarize(definedRaw, duration)
		events = append(events, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read participant events: %w", err)
	}

	return events, nil
}
