// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"time"

	"github.com/danielhkuo/syncup/models"
)

// MutationKind names the persistence call a toggle needs
type MutationKind string

const (
	// MutationDefineSlots patches definedSlots and the host's own response
	MutationDefineSlots MutationKind = "define"
	// MutationRespond replaces the viewer's response set
	MutationRespond MutationKind = "respond"
)

// Mutation is the state to persist after a toggle
type Mutation struct {
	Kind         MutationKind
	ViewerID     string
	DefinedSlots []string
	Slots        []string
}

// UpdateRequest renders a define mutation as an event PATCH body
func (m Mutation) UpdateRequest() models.UpdateEventRequest {
	return models.UpdateEventRequest{
		DefinedSlots: m.DefinedSlots,
		Responses:    map[string][]string{m.ViewerID: m.Slots},
	}
}

// ToggleResult is the state after applying a toggle locally
type ToggleResult struct {
	Event     models.Event
	Selection []string
	Added     bool
	Phase     Phase
	Mutation  Mutation
}

// Toggle applies one slot toggle by viewerID. Past slots and, outside setup
// phase, slots the host never defined are rejected without touching state.
// In setup phase the host's response set is rewritten to equal definedSlots.
// The inputs are not modified.
func Toggle(ev models.Event, viewerID string, selection []string, slot string, now time.Time) (ToggleResult, error) {
	t, err := ParseSlot(slot, now.Location())
	if err != nil {
		return ToggleResult{}, err
	}
	if t.Before(now) {
		return ToggleResult{}, ErrPastSlot
	}

	setup := IsSetupPhase(ev, viewerID)
	if !setup && !Contains(ev.DefinedSlots, slot) {
		return ToggleResult{}, ErrUndefinedSlot
	}

	next := ev.Clone()
	if next.Responses == nil {
		next.Responses = make(map[string][]string)
	}

	if setup {
		defined, added := ToggleSlot(next.DefinedSlots, slot)
		next.DefinedSlots = defined
		next.Responses[viewerID] = append([]string{}, defined...)
		return ToggleResult{
			Event:     next,
			Selection: append([]string{}, defined...),
			Added:     added,
			Phase:     PhaseSetup,
			Mutation: Mutation{
				Kind:         MutationDefineSlots,
				ViewerID:     viewerID,
				DefinedSlots: append([]string{}, defined...),
				Slots:        append([]string{}, defined...),
			},
		}, nil
	}

	chosen, added := ToggleSlot(selection, slot)
	next.Responses[viewerID] = append([]string{}, chosen...)
	return ToggleResult{
		Event:     next,
		Selection: chosen,
		Added:     added,
		Phase:     PhaseOpen,
		Mutation: Mutation{
			Kind:     MutationRespond,
			ViewerID: viewerID,
			Slots:    append([]string{}, chosen...),
		},
	}, nil
}

// Finalize moves the event into open phase. Only the host may do so, and only
// while it still sees setup phase. Finalizing with no candidate slots is
// allowed and yields an open event nobody can vote in.
func Finalize(ev models.Event, viewerID string) (models.Event, error) {
	if viewerID == "" || viewerID != ev.HostID {
		return models.Event{}, ErrNotHost
	}
	if !IsSetupPhase(ev, viewerID) {
		return models.Event{}, ErrSetupClosed
	}

	next := ev.Clone()
	done := true
	next.SetupComplete = &done
	return next, nil
}
