// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package schedule implements the availability engine: which slots exist in a
week, which of them a viewer may pick, how votes add up, and how a toggle
changes event state.

Everything here is pure. The viewer id and the current time are always
passed in; nothing reads a clock or a global identity.

# Slots

A slot is identified by its local start time, "2006-01-02T15:04:05", at
30-minute resolution. Identifiers compare as strings; no zone is attached.
Only cell starts of the projected grid are slots: ParseSlot and ValidSlot
reject stray seconds, off-interval minutes and hours outside [08:00, 22:00).

# Calendar Projection

	week := schedule.Project(anchor, time.Now())
	prev := schedule.Project(schedule.ShiftWeeks(anchor, -1), time.Now())

A week is Monday to Sunday, rows from 08:00 up to 22:00 every 30 minutes.

# Phases

	schedule.IsSetupPhase(ev, viewerID)

Only the host sees setup phase, and only while setupComplete is false (or
unset with no candidate slots yet).

# Aggregation

	grid := schedule.BuildGrid(week, ev, viewerID, selection, now)

Vote counts are event-wide. Slots at the maximum count render solid, other
voted slots hollow. Past slots are never selectable.

# Toggle Protocol

	res, err := schedule.Toggle(ev, viewerID, selection, slot, now)

Errors (ErrPastSlot, ErrUndefinedSlot, ErrInvalidSlot) mean "ignore the
click". On success res.Mutation says what to persist: a define mutation
patches definedSlots together with the host's own response set, a respond
mutation replaces the viewer's response set.
*/
package schedule
