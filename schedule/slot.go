// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"fmt"
	"time"
)

// Slot identifier layouts. Identifiers carry no zone; they are read in the
// location of the clock they are compared against.
const (
	SlotLayout = "2006-01-02T15:04:05"
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// ParseSlot reads a slot identifier in loc. Only starts of grid cells are
// slots: whole IntervalMinutes steps within [StartHour, EndHour).
func ParseSlot(id string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(SlotLayout, id, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSlot, id)
	}
	if !onGrid(t) {
		return time.Time{}, fmt.Errorf("%w: %q is not on the %d-minute grid between %02d:00 and %02d:00",
			ErrInvalidSlot, id, IntervalMinutes, StartHour, EndHour)
	}
	return t, nil
}

// onGrid checks wall-clock fields, so the answer does not depend on loc
func onGrid(t time.Time) bool {
	return t.Second() == 0 && t.Nanosecond() == 0 &&
		t.Minute()%IntervalMinutes == 0 &&
		t.Hour() >= StartHour && t.Hour() < EndHour
}

// FormatSlot renders t as a slot identifier in t's own location
func FormatSlot(t time.Time) string {
	return t.Format(SlotLayout)
}

// ValidSlot reports whether id is a well-formed slot identifier on the grid
func ValidSlot(id string) bool {
	_, err := ParseSlot(id, time.UTC)
	return err == nil
}

// IsPast reports whether the slot starts strictly before now. Malformed
// identifiers count as past so they are never selectable.
func IsPast(id string, now time.Time) bool {
	t, err := ParseSlot(id, now.Location())
	if err != nil {
		return true
	}
	return t.Before(now)
}

// Contains reports exact-string membership
func Contains(set []string, id string) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}

// ToggleSlot returns a new set with id removed if present, appended otherwise.
// The input is never modified.
func ToggleSlot(set []string, id string) ([]string, bool) {
	out := make([]string, 0, len(set)+1)
	removed := false
	for _, s := range set {
		if s == id {
			removed = true
			continue
		}
		out = append(out, s)
	}
	if removed {
		return out, false
	}
	return append(out, id), true
}

// SetEqual compares two slot sets ignoring order and duplicates
func SetEqual(a, b []string) bool {
	ma := toSet(a)
	mb := toSet(b)
	if len(ma) != len(mb) {
		return false
	}
	for k := range ma {
		if !mb[k] {
			return false
		}
	}
	return true
}

func toSet(slots []string) map[string]bool {
	m := make(map[string]bool, len(slots))
	for _, s := range slots {
		m[s] = true
	}
	return m
}
