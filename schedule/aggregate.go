// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"sort"
	"time"

	"github.com/danielhkuo/syncup/models"
)

// Indicator is the vote marker drawn in a cell
type Indicator string

const (
	IndicatorNone   Indicator = "none"
	IndicatorHollow Indicator = "hollow"
	IndicatorSolid  Indicator = "solid"
)

// Tally holds event-wide vote counts
type Tally struct {
	Votes           map[string]int
	MaxVotes        int
	TotalResponders int
}

// CountVotes counts, per slot, the users whose response set contains it.
// A user listing a slot twice still counts once.
func CountVotes(responses map[string][]string) Tally {
	t := Tally{
		Votes:           make(map[string]int),
		TotalResponders: len(responses),
	}
	for _, slots := range responses {
		seen := make(map[string]bool, len(slots))
		for _, s := range slots {
			if seen[s] {
				continue
			}
			seen[s] = true
			t.Votes[s]++
			if t.Votes[s] > t.MaxVotes {
				t.MaxVotes = t.Votes[s]
			}
		}
	}
	return t
}

// Indicator returns solid for slots at the event-wide maximum, hollow for any
// other voted slot.
func (t Tally) Indicator(slot string) Indicator {
	n := t.Votes[slot]
	switch {
	case n == 0:
		return IndicatorNone
	case n == t.MaxVotes:
		return IndicatorSolid
	default:
		return IndicatorHollow
	}
}

// Best lists the slots holding the maximum vote count, sorted
func (t Tally) Best() []string {
	best := []string{}
	if t.MaxVotes == 0 {
		return best
	}
	for slot, n := range t.Votes {
		if n == t.MaxVotes {
			best = append(best, slot)
		}
	}
	sort.Strings(best)
	return best
}

// IsDefined decides selectability. Setup phase offers every future slot;
// open phase offers only future candidate slots.
func IsDefined(setup bool, defined []string, slot string, now time.Time) bool {
	if IsPast(slot, now) {
		return false
	}
	if setup {
		return true
	}
	return Contains(defined, slot)
}

// Cell is the derived view state of one slot
type Cell struct {
	ID              string
	VoteCount       int
	TotalResponders int
	IsDefined       bool
	IsSelected      bool
	IsPast          bool
	IsMax           bool
	Indicator       Indicator
}

// GridRow pairs a projected row with its cells
type GridRow struct {
	Row
	Cells []Cell
}

// Grid is a projected week annotated for one viewer
type Grid struct {
	Week     Week
	Rows     []GridRow
	Phase    Phase
	MaxVotes int
}

// BuildGrid annotates week with vote and selectability data for viewerID.
// selection is the viewer's own response set as currently held locally.
func BuildGrid(week Week, ev models.Event, viewerID string, selection []string, now time.Time) Grid {
	setup := IsSetupPhase(ev, viewerID)
	tally := CountVotes(ev.Responses)
	selected := toSet(selection)

	grid := Grid{
		Week:     week,
		Phase:    ResolvePhase(ev, viewerID),
		MaxVotes: tally.MaxVotes,
	}

	for _, row := range week.Rows {
		gr := GridRow{Row: row}
		for _, id := range row.Slots {
			votes := tally.Votes[id]
			gr.Cells = append(gr.Cells, Cell{
				ID:              id,
				VoteCount:       votes,
				TotalResponders: tally.TotalResponders,
				IsDefined:       IsDefined(setup, ev.DefinedSlots, id, now),
				IsSelected:      selected[id],
				IsPast:          IsPast(id, now),
				IsMax:           votes > 0 && votes == tally.MaxVotes,
				Indicator:       tally.Indicator(id),
			})
		}
		grid.Rows = append(grid.Rows, gr)
	}

	return grid
}

// Cell finds a cell by slot identifier
func (g Grid) Cell(id string) (Cell, bool) {
	for _, row := range g.Rows {
		for _, c := range row.Cells {
			if c.ID == id {
				return c, true
			}
		}
	}
	return Cell{}, false
}
