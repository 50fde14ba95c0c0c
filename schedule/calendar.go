// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// Visible grid window
const (
	DaysPerWeek     = 7
	StartHour       = 8
	EndHour         = 22
	IntervalMinutes = 30
)

// Day is one column header of a projected week
type Day struct {
	Date    time.Time
	ISODate string
	Label   string
	IsToday bool
}

// Row is one time-of-day row; Slots holds one identifier per day, in column order
type Row struct {
	Time  string
	Label string
	Slots []string
}

// Week is the projection of one Monday-anchored week onto the slot grid
type Week struct {
	Start time.Time
	Days  []Day
	Rows  []Row
}

// StartOfWeek returns local midnight of the Monday on or before t
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// ShiftWeeks moves an anchor by n whole weeks, keeping wall-clock midnight
func ShiftWeeks(anchor time.Time, n int) time.Time {
	start := StartOfWeek(anchor)
	y, m, d := start.Date()
	return time.Date(y, m, d+7*n, 0, 0, 0, 0, start.Location())
}

// TimesOfDay lists the row times of the grid as HH:MM:SS
func TimesOfDay() []string {
	times := make([]string, 0, (EndHour-StartHour)*60/IntervalMinutes)
	for h := StartHour; h < EndHour; h++ {
		for m := 0; m < 60; m += IntervalMinutes {
			times = append(times, fmt.Sprintf("%02d:%02d:00", h, m))
		}
	}
	return times
}

// Project maps the week containing anchor onto the slot grid. now only
// decides which header is flagged as today.
func Project(anchor, now time.Time) Week {
	start := StartOfWeek(anchor)
	today := now.In(start.Location()).Format(DateLayout)

	week := Week{Start: start}
	y, m, d := start.Date()
	for i := 0; i < DaysPerWeek; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, start.Location())
		iso := day.Format(DateLayout)
		week.Days = append(week.Days, Day{
			Date:    day,
			ISODate: iso,
			Label:   DayLabel(day),
			IsToday: iso == today,
		})
	}

	for _, tod := range TimesOfDay() {
		row := Row{Time: tod, Label: TimeLabel(tod)}
		for _, day := range week.Days {
			row.Slots = append(row.Slots, day.ISODate+"T"+tod)
		}
		week.Rows = append(week.Rows, row)
	}

	return week
}

// Slots flattens the week into identifiers, row-major
func (w Week) Slots() []string {
	out := make([]string, 0, len(w.Rows)*DaysPerWeek)
	for _, row := range w.Rows {
		out = append(out, row.Slots...)
	}
	return out
}

// DayLabel renders a header such as "Mon, Jan 8"
func DayLabel(day time.Time) string {
	return strftime.Format("%a, %b ", day) + strconv.Itoa(day.Day())
}

// TimeLabel renders HH:MM:SS as "9:00 AM"
func TimeLabel(tod string) string {
	t, err := time.Parse(TimeLayout, tod)
	if err != nil {
		return tod
	}
	return strings.TrimPrefix(strftime.Format("%I:%M %p", t), "0")
}

// InitialView picks the week of the earliest candidate slot and the first
// row worth showing: the earliest time of day across candidates, floored to
// the grid interval. ok is false when no candidate parses. Rows stored before
// ids were checked against the grid are still read, by shape alone.
func InitialView(defined []string, loc *time.Location) (anchor time.Time, row string, ok bool) {
	minMinutes := -1
	for _, id := range defined {
		t, err := time.ParseInLocation(SlotLayout, id, loc)
		if err != nil {
			continue
		}
		if !ok || t.Before(anchor) {
			anchor = t
		}
		ok = true
		mins := t.Hour()*60 + t.Minute()
		if minMinutes < 0 || mins < minMinutes {
			minMinutes = mins
		}
	}
	if !ok {
		return time.Time{}, "", false
	}

	rounded := minMinutes / IntervalMinutes * IntervalMinutes
	row = fmt.Sprintf("%02d:%02d:00", rounded/60, rounded%60)
	return StartOfWeek(anchor), row, true
}
