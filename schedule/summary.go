// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// NoDatesSummary is shown for events without candidate slots
const NoDatesSummary = "No dates defined yet"

// Summarize describes the span of candidate dates, e.g.
// "60 minute event between 8 and 9 Jan 2024."
func Summarize(slots []string, duration int) string {
	dates := distinctDates(slots)
	if len(dates) == 0 {
		return NoDatesSummary
	}

	first := dates[0]
	var datePart string
	if len(dates) == 1 {
		datePart = fmt.Sprintf("on %d %s %d.", first.Day(), monthAbbr(first), first.Year())
	} else {
		last := dates[len(dates)-1]
		switch {
		case first.Year() != last.Year():
			datePart = fmt.Sprintf("between %d %s %d and %d %s %d.",
				first.Day(), monthAbbr(first), first.Year(),
				last.Day(), monthAbbr(last), last.Year())
		case first.Month() != last.Month():
			datePart = fmt.Sprintf("between %d %s and %d %s %d.",
				first.Day(), monthAbbr(first), last.Day(), monthAbbr(last), last.Year())
		default:
			datePart = fmt.Sprintf("between %d and %d %s %d.",
				first.Day(), last.Day(), monthAbbr(last), last.Year())
		}
	}

	full := datePart
	if duration > 0 {
		full = fmt.Sprintf("%d minute event %s", duration, datePart)
	}
	return strings.ToUpper(full[:1]) + full[1:]
}

func distinctDates(slots []string) []time.Time {
	seen := make(map[string]bool)
	var dates []time.Time
	for _, s := range slots {
		day, _, _ := strings.Cut(s, "T")
		if seen[day] {
			continue
		}
		seen[day] = true
		t, err := time.Parse(DateLayout, day)
		if err != nil {
			continue
		}
		dates = append(dates, t)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func monthAbbr(t time.Time) string {
	return strftime.Format("%b", t)
}
