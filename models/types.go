// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultDuration is applied when an event is created without a duration (minutes)
const DefaultDuration = 60

// Participant roles
const (
	RoleHost    = "host"
	RoleInvitee = "invitee"
)

// ResponseKeyPrefix marks a per-user response entry inside an event PATCH body
const ResponseKeyPrefix = "responses."

// Request types

type CreateEventRequest struct {
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	HostID   string `json:"hostId"`
}

// UpdateEventRequest is the PATCH body for an event. Only recognized fields are
// applied. Response entries travel as flattened "responses.<uid>" keys.
type UpdateEventRequest struct {
	DefinedSlots  []string
	SetupComplete *bool
	Responses     map[string][]string
}

func (u *UpdateEventRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = UpdateEventRequest{}

	if v, ok := raw["definedSlots"]; ok && !isNull(v) {
		var slots []string
		if err := json.Unmarshal(v, &slots); err != nil {
			return err
		}
		if slots == nil {
			slots = []string{}
		}
		u.DefinedSlots = slots
	}

	if v, ok := raw["setupComplete"]; ok && !isNull(v) {
		var done bool
		if err := json.Unmarshal(v, &done); err != nil {
			return err
		}
		u.SetupComplete = &done
	}

	for key, v := range raw {
		if !strings.HasPrefix(key, ResponseKeyPrefix) {
			continue
		}
		userID := strings.TrimPrefix(key, ResponseKeyPrefix)
		if userID == "" || isNull(v) {
			continue
		}
		var slots []string
		if err := json.Unmarshal(v, &slots); err != nil {
			return err
		}
		if slots == nil {
			slots = []string{}
		}
		if u.Responses == nil {
			u.Responses = make(map[string][]string)
		}
		u.Responses[userID] = slots
	}

	return nil
}

func (u UpdateEventRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]any)
	if u.DefinedSlots != nil {
		out["definedSlots"] = u.DefinedSlots
	}
	if u.SetupComplete != nil {
		out["setupComplete"] = *u.SetupComplete
	}
	for userID, slots := range u.Responses {
		if slots == nil {
			slots = []string{}
		}
		out[ResponseKeyPrefix+userID] = slots
	}
	return json.Marshal(out)
}

// Empty reports whether the request carries no recognized field
func (u UpdateEventRequest) Empty() bool {
	return u.DefinedSlots == nil && u.SetupComplete == nil && len(u.Responses) == 0
}

func isNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) == "null"
}

type SubmitResponseRequest struct {
	UserID string   `json:"userId"`
	Slots  []string `json:"slots"`
}

// Response types

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Domain types

// Event is the persisted scheduling event. A nil SetupComplete means the flag
// was never set; the store always writes it.
type Event struct {
	ID            string              `json:"id"`
	HostID        string              `json:"hostId"`
	Name          string              `json:"name"`
	Duration      int                 `json:"duration"`
	CreatedAt     time.Time           `json:"createdAt"`
	DefinedSlots  []string            `json:"definedSlots"`
	SetupComplete *bool               `json:"setupComplete,omitempty"`
	Responses     map[string][]string `json:"responses"`
}

// Clone returns a deep copy so derived state can be edited without aliasing
func (e Event) Clone() Event {
	out := e
	if e.DefinedSlots != nil {
		out.DefinedSlots = append([]string{}, e.DefinedSlots...)
	}
	if e.SetupComplete != nil {
		done := *e.SetupComplete
		out.SetupComplete = &done
	}
	if e.Responses != nil {
		out.Responses = make(map[string][]string, len(e.Responses))
		for userID, slots := range e.Responses {
			out.Responses[userID] = append([]string{}, slots...)
		}
	}
	return out
}

// Participant summary types

type ParticipantEventSummary struct {
	EventID       string    `json:"eventId"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	DateSummary   string    `json:"dateSummary"`
	SetupComplete bool      `json:"setupComplete"`
	ResponseCount int       `json:"responseCount"`
	LinkedAt      time.Time `json:"linkedAt"`
}

type GetMyEventsResponse struct {
	Events []ParticipantEventSummary `json:"events"`
}

// History types

// HistoryEntry is one "recent events" item kept on the viewer's machine
type HistoryEntry struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	LastVisited   time.Time `json:"lastVisited"`
	DateSummary   string    `json:"dateSummary"`
	IsOwner       bool      `json:"isOwner"`
	ResponseCount int       `json:"responseCount"`
}

// Grid payload types

type DayHeader struct {
	Label   string `json:"label"`
	Date    string `json:"isoDate"`
	IsToday bool   `json:"isToday"`
}

type GridCell struct {
	ID              string `json:"id"`
	VoteCount       int    `json:"voteCount"`
	TotalResponders int    `json:"totalResponders"`
	IsDefined       bool   `json:"isDefined"`
	IsSelected      bool   `json:"isSelected"`
	IsPast          bool   `json:"isPast"`
	Indicator       string `json:"indicator"`
}

type GridRow struct {
	Time      string     `json:"time"`
	TimeLabel string     `json:"timeLabel"`
	Cells     []GridCell `json:"cells"`
}

type GridResponse struct {
	WeekStart   string      `json:"weekStart"`
	Headers     []DayHeader `json:"headers"`
	Rows        []GridRow   `json:"rows"`
	IsSetupMode bool        `json:"isSetupMode"`
	MaxVotes    int         `json:"maxVotes"`
	BestSlots   []string    `json:"bestSlots"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
