// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/syncup/models"
)

// DefaultTimeout bounds a single API call
const DefaultTimeout = 10 * time.Second

// Client talks to the syncup HTTP API
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL (e.g. http://host:3000).
// A nil httpClient gets one with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// CreateEvent creates an event hosted by hostID. Missing name or host id is
// rejected before any request is sent.
func (c *Client) CreateEvent(ctx context.Context, name string, duration int, hostID string) (*models.Event, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Message: "name is required"}
	}
	if hostID == "" {
		return nil, &ValidationError{Message: "hostId is required"}
	}

	var ev models.Event
	err := c.do(ctx, "create event", http.MethodPost, "/api/events", models.CreateEventRequest{
		Name:     name,
		Duration: duration,
		HostID:   hostID,
	}, &ev)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// GetEvent fetches the authoritative event state
func (c *Client) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var ev models.Event
	if err := c.do(ctx, "get event", http.MethodGet, "/api/events/"+url.PathEscape(id), nil, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// UpdateEvent sends a PATCH with the recognized fields of upd
func (c *Client) UpdateEvent(ctx context.Context, id string, upd models.UpdateEventRequest) error {
	return c.do(ctx, "update event", http.MethodPatch, "/api/events/"+url.PathEscape(id), upd, nil)
}

// SubmitResponse replaces the user's whole response set
func (c *Client) SubmitResponse(ctx context.Context, eventID, userID string, slots []string) error {
	if slots == nil {
		slots = []string{}
	}
	return c.do(ctx, "submit response", http.MethodPost, "/api/events/"+url.PathEscape(eventID)+"/response",
		models.SubmitResponseRequest{UserID: userID, Slots: slots}, nil)
}

// DeleteEvent removes the event and all its responses
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, "delete event", http.MethodDelete, "/api/events/"+url.PathEscape(id), nil, nil)
}

// do sends one JSON request and maps the outcome onto the error taxonomy
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransientNetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return &ValidationError{Message: errorMessage(resp.Body)}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &TransientNetworkError{Op: op, Status: resp.StatusCode}
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, errorMessage(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransientNetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func errorMessage(r io.Reader) string {
	var e models.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&e); err != nil {
		return "request rejected"
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// ShareURL builds the invite link for an event: <base>?eventId=<id>
func ShareURL(base, eventID string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?eventId=" + url.QueryEscape(eventID)
	}
	q := u.Query()
	q.Set("eventId", eventID)
	u.RawQuery = q.Encode()
	return u.String()
}
