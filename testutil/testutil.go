// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/syncup/cliparse"
	"github.com/danielhkuo/syncup/db"
	"github.com/danielhkuo/syncup/models"
	_ "modernc.org/sqlite"
)

// TestDBURL is a private in-memory SQLite database. With a single open
// connection every query in a test sees the same database.
const TestDBURL = "file::memory:?_pragma=foreign_keys(1)"

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration with rate limiting off
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  TestDBURL,
		DatabaseType: db.TypeSQLite,
		DataDir:      ".",
		RateLimit:    0,
		RateBurst:    1,
		LogLevel:     "error",
	}
}

// CreateTestEvent creates an event hosted by hostID and returns it
func CreateTestEvent(t *testing.T, conn *sql.DB, name, hostID string) *models.Event {
	t.Helper()

	store := db.NewStore(conn)
	ev, err := store.CreateEvent(context.Background(), name, models.DefaultDuration, hostID)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	if err := store.LinkParticipant(context.Background(), hostID, ev.ID, models.RoleHost); err != nil {
		t.Fatalf("Failed to link test host: %v", err)
	}
	return ev
}

// DefineTestSlots stores candidate slots for an event and optionally closes setup
func DefineTestSlots(t *testing.T, conn *sql.DB, eventID string, slots []string, setupComplete bool) {
	t.Helper()

	done := setupComplete
	err := db.NewStore(conn).UpdateEvent(context.Background(), eventID, models.UpdateEventRequest{
		DefinedSlots:  slots,
		SetupComplete: &done,
	})
	if err != nil {
		t.Fatalf("Failed to define test slots: %v", err)
	}
}

// SubmitTestResponse stores one user's response set
func SubmitTestResponse(t *testing.T, conn *sql.DB, eventID, userID string, slots []string) {
	t.Helper()

	if err := db.NewStore(conn).UpsertResponse(context.Background(), eventID, userID, slots); err != nil {
		t.Fatalf("Failed to submit test response: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
