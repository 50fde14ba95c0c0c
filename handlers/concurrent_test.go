// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/syncup/db"
	"github.com/danielhkuo/syncup/models"
	"github.com/danielhkuo/syncup/testutil"
)

// TestConcurrentResponsesFromDifferentUsers verifies that simultaneous
// submissions from different users each land in their own row
func TestConcurrentResponsesFromDifferentUsers(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewResponseHandler(conn, cfg)

	slots := []string{"2024-01-08T09:00:00", "2024-01-08T09:30:00", "2024-01-08T10:00:00"}
	ev := testutil.CreateTestEvent(t, conn, "Kickoff", "host-1")
	testutil.DefineTestSlots(t, conn, ev.ID, slots, true)

	numUsers := 10
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numUsers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/api/events/"+ev.ID+"/response", models.SubmitResponseRequest{
				UserID: fmt.Sprintf("user-%d", idx),
				Slots:  slots[:idx%len(slots)+1],
			}, nil)
			req.SetPathValue("id", ev.ID)
			w := httptest.NewRecorder()

			handler.SubmitResponse(w, req)
			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numUsers {
		t.Errorf("Expected %d successful submissions, got %d", numUsers, successCount.Load())
	}

	got, err := db.NewStore(conn).GetEvent(context.Background(), ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Responses) != numUsers {
		t.Fatalf("Expected %d response rows, got %d", numUsers, len(got.Responses))
	}
	for i := 0; i < numUsers; i++ {
		userID := fmt.Sprintf("user-%d", i)
		if want := i%len(slots) + 1; len(got.Responses[userID]) != want {
			t.Errorf("%s: expected %d slots, got %v", userID, want, got.Responses[userID])
		}
	}
}

// TestConcurrentResponsesFromSameUser verifies that racing writes for one
// user leave exactly one row holding one of the submitted sets
func TestConcurrentResponsesFromSameUser(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewResponseHandler(conn, cfg)

	slots := []string{"2024-01-08T09:00:00", "2024-01-08T09:30:00", "2024-01-08T10:00:00"}
	ev := testutil.CreateTestEvent(t, conn, "Kickoff", "host-1")
	testutil.DefineTestSlots(t, conn, ev.ID, slots, true)

	numUpdates := 10
	var wg sync.WaitGroup

	for i := 0; i < numUpdates; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/api/events/"+ev.ID+"/response", models.SubmitResponseRequest{
				UserID: "racer",
				Slots:  []string{slots[idx%len(slots)]},
			}, nil)
			req.SetPathValue("id", ev.ID)
			w := httptest.NewRecorder()

			handler.SubmitResponse(w, req)
			// Which write wins is unspecified
		}(i)
	}

	wg.Wait()

	var rows int
	if err := conn.QueryRow("SELECT COUNT(*) FROM response WHERE event_id = $1 AND user_id = $2", ev.ID, "racer").Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("Expected 1 response row, got %d", rows)
	}

	got, err := db.NewStore(conn).GetEvent(context.Background(), ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Responses["racer"]) != 1 {
		t.Errorf("Expected one of the submitted single-slot sets, got %v", got.Responses["racer"])
	}
}

// TestConcurrentPatchAndSubmit verifies that a host PATCH and an invitee
// submit on the same event don't clobber each other
func TestConcurrentPatchAndSubmit(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	eventHandler := NewEventHandler(conn, cfg)
	responseHandler := NewResponseHandler(conn, cfg)

	ev := testutil.CreateTestEvent(t, conn, "Kickoff", "host-1")
	testutil.DefineTestSlots(t, conn, ev.ID, []string{"2024-01-08T09:00:00"}, true)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		req := testutil.MakeRequest("PATCH", "/api/events/"+ev.ID, models.UpdateEventRequest{
			Responses: map[string][]string{"host-1": {"2024-01-08T09:00:00"}},
		}, nil)
		req.SetPathValue("id", ev.ID)
		eventHandler.UpdateEvent(httptest.NewRecorder(), req)
	}()

	go func() {
		defer wg.Done()
		req := testutil.MakeRequest("POST", "/api/events/"+ev.ID+"/response", models.SubmitResponseRequest{
			UserID: "guest-1",
			Slots:  []string{"2024-01-08T09:00:00"},
		}, nil)
		req.SetPathValue("id", ev.ID)
		responseHandler.SubmitResponse(httptest.NewRecorder(), req)
	}()

	wg.Wait()

	got, err := db.NewStore(conn).GetEvent(context.Background(), ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Responses) != 2 {
		t.Errorf("Expected both responses to survive, got %v", got.Responses)
	}
}
