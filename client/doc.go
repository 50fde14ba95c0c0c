// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is the viewer side of syncup: an HTTP client for the API, a
live Session over one event, and the local "recent events" history.

# Client

	c := client.New("http://localhost:3000", nil)
	ev, err := c.CreateEvent(ctx, "Kickoff", 60, userID)

Errors map onto three kinds:

  - *ValidationError: the request was rejected as malformed (HTTP 400)
  - ErrNotFound: the event does not exist (HTTP 404)
  - *TransientNetworkError: transport failure, 429, or 5xx; see IsTransient

# Session

A Session holds the event state and the viewer's selection:

	s := client.NewSession(c, eventID, userID, client.WithHistory(h))
	s.Start(ctx)
	defer s.Stop()

	s.Toggle(ctx, "2024-01-08T09:00:00")
	s.FinishSetup(ctx)

Toggles are optimistic with no rollback. The poller refetches every three
seconds and its result replaces local state.

# History

	h, _ := client.OpenHistory(filepath.Join(dir, "events.json"))
	dropped, err := h.Reconcile(ctx, c)

Keeps the last 20 events. Reconcile drops events the server reports missing
and keeps cached entries it cannot reach.

# Identity

	userID, err := client.LoadOrCreateUserID(filepath.Join(dir, "user_id"))
*/
package client
