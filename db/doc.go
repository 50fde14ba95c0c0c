// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation, and event storage.

# Connecting

Open picks the driver from the configuration:

	conn, err := db.Open(cfg) // sqlite (modernc.org/sqlite) or postgres (lib/pq)

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same statements run on PostgreSQL and SQLite.

# Tables

  - event: host, name, duration, candidate slots (JSON), setup flag
  - response: one slot set (JSON) per (event, user)
  - participant: user ids seen by the server
  - participant_event: links participants to events they host or answered

# Relationships

	event 1──* response
	participant *──* event (via participant_event)

Foreign keys use ON DELETE CASCADE; DeleteEvent also removes dependent rows
explicitly.

# Store

Store is the storage contract used by the handlers:

	store := db.NewStore(conn)
	ev, err := store.CreateEvent(ctx, "Kickoff", 60, hostID)
	err = store.UpdateEvent(ctx, ev.ID, upd)
	err = store.UpsertResponse(ctx, ev.ID, userID, slots)
	err = store.DeleteEvent(ctx, ev.ID)

Response writes replace the user's whole set. There is no versioning: the
last write for a user wins.
*/
package db
