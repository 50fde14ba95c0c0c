// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier generation and validation.

There are no accounts. A viewer is whoever holds a random user id, and the
host of an event is the user id that created it.

# User IDs

Each browser or client mints one user id and reuses it for every event:

	uid := auth.GenerateUserID() // UUID v4

Incoming user ids are opaque; ValidateUserID only rejects empty, oversized,
or path-like values. The user id is also the key of a flattened PATCH field
("responses.<uid>"), so dots are not allowed.

# Event IDs

Event ids are short base62 tokens that fit in a share link:

	id, err := auth.GenerateEventID() // 8 characters

# Row IDs

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
