// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the server has no event with the given id
var ErrNotFound = errors.New("event not found")

// ErrNoEvent is returned by session actions before an event is loaded
var ErrNoEvent = errors.New("no event loaded")

// ValidationError reports a request the server (or the client, before
// sending) rejected as malformed
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// TransientNetworkError wraps transport failures and 5xx answers. Callers
// may retry; the session's poller simply waits for the next tick.
type TransientNetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransientNetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientNetworkError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a TransientNetworkError
func IsTransient(err error) bool {
	var te *TransientNetworkError
	return errors.As(err, &te)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
