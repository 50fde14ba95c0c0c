// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import "errors"

// Toggle rejections. Callers treat these as silent no-ops.
var (
	ErrInvalidSlot   = errors.New("invalid slot identifier")
	ErrPastSlot      = errors.New("slot is in the past")
	ErrUndefinedSlot = errors.New("slot is not a candidate time")
)

// Finalize preconditions
var (
	ErrNotHost     = errors.New("only the host can finish setup")
	ErrSetupClosed = errors.New("event is not in setup phase")
)
