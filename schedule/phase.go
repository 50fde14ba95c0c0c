// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import "github.com/danielhkuo/syncup/models"

// Phase is the event phase as seen by one viewer
type Phase string

const (
	PhaseSetup Phase = "setup"
	PhaseOpen  Phase = "open"
)

// IsSetupPhase reports whether viewerID sees the event in setup phase.
// Only the host ever does; everyone else always gets open-phase semantics,
// whatever the event's own flag says.
func IsSetupPhase(ev models.Event, viewerID string) bool {
	if viewerID == "" || viewerID != ev.HostID {
		return false
	}
	if ev.SetupComplete != nil {
		return !*ev.SetupComplete
	}
	return len(ev.DefinedSlots) == 0
}

// ResolvePhase is IsSetupPhase as a Phase value
func ResolvePhase(ev models.Event, viewerID string) Phase {
	if IsSetupPhase(ev, viewerID) {
		return PhaseSetup
	}
	return PhaseOpen
}
