// Package indicator holds the per-button visibility state machine and the
// tick loop that folds queued events into it.
package indicator

import "clickhalo/internal/event"

// State is the indicator state: one visible flag per button plus the last
// known pointer position, shared by both indicators. It is mutated only by
// the tick loop, so it needs no locking of its own.
//
// Visibility is a strict function of the processed event history: a button
// is visible exactly when its most recent processed event was a press with
// no release processed since. Wall-clock timing never enters into it.
type State struct {
	visible [event.NumButtons]bool
	x, y    int
}

// NewState returns the initial state: nothing visible, position at origin
// until the first motion event arrives.
func NewState() *State {
	return &State{}
}

// Apply folds one event into the state. Out-of-order OS input degrades to
// a no-op: a release without a prior press, or a duplicate press, changes
// nothing. Events for one button never touch the other's flag.
func (s *State) Apply(ev event.Event) {
	switch ev.Kind {
	case event.ButtonDown:
		if ev.Button < event.NumButtons {
			s.visible[ev.Button] = true
		}
	case event.ButtonUp:
		if ev.Button < event.NumButtons {
			s.visible[ev.Button] = false
		}
	case event.PointerMoved:
		s.x, s.y = ev.X, ev.Y
	}
}

// Visible reports whether the indicator for b is on-screen
func (s *State) Visible(b event.Button) bool {
	if b >= event.NumButtons {
		return false
	}
	return s.visible[b]
}

// Position returns the last known pointer position
func (s *State) Position() (x, y int) {
	return s.x, s.y
}

// Snapshot is the per-tick view handed to the presentation side. It is the
// only data that leaves the core.
type Snapshot struct {
	Primary   bool `json:"primary"`
	Secondary bool `json:"secondary"`
	X         int  `json:"x"`
	Y         int  `json:"y"`
}

// Snapshot returns the current state as a plain value
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Primary:   s.visible[event.Primary],
		Secondary: s.visible[event.Secondary],
		X:         s.x,
		Y:         s.y,
	}
}
