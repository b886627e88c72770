package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clickhalo/internal/event"
)

func apply(s *State, evs ...event.Event) {
	for _, ev := range evs {
		s.Apply(ev)
	}
}

func TestInitialState(t *testing.T) {
	s := NewState()
	assert.False(t, s.Visible(event.Primary))
	assert.False(t, s.Visible(event.Secondary))
}

func TestPressShowsReleaseHides(t *testing.T) {
	s := NewState()

	s.Apply(event.Down(event.Primary))
	assert.True(t, s.Visible(event.Primary))

	s.Apply(event.Up(event.Primary))
	assert.False(t, s.Visible(event.Primary))
}

func TestDuplicatePressIsNoOp(t *testing.T) {
	s := NewState()
	apply(s, event.Down(event.Primary), event.Down(event.Primary))
	assert.True(t, s.Visible(event.Primary))

	// one release still hides it; state is a fold, not a counter
	s.Apply(event.Up(event.Primary))
	assert.False(t, s.Visible(event.Primary))
}

func TestUnmatchedReleaseIsNoOp(t *testing.T) {
	s := NewState()
	s.Apply(event.Up(event.Primary))
	assert.False(t, s.Visible(event.Primary))

	apply(s, event.Up(event.Primary), event.Up(event.Secondary))
	assert.False(t, s.Visible(event.Primary))
	assert.False(t, s.Visible(event.Secondary))
}

func TestButtonsIndependent(t *testing.T) {
	s := NewState()

	apply(s, event.Down(event.Primary), event.Down(event.Secondary), event.Up(event.Primary))
	assert.False(t, s.Visible(event.Primary))
	assert.True(t, s.Visible(event.Secondary))

	s.Apply(event.Up(event.Secondary))
	assert.False(t, s.Visible(event.Secondary))
}

func TestMotionUpdatesPositionRegardlessOfVisibility(t *testing.T) {
	s := NewState()

	s.Apply(event.Move(100, 200))
	x, y := s.Position()
	assert.Equal(t, 100, x)
	assert.Equal(t, 200, y)
	assert.False(t, s.Visible(event.Primary))

	apply(s, event.Down(event.Primary), event.Move(300, 400))
	x, y = s.Position()
	assert.Equal(t, 300, x)
	assert.Equal(t, 400, y)
	assert.True(t, s.Visible(event.Primary))
}

func TestMotionDoesNotTouchVisibility(t *testing.T) {
	s := NewState()
	apply(s, event.Down(event.Secondary), event.Move(5, 5), event.Move(6, 6))
	assert.True(t, s.Visible(event.Secondary))
	assert.False(t, s.Visible(event.Primary))
}

func TestUnknownButtonNeverPanics(t *testing.T) {
	s := NewState()
	assert.NotPanics(t, func() {
		s.Apply(event.Event{Kind: event.ButtonDown, Button: event.Button(9)})
		s.Apply(event.Event{Kind: event.ButtonUp, Button: event.Button(9)})
		s.Apply(event.Event{Kind: event.Kind(200)})
	})
	assert.False(t, s.Visible(event.Button(9)))
}

func TestSnapshot(t *testing.T) {
	s := NewState()
	apply(s, event.Move(100, 200), event.Down(event.Primary))

	snap := s.Snapshot()
	assert.True(t, snap.Primary)
	assert.False(t, snap.Secondary)
	assert.Equal(t, 100, snap.X)
	assert.Equal(t, 200, snap.Y)
}

// TestReplayDeterminism folds the same log twice and expects identical
// snapshots: state depends only on event order, never on timing.
func TestReplayDeterminism(t *testing.T) {
	logEvents := []event.Event{
		event.Move(1, 1),
		event.Down(event.Primary),
		event.Down(event.Secondary),
		event.Move(50, 60),
		event.Up(event.Primary),
		event.Down(event.Primary),
		event.Move(70, 80),
	}

	a, b := NewState(), NewState()
	apply(a, logEvents...)
	apply(b, logEvents...)
	assert.Equal(t, a.Snapshot(), b.Snapshot())

	snap := a.Snapshot()
	assert.True(t, snap.Primary)
	assert.True(t, snap.Secondary)
	assert.Equal(t, 70, snap.X)
	assert.Equal(t, 80, snap.Y)
}
