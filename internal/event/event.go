// Package event defines the mouse event values and the producer/consumer
// queue that carries them from the global hook to the indicator loop.
package event

// Button identifies a tracked mouse button
type Button uint8

const (
	// Primary is the left mouse button
	Primary Button = iota

	// Secondary is the right mouse button
	Secondary

	// NumButtons is the number of tracked buttons
	NumButtons
)

// String returns a readable button name
func (b Button) String() string {
	switch b {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	}
	return "unknown"
}

// Kind identifies what an event describes
type Kind uint8

const (
	// ButtonDown means a button transitioned to pressed
	ButtonDown Kind = iota + 1

	// ButtonUp means a button transitioned to released
	ButtonUp

	// PointerMoved means the cursor moved to an absolute position
	PointerMoved
)

// Event is one input occurrence. It is a plain value carrying no reference
// to shared state, so it can cross the hook thread boundary freely.
type Event struct {
	Kind   Kind
	Button Button // valid for ButtonDown/ButtonUp
	X, Y   int    // valid for PointerMoved
}

// Down returns a press event for the given button
func Down(b Button) Event {
	return Event{Kind: ButtonDown, Button: b}
}

// Up returns a release event for the given button
func Up(b Button) Event {
	return Event{Kind: ButtonUp, Button: b}
}

// Move returns a pointer motion event with absolute screen coordinates
func Move(x, y int) Event {
	return Event{Kind: PointerMoved, X: x, Y: y}
}
