// Package hook bridges the OS global mouse hook to the event queue. The
// hook library delivers raw events on its own goroutine; the adapter
// translates them and enqueues, never blocking the hook thread on the
// consumer.
package hook

import (
	"fmt"
	"log"
	"sync"

	gohook "github.com/robotn/gohook"

	"clickhalo/internal/event"
)

var (
	primaryButton   = gohook.MouseMap["left"]
	secondaryButton = gohook.MouseMap["right"]
)

// Adapter owns the global hook lifecycle and feeds translated events
// into the queue.
type Adapter struct {
	queue *event.Queue

	// captureMu serializes the pump's capture-check-and-enqueue with
	// EnableCapture, so a press already past the check can never land
	// behind the synthetic releases a pause enqueues.
	captureMu sync.RWMutex
	capture   bool

	mu      sync.Mutex
	running bool
	stopped chan struct{}
}

// New creates an adapter feeding the given queue. Capture starts enabled.
func New(q *event.Queue) *Adapter {
	return &Adapter{
		queue:   q,
		capture: true,
	}
}

// Start installs the global hook and begins pumping events. It returns an
// error if the adapter is already running or the hook could not be
// installed.
func (a *Adapter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return fmt.Errorf("hook adapter already running")
	}

	ch := gohook.Start()
	if ch == nil {
		return fmt.Errorf("failed to install global hook")
	}

	a.running = true
	a.stopped = make(chan struct{})
	go a.pump(ch)

	log.Printf("Hook: global hook installed")
	return nil
}

// Stop uninstalls the global hook and waits for the pump to drain. Safe
// to call when not running.
func (a *Adapter) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	stopped := a.stopped
	a.mu.Unlock()

	gohook.End()
	<-stopped
	log.Printf("Hook: global hook removed")
}

// EnableCapture toggles whether translated events reach the queue.
// Disabling capture enqueues synthetic releases for both buttons so an
// indicator visible at the moment of pausing does not stay stuck; the
// releases fold away as no-ops when nothing was held.
func (a *Adapter) EnableCapture(enabled bool) {
	a.captureMu.Lock()
	defer a.captureMu.Unlock()

	if a.capture == enabled {
		return
	}
	a.capture = enabled
	if !enabled {
		a.queue.Enqueue(event.Up(event.Primary))
		a.queue.Enqueue(event.Up(event.Secondary))
	}
	log.Printf("Hook: capture enabled: %v", enabled)
}

// CaptureEnabled reports whether events currently reach the queue.
func (a *Adapter) CaptureEnabled() bool {
	a.captureMu.RLock()
	defer a.captureMu.RUnlock()
	return a.capture
}

func (a *Adapter) pump(ch <-chan gohook.Event) {
	defer close(a.stopped)

	for raw := range ch {
		ev, ok := Translate(raw)
		if !ok {
			continue
		}
		a.captureMu.RLock()
		if a.capture {
			a.queue.Enqueue(ev)
		}
		a.captureMu.RUnlock()
	}
}

// Translate maps a raw hook event to a queue event. The second return is
// false for event kinds the indicators do not care about.
func Translate(raw gohook.Event) (event.Event, bool) {
	switch raw.Kind {
	case gohook.MouseDown:
		if b, ok := translateButton(raw.Button); ok {
			return event.Down(b), true
		}
	case gohook.MouseUp:
		if b, ok := translateButton(raw.Button); ok {
			return event.Up(b), true
		}
	case gohook.MouseMove, gohook.MouseDrag:
		return event.Move(int(raw.X), int(raw.Y)), true
	}
	return event.Event{}, false
}

func translateButton(b uint16) (event.Button, bool) {
	switch b {
	case primaryButton:
		return event.Primary, true
	case secondaryButton:
		return event.Secondary, true
	}
	return 0, false
}
