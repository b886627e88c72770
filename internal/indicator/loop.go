package indicator

import (
	"log"
	"sync"
	"time"

	"clickhalo/internal/event"
)

// Sink receives the state snapshot after a tick that processed events.
// Implementations are the overlay renderer and the API broadcaster.
type Sink interface {
	Render(Snapshot)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(Snapshot)

// Render calls f
func (f SinkFunc) Render(snap Snapshot) { f(snap) }

// Loop is the single consumer of the event queue. Once per tick it drains
// everything queued, folds the events into the state in order, and hands
// the resulting snapshot to each sink.
type Loop struct {
	queue *event.Queue
	state *State
	sinks []Sink

	mu       sync.Mutex
	interval time.Duration
	reset    chan struct{}
	stop     chan struct{}
	done     chan struct{}
	started  bool
}

// NewLoop creates a loop ticking at the given interval
func NewLoop(q *event.Queue, interval time.Duration) *Loop {
	return &Loop{
		queue:    q,
		state:    NewState(),
		interval: interval,
		reset:    make(chan struct{}, 1),
	}
}

// AddSink registers a sink. Must be called before Start.
func (l *Loop) AddSink(s Sink) {
	l.sinks = append(l.sinks, s)
}

// Start begins ticking in a goroutine. The stop and done channels are
// remade on every Start so a stopped loop can be started again.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	interval := l.interval
	l.mu.Unlock()

	log.Printf("Loop: ticking every %v", interval)
	go l.run()
}

// Stop halts ticking and waits for the tick goroutine to exit. Events
// still queued are discarded with the queue; the hook is torn down
// separately by its own teardown. Safe to call when not running.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return
	}
	l.started = false
	stop := l.stop
	done := l.done
	l.mu.Unlock()

	close(stop)
	<-done
}

// SetInterval changes the tick cadence on the next tick
func (l *Loop) SetInterval(interval time.Duration) {
	l.mu.Lock()
	l.interval = interval
	l.mu.Unlock()

	select {
	case l.reset <- struct{}{}:
	default:
	}
	log.Printf("Loop: tick interval set to %v", interval)
}

// Snapshot returns the current state without waiting for a tick. Meant for
// the API's read path; the value may be one tick stale, which is fine for
// a status endpoint.
func (l *Loop) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Snapshot()
}

func (l *Loop) run() {
	l.mu.Lock()
	stop := l.stop
	done := l.done
	ticker := time.NewTicker(l.interval)
	l.mu.Unlock()
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Tick()
		case <-l.reset:
			l.mu.Lock()
			ticker.Reset(l.interval)
			l.mu.Unlock()
		case <-stop:
			return
		}
	}
}

// Tick drains the queue and folds every event into the state in order,
// then publishes the snapshot to the sinks if anything was processed.
// A panic out of a sink loses this tick's render, not the process: the
// overlay recovering one tick late beats the overlay being gone.
func (l *Loop) Tick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Loop: recovered from tick panic: %v", r)
		}
	}()

	drained := l.queue.DrainAll()
	if len(drained) == 0 {
		return
	}

	l.mu.Lock()
	for _, ev := range drained {
		l.state.Apply(ev)
	}
	snap := l.state.Snapshot()
	l.mu.Unlock()

	for _, s := range l.sinks {
		s.Render(snap)
	}
}
