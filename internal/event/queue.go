package event

import "sync"

// Queue is the bridge between the hook callbacks and the indicator loop.
// Any number of producers may call Enqueue concurrently; exactly one
// consumer calls DrainAll once per tick. Both operations are a single
// short critical section, so enqueue order is exactly the order the lock
// serialized and no event is ever observed twice or lost.
//
// The queue grows without bound if the consumer stalls. That is deliberate:
// dropping input would let an indicator stick on a missed release, which is
// worse than memory growth during a stall.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends one event. Safe to call from any goroutine, including
// the hook's own thread. Never blocks beyond the append itself.
func (q *Queue) Enqueue(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// DrainAll removes and returns every queued event in FIFO order, leaving
// the queue empty. Returns nil when there is nothing queued. Only the
// single consumer may call this.
func (q *Queue) DrainAll() []Event {
	q.mu.Lock()
	drained := q.events
	q.events = nil
	q.mu.Unlock()
	return drained
}

// Len reports how many events are currently queued
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
