package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clickhalo/internal/event"
)

type captureSink struct {
	snaps []Snapshot
}

func (c *captureSink) Render(snap Snapshot) {
	c.snaps = append(c.snaps, snap)
}

func TestTickDrainsAndPublishes(t *testing.T) {
	q := event.NewQueue()
	l := NewLoop(q, time.Second)
	sink := &captureSink{}
	l.AddSink(sink)

	q.Enqueue(event.Down(event.Primary))
	l.Tick()

	require.Len(t, sink.snaps, 1)
	assert.True(t, sink.snaps[0].Primary)
	assert.Equal(t, 0, q.Len())

	q.Enqueue(event.Up(event.Primary))
	l.Tick()

	require.Len(t, sink.snaps, 2)
	assert.False(t, sink.snaps[1].Primary)
}

func TestTickEmptyQueuePublishesNothing(t *testing.T) {
	l := NewLoop(event.NewQueue(), time.Second)
	sink := &captureSink{}
	l.AddSink(sink)

	l.Tick()
	assert.Empty(t, sink.snaps)
}

// A whole tick's worth of events folds before anything is rendered, so a
// press and release arriving in the same tick publish only the final state.
func TestTickFoldsWholeDrainBeforeRender(t *testing.T) {
	q := event.NewQueue()
	l := NewLoop(q, time.Second)
	sink := &captureSink{}
	l.AddSink(sink)

	q.Enqueue(event.Down(event.Primary))
	q.Enqueue(event.Down(event.Secondary))
	q.Enqueue(event.Up(event.Primary))
	l.Tick()

	require.Len(t, sink.snaps, 1)
	assert.False(t, sink.snaps[0].Primary)
	assert.True(t, sink.snaps[0].Secondary)
}

func TestTickMotionThenPress(t *testing.T) {
	q := event.NewQueue()
	l := NewLoop(q, time.Second)
	sink := &captureSink{}
	l.AddSink(sink)

	q.Enqueue(event.Move(100, 200))
	q.Enqueue(event.Down(event.Primary))
	l.Tick()

	require.Len(t, sink.snaps, 1)
	assert.True(t, sink.snaps[0].Primary)
	assert.Equal(t, 100, sink.snaps[0].X)
	assert.Equal(t, 200, sink.snaps[0].Y)
}

// State must survive ticks with nothing queued: a press in one tick stays
// visible through later empty ticks until the release is processed.
func TestVisibilityPersistsAcrossEmptyTicks(t *testing.T) {
	q := event.NewQueue()
	l := NewLoop(q, time.Second)

	q.Enqueue(event.Down(event.Primary))
	l.Tick()
	l.Tick()
	l.Tick()

	assert.True(t, l.Snapshot().Primary)
}

type panicSink struct {
	calls int
}

func (p *panicSink) Render(Snapshot) {
	p.calls++
	panic("render blew up")
}

// A sink panic costs one tick, never the loop.
func TestTickRecoversFromSinkPanic(t *testing.T) {
	q := event.NewQueue()
	l := NewLoop(q, time.Second)
	sink := &panicSink{}
	l.AddSink(sink)

	q.Enqueue(event.Down(event.Primary))
	assert.NotPanics(t, func() { l.Tick() })
	assert.Equal(t, 1, sink.calls)

	// the fold still happened before the render panicked
	assert.True(t, l.Snapshot().Primary)

	q.Enqueue(event.Up(event.Primary))
	assert.NotPanics(t, func() { l.Tick() })
	assert.False(t, l.Snapshot().Primary)
}

func TestLoopStartStop(t *testing.T) {
	q := event.NewQueue()
	l := NewLoop(q, 5*time.Millisecond)
	sink := &captureSink{}
	done := make(chan struct{})
	l.AddSink(SinkFunc(func(snap Snapshot) {
		sink.Render(snap)
		select {
		case <-done:
		default:
			close(done)
		}
	}))

	l.Start()
	q.Enqueue(event.Down(event.Secondary))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop never ticked")
	}
	l.Stop()

	require.NotEmpty(t, sink.snaps)
	assert.True(t, sink.snaps[0].Secondary)

	// Stop twice must be safe
	assert.NotPanics(t, func() { l.Stop() })
}

// A stopped loop can be started again; the control channels are remade
// per Start, so the second cycle must tick and stop cleanly too.
func TestLoopRestart(t *testing.T) {
	q := event.NewQueue()
	l := NewLoop(q, 5*time.Millisecond)

	renders := make(chan Snapshot, 16)
	l.AddSink(SinkFunc(func(snap Snapshot) { renders <- snap }))

	waitRender := func() Snapshot {
		t.Helper()
		select {
		case snap := <-renders:
			return snap
		case <-time.After(2 * time.Second):
			t.Fatal("loop never rendered")
			return Snapshot{}
		}
	}

	l.Start()
	q.Enqueue(event.Down(event.Primary))
	assert.True(t, waitRender().Primary)
	l.Stop()

	l.Start()
	q.Enqueue(event.Up(event.Primary))
	snap := waitRender()
	assert.NotPanics(t, func() { l.Stop() })
	assert.False(t, snap.Primary)
}
