package instrument

import (
	"context"
	"sync"
	"sync/atomic"
)

// Sink receives cell events. Implementations must not panic for known tags.
type Sink interface {
	Emit(ev CellEvent)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ev CellEvent)

// Emit calls f(ev)
func (f SinkFunc) Emit(ev CellEvent) {
	f(ev)
}

// Discard drops every event
var Discard Sink = SinkFunc(func(CellEvent) {})

// Multi fans an event out to several sinks in order
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ev CellEvent) {
		for _, s := range sinks {
			s.Emit(ev)
		}
	})
}

// Recorder keeps every event it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []CellEvent
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit appends ev
func (r *Recorder) Emit(ev CellEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []CellEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CellEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Count returns how many events carry tag
func (r *Recorder) Count(tag Tag) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Tag == tag {
			n++
		}
	}
	return n
}

// TagsAt returns the tag sequence recorded for one cell
func (r *Recorder) TagsAt(x, y int) []Tag {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tags []Tag
	for _, ev := range r.events {
		if ev.X == x && ev.Y == y {
			tags = append(tags, ev.Tag)
		}
	}
	return tags
}

// Reset forgets all recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Paced forwards events to a sink and passes the gate after each one
type Paced struct {
	ctx   context.Context
	next  Sink
	gate  *Gate
	count atomic.Int64
}

// NewPaced wraps next so every event is followed by gate.Pass(ctx).
// A nil gate forwards without pausing or sleeping.
func NewPaced(ctx context.Context, next Sink, gate *Gate) *Paced {
	return &Paced{ctx: ctx, next: next, gate: gate}
}

// Emit forwards ev and then blocks on the gate
func (p *Paced) Emit(ev CellEvent) {
	p.next.Emit(ev)
	p.count.Add(1)
	if p.gate != nil {
		// Cancellation is observed by the algorithm loop through ctx.Err().
		_ = p.gate.Pass(p.ctx)
	}
}

// Count returns the number of events forwarded so far
func (p *Paced) Count() int64 {
	return p.count.Load()
}
