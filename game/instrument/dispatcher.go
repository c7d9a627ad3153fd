package instrument

import "sync"

// Dispatcher hands events from a worker goroutine to a single consumer
// goroutine through a buffered channel. The consumer sink is only ever called
// from that goroutine, so it may own state the worker must not touch.
type Dispatcher struct {
	queue  chan queued
	target Sink
	quit   chan struct{}
	done   chan struct{}

	closeOnce sync.Once
}

// queued is an event or, when flushed is set, a flush marker
type queued struct {
	ev      CellEvent
	flushed chan struct{}
}

// NewDispatcher starts the consumer goroutine
func NewDispatcher(target Sink, buffer int) *Dispatcher {
	if buffer < 0 {
		buffer = 0
	}
	d := &Dispatcher{
		queue:  make(chan queued, buffer),
		target: target,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Emit queues ev for the consumer. Events posted after Close are dropped.
func (d *Dispatcher) Emit(ev CellEvent) {
	d.enqueue(queued{ev: ev})
}

// Flush blocks until every event queued before the call has been delivered.
// It returns immediately once the dispatcher is closed.
func (d *Dispatcher) Flush() {
	marker := make(chan struct{})
	if !d.enqueue(queued{flushed: marker}) {
		return
	}
	select {
	case <-marker:
	case <-d.done:
	}
}

func (d *Dispatcher) enqueue(item queued) bool {
	select {
	case <-d.quit:
		return false
	default:
	}

	select {
	case d.queue <- item:
		return true
	case <-d.quit:
		return false
	}
}

// Close delivers every queued event, stops the consumer and waits for it
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.quit)
	})
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		select {
		case item := <-d.queue:
			d.deliver(item)
		case <-d.quit:
			for {
				select {
				case item := <-d.queue:
					d.deliver(item)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(item queued) {
	if item.flushed != nil {
		close(item.flushed)
		return
	}
	d.target.Emit(item.ev)
}
