package instrument

import (
	"context"
	"sync"
	"time"
)

// Gate is the pause/step/speed control between a worker and its controller.
// The zero value is not usable; create gates with NewGate.
type Gate struct {
	mu     sync.Mutex
	paused bool
	steps  int
	delay  time.Duration
	// wake is closed and replaced whenever paused or steps change.
	wake chan struct{}
}

// NewGate creates an open gate with the given per-event delay
func NewGate(delay time.Duration) *Gate {
	if delay < 0 {
		delay = 0
	}
	return &Gate{delay: delay, wake: make(chan struct{})}
}

// Pause closes the gate
func (g *Gate) Pause() {
	g.mu.Lock()
	g.paused = true
	g.broadcastLocked()
	g.mu.Unlock()
}

// Resume reopens the gate and drops any unused step permits
func (g *Gate) Resume() {
	g.mu.Lock()
	g.paused = false
	g.steps = 0
	g.broadcastLocked()
	g.mu.Unlock()
}

// Step lets exactly one more event through and leaves the gate closed after it.
// Calling Step on an open gate closes it once the next event has passed.
func (g *Gate) Step() {
	g.mu.Lock()
	g.paused = true
	g.steps++
	g.broadcastLocked()
	g.mu.Unlock()
}

// Reset reopens the gate for a new run
func (g *Gate) Reset() {
	g.Resume()
}

// Paused reports whether the gate is closed
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// SetDelay changes the sleep applied after each event
func (g *Gate) SetDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	g.mu.Lock()
	g.delay = d
	g.mu.Unlock()
}

// Delay returns the current per-event delay
func (g *Gate) Delay() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delay
}

// Wait blocks while the gate is closed. It returns stepped=true when the caller
// was released by a step permit.
func (g *Gate) Wait(ctx context.Context) (stepped bool, err error) {
	for {
		g.mu.Lock()
		if !g.paused {
			g.mu.Unlock()
			return false, nil
		}
		if g.steps > 0 {
			g.steps--
			g.mu.Unlock()
			return true, nil
		}
		wake := g.wake
		g.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// Pass is called after each event: wait on the gate, then sleep the delay
// unless the event was released by a step.
func (g *Gate) Pass(ctx context.Context) error {
	stepped, err := g.Wait(ctx)
	if err != nil || stepped {
		return err
	}

	delay := g.Delay()
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate) broadcastLocked() {
	close(g.wake)
	g.wake = make(chan struct{})
}
