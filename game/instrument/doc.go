// Package instrument carries per-cell progress events from the maze algorithms
// to whoever renders them.
//
// The instrument package implements:
//   - CellEvent and Tag, the observable (coordinate, tag) contract
//   - Sink, the single callback both algorithm families report through
//   - Gate, the pause/step/delay control shared by a worker and its controller
//   - Dispatcher, a queued hand-off from the worker goroutine to a consumer
//
// Pacing:
//
// A worker wraps its sink with Paced. After every event the worker passes the
// gate: it blocks while the gate is paused, consumes a step permit if one was
// granted, and otherwise sleeps the configured delay. Cancelling the context
// releases a blocked worker immediately.
//
//	gate := instrument.NewGate(10 * time.Millisecond)
//	disp := instrument.NewDispatcher(renderer, 256)
//	defer disp.Close()
//
//	sink := instrument.NewPaced(ctx, disp, gate)
//	err := generator.Generate(ctx, generator.Prim, g, sink)
//
// Events are never read back by the algorithms.
package instrument
