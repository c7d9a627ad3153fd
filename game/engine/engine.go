package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/maze-lab/game/codec"
	"github.com/wricardo/maze-lab/game/generator"
	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/instrument"
	"github.com/wricardo/maze-lab/game/pathfinder"
)

// Engine provides the main interface for maze operations
type Engine interface {
	// Runs
	Generate(ctx context.Context, alg generator.Algorithm, width, height int) (*Run, error)
	Solve(ctx context.Context, alg pathfinder.Algorithm) (*Run, error)
	Cancel() bool
	ActiveRun() *Run

	// Run pacing
	Pause() error
	Resume() error
	Step() error
	SetDelay(d time.Duration)
	Delay() time.Duration

	// Editing
	SetStart(c grid.Coord) error
	SetEnd(c grid.Coord) error
	SetCell(c grid.Coord, kind grid.Kind) error
	ToggleCell(c grid.Coord) (grid.Kind, error)
	Load(g *grid.Grid) error
	Decode(encoded string) error
	Encode() string

	// Inspection
	Snapshot() Snapshot
	State() State
	Paused() bool
	LastResult() *RunResult
	Route() []grid.Coord
	GetConfig() *MazeConfig
}

// MazeEngine implements the Engine interface
type MazeEngine struct {
	mu     sync.RWMutex
	config *MazeConfig
	grid   *grid.Grid
	start  grid.Coord
	end    grid.Coord
	route  []grid.Coord
	state  State
	run    *Run
	last   *RunResult

	gate *instrument.Gate
	gen  *generator.Generator
	sink instrument.Sink
}

// NewEngine creates an engine with an empty (unmazed) grid sized by config.
// A nil config uses DefaultMazeConfig.
func NewEngine(config *MazeConfig) (*MazeEngine, error) {
	if config == nil {
		config = DefaultMazeConfig()
	}
	if err := ValidateMazeConfig(config); err != nil {
		return nil, err
	}

	g, err := grid.New(config.Width, config.Height)
	if err != nil {
		return nil, err
	}

	e := &MazeEngine{
		config: config,
		grid:   g,
		state:  Idle,
		gate:   instrument.NewGate(config.Delay()),
		gen:    generator.New(nil),
		sink:   instrument.Discard,
	}
	e.start, e.end = defaultEndpoints(g)
	return e, nil
}

// defaultEndpoints places Start top-left and End bottom-right
func defaultEndpoints(g *grid.Grid) (grid.Coord, grid.Coord) {
	return grid.Coord{X: 1, Y: 1}, grid.Coord{X: g.Width() - 2, Y: g.Height() - 2}
}

// SetSink sets where cell events go. Runs already started keep their sink.
func (e *MazeEngine) SetSink(sink instrument.Sink) {
	if sink == nil {
		sink = instrument.Discard
	}
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// SetSource replaces the random source used by later generations
func (e *MazeEngine) SetSource(src generator.Source) {
	e.mu.Lock()
	e.gen = generator.New(src)
	e.mu.Unlock()
}

// GetConfig returns the preset the engine was created with
func (e *MazeEngine) GetConfig() *MazeConfig {
	return e.config
}

// Generate starts carving a width x height maze on a worker goroutine.
// ctx bounds the run; cancelling it stops the run and leaves the grid unchanged.
func (e *MazeEngine) Generate(ctx context.Context, alg generator.Algorithm, width, height int) (*Run, error) {
	if _, ok := generator.Describe(alg); !ok {
		return nil, fmt.Errorf("%w: %q", generator.ErrUnknownAlgorithm, alg)
	}
	if err := grid.ValidateDimensions(width, height); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		cancel()
		return nil, ErrRunInProgress
	}
	e.state = Generating
	e.route = nil
	run := newRun(KindGenerate, string(alg), cancel)
	e.run = run
	sink, gen := e.sink, e.gen
	e.gate.Reset()
	e.mu.Unlock()

	log.Printf("[RUN] generate %s %dx%d started", alg, width, height)
	go e.generate(runCtx, run, gen, sink, alg, width, height)
	return run, nil
}

func (e *MazeEngine) generate(ctx context.Context, run *Run, gen *generator.Generator, sink instrument.Sink, alg generator.Algorithm, width, height int) {
	defer run.cancel()

	result := RunResult{
		Kind:      KindGenerate,
		Algorithm: string(alg),
		Width:     width,
		Height:    height,
		StartedAt: run.StartedAt,
	}

	scratch, err := grid.New(width, height)
	if err == nil {
		paced := instrument.NewPaced(ctx, sink, e.gate)
		err = gen.Generate(ctx, alg, scratch, paced)
		if err == nil {
			start, end := defaultEndpoints(scratch)
			e.mu.Lock()
			e.grid = scratch
			e.start, e.end = start, end
			e.mu.Unlock()

			paced.Emit(instrument.At(start, instrument.TagStart))
			paced.Emit(instrument.At(end, instrument.TagEnd))
		}
		result.Events = paced.Count()
	}

	e.finish(run, result, err)
}

// Solve starts searching from Start to End on a worker goroutine
func (e *MazeEngine) Solve(ctx context.Context, alg pathfinder.Algorithm) (*Run, error) {
	if _, ok := pathfinder.Describe(alg); !ok {
		return nil, fmt.Errorf("%w: %q", pathfinder.ErrUnknownAlgorithm, alg)
	}

	runCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		cancel()
		return nil, ErrRunInProgress
	}
	e.state = Finding
	e.route = nil
	run := newRun(KindSolve, string(alg), cancel)
	e.run = run
	g, start, end := e.grid.Clone(), e.start, e.end
	sink := e.sink
	e.gate.Reset()
	e.mu.Unlock()

	log.Printf("[RUN] solve %s %s -> %s started", alg, start, end)
	go e.solve(runCtx, run, sink, alg, g, start, end)
	return run, nil
}

func (e *MazeEngine) solve(ctx context.Context, run *Run, sink instrument.Sink, alg pathfinder.Algorithm, g *grid.Grid, start, end grid.Coord) {
	defer run.cancel()

	paced := instrument.NewPaced(ctx, sink, e.gate)
	route, err := pathfinder.Find(ctx, alg, g, start, end, paced)
	if err == nil && route != nil {
		for _, c := range route {
			if c != start && c != end {
				paced.Emit(instrument.At(c, instrument.TagSolution))
			}
		}
		if err = ctx.Err(); err == nil {
			e.mu.Lock()
			e.route = route
			e.mu.Unlock()
		}
	}

	result := RunResult{
		Kind:      KindSolve,
		Algorithm: string(alg),
		Width:     g.Width(),
		Height:    g.Height(),
		StartedAt: run.StartedAt,
		Events:    paced.Count(),
	}
	if err == nil && route != nil {
		result.Found = true
		result.Route = route
		result.Steps = len(route)
	}
	e.finish(run, result, err)
}

func (e *MazeEngine) finish(run *Run, result RunResult, err error) {
	result.FinishedAt = time.Now()
	result.Elapsed = result.FinishedAt.Sub(result.StartedAt)
	if err != nil {
		result.Err = err
		result.Error = err.Error()
		result.Cancelled = errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	}

	e.mu.Lock()
	e.state = Idle
	e.run = nil
	e.last = &result
	e.mu.Unlock()

	switch {
	case result.Cancelled:
		log.Printf("[RUN] %s %s cancelled after %d events (%s)", result.Kind, result.Algorithm, result.Events, result.Elapsed)
	case err != nil:
		log.Printf("[RUN] %s %s failed: %v", result.Kind, result.Algorithm, err)
	default:
		log.Printf("[RUN] %s %s finished: %d events, %d steps (%s)", result.Kind, result.Algorithm, result.Events, result.Steps, result.Elapsed)
	}

	run.complete(result)
}

// Cancel stops the active run, if any
func (e *MazeEngine) Cancel() bool {
	e.mu.RLock()
	run := e.run
	e.mu.RUnlock()
	if run == nil {
		return false
	}
	run.Cancel()
	return true
}

// ActiveRun returns the in-flight run or nil
func (e *MazeEngine) ActiveRun() *Run {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.run
}

// Pause holds the active run after its next event
func (e *MazeEngine) Pause() error {
	if e.State() == Idle {
		return ErrNoActiveRun
	}
	e.gate.Pause()
	return nil
}

// Resume releases a paused run
func (e *MazeEngine) Resume() error {
	if e.State() == Idle {
		return ErrNoActiveRun
	}
	e.gate.Resume()
	return nil
}

// Step lets the active run emit exactly one more event and then holds it
func (e *MazeEngine) Step() error {
	if e.State() == Idle {
		return ErrNoActiveRun
	}
	e.gate.Step()
	return nil
}

// SetDelay changes the pause after each event, effective immediately
func (e *MazeEngine) SetDelay(d time.Duration) {
	e.gate.SetDelay(d)
}

// Delay returns the pause after each event
func (e *MazeEngine) Delay() time.Duration {
	return e.gate.Delay()
}

// State returns whether the engine is idle, generating or finding
func (e *MazeEngine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Paused reports whether the active run is held at the gate
func (e *MazeEngine) Paused() bool {
	return e.State() != Idle && e.gate.Paused()
}

// LastResult returns the result of the most recent finished run
func (e *MazeEngine) LastResult() *RunResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.last == nil {
		return nil
	}
	last := *e.last
	return &last
}

// Route returns the route found by the last successful search since the maze last changed
func (e *MazeEngine) Route() []grid.Coord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]grid.Coord(nil), e.route...)
}

// Snapshot returns a consistent copy of the engine state
func (e *MazeEngine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := Snapshot{
		Grid:   e.grid.Clone(),
		Start:  e.start,
		End:    e.end,
		State:  e.state,
		Paused: e.state != Idle && e.gate.Paused(),
		Delay:  e.gate.Delay(),
		Route:  append([]grid.Coord(nil), e.route...),
	}
	if e.last != nil {
		last := *e.last
		snap.Last = &last
	}
	return snap
}

// Encode returns the codec string of the current grid
func (e *MazeEngine) Encode() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return codec.Encode(e.grid)
}

// Decode replaces the grid with an encoded one. On error nothing changes.
func (e *MazeEngine) Decode(encoded string) error {
	g, err := codec.Decode(encoded)
	if err != nil {
		return err
	}
	return e.Load(g)
}
