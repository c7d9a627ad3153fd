// Package engine runs maze generation and pathfinding for one maze.
//
// The engine package implements:
//   - The run controller: one worker goroutine per run, mutual exclusion
//     between generation and search, cancellation through context
//   - Pause, single-step and speed control through an instrument.Gate
//   - Start/End placement, manual wall editing and grid import/export
//   - Maze configuration loading and validation (JSON or TOML)
//
// Core Types:
//
// The Engine interface defines the contract used by the service layer,
// implemented by MazeEngine. A Run is the handle of an in-flight generation or
// search; RunResult describes how it ended. MazeConfig is the configuration
// surface: dimensions, algorithms and animation delay.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultMazeConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	eng.SetSink(dispatcher)
//
//	run, err := eng.Generate(context.Background(), generator.Kruskal, 41, 31)
//	if err != nil {
//		log.Fatal(err)
//	}
//	run.Wait()
//
//	run, _ = eng.Solve(context.Background(), pathfinder.AStar)
//	result := run.Wait()
//	fmt.Println(result.Found, result.Steps)
//
// State:
//
// An engine is Idle, Generating or Finding; Paused is tracked separately.
// Starting a run or editing the grid while a run is active fails with
// ErrRunInProgress. Generation carves a scratch grid that replaces the current
// one only when the run completes, so a cancelled run leaves the maze as it was.
//
// Concurrency:
//
// All MazeEngine methods are safe for concurrent use. Events of a run are sent
// from the worker goroutine; the sink should hand them off (for example through
// instrument.Dispatcher) rather than touch caller-owned state directly.
package engine
