package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/maze-lab/game/codec"
	"github.com/wricardo/maze-lab/game/generator"
	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/instrument"
	"github.com/wricardo/maze-lab/game/pathfinder"
)

func createTestConfig() *MazeConfig {
	return &MazeConfig{
		Name:        "engine-test",
		Description: "Configuration for engine tests",
		Width:       11,
		Height:      11,
		Generator:   "kruskal",
		Pathfinder:  "bfs",
		DelayMS:     0,
	}
}

func newTestEngine(t *testing.T) (*MazeEngine, *instrument.Recorder) {
	t.Helper()
	eng, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	rec := instrument.NewRecorder()
	eng.SetSink(rec)
	eng.SetSource(generator.NewSeededSource(7))
	return eng, rec
}

func generateMaze(t *testing.T, eng *MazeEngine, alg generator.Algorithm) RunResult {
	t.Helper()
	run, err := eng.Generate(context.Background(), alg, 11, 11)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	result := run.Wait()
	if result.Err != nil {
		t.Fatalf("Generation ended with error: %v", result.Err)
	}
	return result
}

// blockingSink records events and holds the worker inside the first Emit until released
type blockingSink struct {
	rec     *instrument.Recorder
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newBlockingSink() *blockingSink {
	return &blockingSink{
		rec:     instrument.NewRecorder(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingSink) Emit(ev instrument.CellEvent) {
	b.rec.Emit(ev)
	b.once.Do(func() {
		close(b.started)
		<-b.release
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewEngine(t *testing.T) {
	eng, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	snap := eng.Snapshot()
	if snap.State != Idle {
		t.Errorf("Expected idle engine, got %s", snap.State)
	}
	if snap.Grid.Width() != 11 || snap.Grid.Height() != 11 {
		t.Errorf("Expected 11x11 grid, got %dx%d", snap.Grid.Width(), snap.Grid.Height())
	}
	if snap.Start != (grid.Coord{X: 1, Y: 1}) {
		t.Errorf("Expected start (1,1), got %s", snap.Start)
	}
	if snap.End != (grid.Coord{X: 9, Y: 9}) {
		t.Errorf("Expected end (9,9), got %s", snap.End)
	}
	if eng.LastResult() != nil {
		t.Error("Expected no last result on a new engine")
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Width = 10

	_, err := NewEngine(config)
	if !errors.Is(err, grid.ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions, got %v", err)
	}
}

func TestNewEngine_NilConfigUsesDefault(t *testing.T) {
	eng, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if eng.GetConfig().Name != "classic" {
		t.Errorf("Expected classic preset, got %q", eng.GetConfig().Name)
	}
	if eng.Delay() != DefaultDelayMS*time.Millisecond {
		t.Errorf("Expected default delay, got %s", eng.Delay())
	}
}

func TestEngine_GenerateAllAlgorithms(t *testing.T) {
	for _, info := range generator.Algorithms() {
		t.Run(string(info.Algorithm), func(t *testing.T) {
			eng, rec := newTestEngine(t)
			result := generateMaze(t, eng, info.Algorithm)

			if result.Kind != KindGenerate || result.Algorithm != string(info.Algorithm) {
				t.Errorf("Unexpected result identity %s/%s", result.Kind, result.Algorithm)
			}
			if err := VerifyPerfectMaze(eng.Snapshot().Grid); err != nil {
				t.Errorf("Generated grid is not a perfect maze: %v", err)
			}
			if result.Events != int64(rec.Len()) {
				t.Errorf("Expected %d events in result, recorded %d", rec.Len(), result.Events)
			}

			events := rec.Events()
			n := len(events)
			if n < 2 {
				t.Fatalf("Expected events, got %d", n)
			}
			if events[n-2] != instrument.At(grid.Coord{X: 1, Y: 1}, instrument.TagStart) {
				t.Errorf("Expected Start event second to last, got %+v", events[n-2])
			}
			if events[n-1] != instrument.At(grid.Coord{X: 9, Y: 9}, instrument.TagEnd) {
				t.Errorf("Expected End event last, got %+v", events[n-1])
			}
			if eng.State() != Idle {
				t.Errorf("Expected idle after generation, got %s", eng.State())
			}
		})
	}
}

func TestEngine_SolveAllAlgorithms(t *testing.T) {
	for _, info := range pathfinder.Algorithms() {
		t.Run(string(info.Algorithm), func(t *testing.T) {
			eng, rec := newTestEngine(t)
			generateMaze(t, eng, generator.Prim)
			rec.Reset()

			run, err := eng.Solve(context.Background(), info.Algorithm)
			if err != nil {
				t.Fatalf("Solve failed: %v", err)
			}
			result := run.Wait()

			if !result.Found {
				t.Fatalf("Expected a route, got none (err %v)", result.Err)
			}
			if result.Steps != len(result.Route) {
				t.Errorf("Expected steps %d to equal route length %d", result.Steps, len(result.Route))
			}
			if got := rec.Count(instrument.TagSolution); got != len(result.Route)-2 {
				t.Errorf("Expected %d solution events, got %d", len(result.Route)-2, got)
			}
			if len(eng.Route()) != len(result.Route) {
				t.Errorf("Engine route not stored")
			}
		})
	}
}

func TestEngine_InvalidRequests(t *testing.T) {
	eng, _ := newTestEngine(t)

	if _, err := eng.Generate(context.Background(), generator.DFS, 8, 11); !errors.Is(err, grid.ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions, got %v", err)
	}
	if _, err := eng.Generate(context.Background(), "wilson", 11, 11); !errors.Is(err, generator.ErrUnknownAlgorithm) {
		t.Errorf("Expected ErrUnknownAlgorithm, got %v", err)
	}
	if _, err := eng.Solve(context.Background(), "teleport"); !errors.Is(err, pathfinder.ErrUnknownAlgorithm) {
		t.Errorf("Expected ErrUnknownAlgorithm, got %v", err)
	}
	if eng.State() != Idle {
		t.Errorf("Rejected requests must not change state, got %s", eng.State())
	}
}

func TestEngine_RunInProgress(t *testing.T) {
	eng, _ := newTestEngine(t)
	sink := newBlockingSink()
	eng.SetSink(sink)

	run, err := eng.Generate(context.Background(), generator.DFS, 11, 11)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	<-sink.started

	if eng.State() != Generating {
		t.Errorf("Expected generating, got %s", eng.State())
	}
	if _, err := eng.Generate(context.Background(), generator.Prim, 11, 11); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("Expected ErrRunInProgress for second generation, got %v", err)
	}
	if _, err := eng.Solve(context.Background(), pathfinder.BFS); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("Expected ErrRunInProgress for search, got %v", err)
	}
	if err := eng.SetCell(grid.Coord{X: 2, Y: 1}, grid.Wall); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("Expected ErrRunInProgress for edit, got %v", err)
	}
	g, _ := grid.New(5, 5)
	if err := eng.Load(g); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("Expected ErrRunInProgress for load, got %v", err)
	}
	if eng.ActiveRun() != run {
		t.Error("Expected ActiveRun to return the in-flight run")
	}

	close(sink.release)
	run.Wait()
	if eng.State() != Idle {
		t.Errorf("Expected idle after run, got %s", eng.State())
	}
	if eng.ActiveRun() != nil {
		t.Error("Expected no active run after completion")
	}
}

func TestEngine_PauseStepResume(t *testing.T) {
	eng, _ := newTestEngine(t)
	sink := newBlockingSink()
	eng.SetSink(sink)

	run, err := eng.Generate(context.Background(), generator.DFS, 11, 11)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	<-sink.started

	if err := eng.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if !eng.Paused() {
		t.Error("Expected engine to report paused")
	}
	close(sink.release)

	time.Sleep(20 * time.Millisecond)
	if n := sink.rec.Len(); n != 1 {
		t.Fatalf("Expected the run to hold after 1 event, got %d", n)
	}

	if err := eng.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	waitFor(t, "second event", func() bool { return sink.rec.Len() == 2 })
	time.Sleep(20 * time.Millisecond)
	if n := sink.rec.Len(); n != 2 {
		t.Errorf("Expected exactly one event per step, got %d", n)
	}

	if err := eng.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	result := run.Wait()
	if result.Err != nil {
		t.Errorf("Expected clean finish, got %v", result.Err)
	}
	if eng.Paused() {
		t.Error("Idle engine must not report paused")
	}
}

func TestEngine_ControlsWhenIdle(t *testing.T) {
	eng, _ := newTestEngine(t)

	for name, control := range map[string]func() error{"pause": eng.Pause, "resume": eng.Resume, "step": eng.Step} {
		if err := control(); !errors.Is(err, ErrNoActiveRun) {
			t.Errorf("%s: expected ErrNoActiveRun, got %v", name, err)
		}
	}
	if eng.Cancel() {
		t.Error("Cancel should report false when idle")
	}
}

func TestEngine_CancelLeavesGridUnchanged(t *testing.T) {
	eng, _ := newTestEngine(t)
	generateMaze(t, eng, generator.Kruskal)
	before := eng.Encode()

	sink := newBlockingSink()
	eng.SetSink(sink)
	run, err := eng.Generate(context.Background(), generator.RecursiveDivision, 11, 11)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	<-sink.started
	_ = eng.Pause()

	if !eng.Cancel() {
		t.Error("Expected Cancel to report an active run")
	}
	close(sink.release)

	result := run.Wait()
	if !result.Cancelled {
		t.Errorf("Expected cancelled result, got %+v", result)
	}
	if eng.Encode() != before {
		t.Error("Cancelled generation must not replace the grid")
	}
	if eng.State() != Idle {
		t.Errorf("Expected idle after cancel, got %s", eng.State())
	}
	if last := eng.LastResult(); last == nil || !last.Cancelled {
		t.Error("Expected last result to record the cancellation")
	}
}

func TestEngine_CallerContextCancelsRun(t *testing.T) {
	eng, _ := newTestEngine(t)
	generateMaze(t, eng, generator.DFS)
	eng.SetDelay(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	run, err := eng.Solve(ctx, pathfinder.DFS)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	cancel()

	select {
	case <-run.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Run ignored context cancellation during delay")
	}
	result, ok := run.Result()
	if !ok || !result.Cancelled {
		t.Errorf("Expected cancelled result, got %+v", result)
	}
	if len(eng.Route()) != 0 {
		t.Error("Cancelled search must not store a route")
	}
}

func TestEngine_SealedEndHasNoPath(t *testing.T) {
	eng, _ := newTestEngine(t)
	generateMaze(t, eng, generator.DFS)

	end := eng.Snapshot().End
	for _, d := range grid.Directions {
		if err := eng.SetCell(end.Add(d), grid.Wall); err != nil && !errors.Is(err, ErrProtectedCell) {
			t.Fatalf("SetCell failed: %v", err)
		}
	}

	for _, info := range pathfinder.Algorithms() {
		run, err := eng.Solve(context.Background(), info.Algorithm)
		if err != nil {
			t.Fatalf("Solve failed: %v", err)
		}
		result := run.Wait()
		if result.Err != nil {
			t.Errorf("%s: no path must not be an error, got %v", info.Algorithm, result.Err)
		}
		if result.Found || result.Steps != 0 {
			t.Errorf("%s: expected no path, got %d steps", info.Algorithm, result.Steps)
		}
	}
}

func TestEngine_SetEndpoints(t *testing.T) {
	eng, rec := newTestEngine(t)
	generateMaze(t, eng, generator.Prim)
	rec.Reset()

	tests := []struct {
		name string
		at   grid.Coord
	}{
		{"border", grid.Coord{X: 0, Y: 3}},
		{"outside", grid.Coord{X: 40, Y: 3}},
		{"wall intersection", grid.Coord{X: 2, Y: 2}},
		{"end cell", grid.Coord{X: 9, Y: 9}},
	}
	for _, tt := range tests {
		if err := eng.SetStart(tt.at); !errors.Is(err, ErrInvalidEndpoint) {
			t.Errorf("%s: expected ErrInvalidEndpoint, got %v", tt.name, err)
		}
	}

	if err := eng.SetStart(grid.Coord{X: 3, Y: 3}); err != nil {
		t.Fatalf("SetStart failed: %v", err)
	}
	if err := eng.SetEnd(grid.Coord{X: 7, Y: 5}); err != nil {
		t.Fatalf("SetEnd failed: %v", err)
	}

	snap := eng.Snapshot()
	if snap.Start != (grid.Coord{X: 3, Y: 3}) || snap.End != (grid.Coord{X: 7, Y: 5}) {
		t.Errorf("Endpoints not moved: %s %s", snap.Start, snap.End)
	}

	want := []instrument.CellEvent{
		instrument.At(grid.Coord{X: 1, Y: 1}, instrument.TagPath),
		instrument.At(grid.Coord{X: 3, Y: 3}, instrument.TagStart),
		instrument.At(grid.Coord{X: 9, Y: 9}, instrument.TagPath),
		instrument.At(grid.Coord{X: 7, Y: 5}, instrument.TagEnd),
	}
	got := rec.Events()
	if len(got) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Event %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestEngine_ToggleCell(t *testing.T) {
	eng, _ := newTestEngine(t)
	generateMaze(t, eng, generator.DFS)

	run, _ := eng.Solve(context.Background(), pathfinder.BFS)
	run.Wait()
	if len(eng.Route()) == 0 {
		t.Fatal("Expected a route before editing")
	}

	c := grid.Coord{X: 2, Y: 2}
	kind, err := eng.ToggleCell(c)
	if err != nil {
		t.Fatalf("ToggleCell failed: %v", err)
	}
	if kind != grid.Open || !eng.Snapshot().Grid.IsOpen(c) {
		t.Error("Expected wall intersection to become open")
	}
	if len(eng.Route()) != 0 {
		t.Error("Editing must clear the stored route")
	}

	if kind, _ = eng.ToggleCell(c); kind != grid.Wall {
		t.Error("Expected second toggle to restore the wall")
	}

	for _, protected := range []grid.Coord{{X: 0, Y: 0}, {X: 10, Y: 5}, {X: 1, Y: 1}, {X: 9, Y: 9}} {
		if _, err := eng.ToggleCell(protected); !errors.Is(err, ErrProtectedCell) {
			t.Errorf("Expected ErrProtectedCell for %s, got %v", protected, err)
		}
	}
}

func TestEngine_EncodeDecode(t *testing.T) {
	eng, _ := newTestEngine(t)
	generateMaze(t, eng, generator.Kruskal)
	encoded := eng.Encode()

	other, _ := newTestEngine(t)
	if err := other.Decode(encoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !other.Snapshot().Grid.Equal(eng.Snapshot().Grid) {
		t.Error("Decoded grid differs from the original")
	}

	before := other.Encode()
	if err := other.Decode("11,11,@@@"); !errors.Is(err, codec.ErrMalformedEncoding) {
		t.Errorf("Expected ErrMalformedEncoding, got %v", err)
	}
	if err := other.Decode("3,3,AAA="); !errors.Is(err, grid.ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions, got %v", err)
	}
	if other.Encode() != before {
		t.Error("Failed decode must leave the grid untouched")
	}
}

func TestEngine_DecodeResetsEndpoints(t *testing.T) {
	eng, _ := newTestEngine(t)
	generateMaze(t, eng, generator.DFS)
	if err := eng.SetStart(grid.Coord{X: 5, Y: 5}); err != nil {
		t.Fatalf("SetStart failed: %v", err)
	}

	g, _ := grid.New(7, 9)
	if err := eng.Load(g); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	snap := eng.Snapshot()
	if snap.Start != (grid.Coord{X: 1, Y: 1}) || snap.End != (grid.Coord{X: 5, Y: 7}) {
		t.Errorf("Expected default endpoints, got %s %s", snap.Start, snap.End)
	}
}

func TestEngine_SeededSourceIsReproducible(t *testing.T) {
	a, _ := newTestEngine(t)
	b, _ := newTestEngine(t)
	generateMaze(t, a, generator.Prim)
	generateMaze(t, b, generator.Prim)
	if a.Encode() != b.Encode() {
		t.Error("Engines with the same seed produced different mazes")
	}
}

func TestRenderSnapshot(t *testing.T) {
	eng, _ := newTestEngine(t)
	g, _ := grid.New(5, 5)
	g.Set(grid.Coord{X: 2, Y: 2}, grid.Wall)
	if err := eng.Load(g); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	run, _ := eng.Solve(context.Background(), pathfinder.BFS)
	run.Wait()

	want := "#####\n" +
		"#S..#\n" +
		"# #.#\n" +
		"#  E#\n" +
		"#####\n"
	if got := RenderSnapshot(eng.Snapshot()); got != want {
		t.Errorf("Unexpected rendering:\n%s", got)
	}
}

func TestEngine_Restore(t *testing.T) {
	eng, _ := newTestEngine(t)
	generateMaze(t, eng, generator.DFS)
	saved := eng.Snapshot().Grid

	other, _ := newTestEngine(t)
	start, end := grid.Coord{X: 9, Y: 9}, grid.Coord{X: 1, Y: 1}
	if err := other.Restore(saved, start, end); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	snap := other.Snapshot()
	if !snap.Grid.Equal(saved) {
		t.Error("Expected restored grid to match")
	}
	if snap.Start != start || snap.End != end {
		t.Errorf("Expected swapped endpoints, got %s -> %s", snap.Start, snap.End)
	}

	if err := other.Restore(saved, start, start); !errors.Is(err, ErrInvalidEndpoint) {
		t.Errorf("Expected ErrInvalidEndpoint for equal endpoints, got %v", err)
	}
	if err := other.Restore(saved, grid.Coord{X: 0, Y: 0}, end); !errors.Is(err, ErrInvalidEndpoint) {
		t.Errorf("Expected ErrInvalidEndpoint for border start, got %v", err)
	}
}
