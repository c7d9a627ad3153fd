package service

import (
	"strings"
	"time"

	"github.com/wricardo/maze-lab/game/codec"
	"github.com/wricardo/maze-lab/game/engine"
	"github.com/wricardo/maze-lab/game/generator"
	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/pathfinder"
)

// Run lifecycle event names
const (
	EventRunStarted  = "run_started"
	EventRunFinished = "run_finished"
)

// SessionInfo provides information about a maze session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	MazeState      *MazeState         `json:"maze_state"`
	MazeConfig     *engine.MazeConfig `json:"maze_config"`
}

// MazeState is the observable state of a session's maze.
// Rows draw walls as '#', open cells as ' ', the route as '.' and the endpoints as S and E.
type MazeState struct {
	Width   int               `json:"width"`
	Height  int               `json:"height"`
	Rows    []string          `json:"rows"`
	Encoded string            `json:"encoded"`
	Start   grid.Coord        `json:"start"`
	End     grid.Coord        `json:"end"`
	State   engine.State      `json:"state"`
	Paused  bool              `json:"paused"`
	DelayMS int               `json:"delay_ms"`
	Route   []grid.Coord      `json:"route,omitempty"`
	Last    *engine.RunResult `json:"last_result,omitempty"`
}

// View returns the rows joined by newlines
func (m *MazeState) View() string {
	return strings.Join(m.Rows, "\n")
}

// GenerateRequest asks for a new maze. Empty fields fall back to the session preset.
type GenerateRequest struct {
	Algorithm string `json:"algorithm"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	// Wait blocks until the run finishes and fills RunInfo.Result
	Wait bool `json:"wait"`
}

// SolveRequest asks for a search from Start to End
type SolveRequest struct {
	Algorithm string `json:"algorithm"`
	Wait      bool   `json:"wait"`
}

// RunInfo describes a started run and, once finished, its result
type RunInfo struct {
	SessionID string            `json:"session_id"`
	Kind      engine.RunKind    `json:"kind"`
	Algorithm string            `json:"algorithm"`
	StartedAt time.Time         `json:"started_at"`
	Running   bool              `json:"running"`
	Result    *engine.RunResult `json:"result,omitempty"`
}

// RunEvent is published when a run starts or finishes
type RunEvent struct {
	Type string   `json:"type"`
	Run  *RunInfo `json:"run"`
}

// ConfigInfo provides information about a maze preset
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Generator   string `json:"generator"`
	Pathfinder  string `json:"pathfinder"`
	DelayMS     int    `json:"delay_ms"`
}

// AlgorithmCatalog lists every generation and pathfinding algorithm
type AlgorithmCatalog struct {
	Generators  []generator.Info  `json:"generators"`
	Pathfinders []pathfinder.Info `json:"pathfinders"`
}

// NewMazeState builds the DTO of an engine snapshot
func NewMazeState(snap engine.Snapshot) *MazeState {
	view := strings.TrimSuffix(engine.RenderSnapshot(snap), "\n")
	return &MazeState{
		Width:   snap.Grid.Width(),
		Height:  snap.Grid.Height(),
		Rows:    strings.Split(view, "\n"),
		Encoded: codec.Encode(snap.Grid),
		Start:   snap.Start,
		End:     snap.End,
		State:   snap.State,
		Paused:  snap.Paused,
		DelayMS: int(snap.Delay / time.Millisecond),
		Route:   snap.Route,
		Last:    snap.Last,
	}
}

func newRunInfo(sessionID string, run *engine.Run) *RunInfo {
	info := &RunInfo{
		SessionID: sessionID,
		Kind:      run.Kind,
		Algorithm: run.Algorithm,
		StartedAt: run.StartedAt,
		Running:   true,
	}
	if result, done := run.Result(); done {
		info.Running = false
		info.Result = &result
	}
	return info
}
