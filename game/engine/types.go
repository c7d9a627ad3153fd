package engine

import (
	"errors"
	"time"

	"github.com/wricardo/maze-lab/game/grid"
)

var (
	// ErrRunInProgress is returned when a run or edit is attempted while another run is active
	ErrRunInProgress = errors.New("a generation or search is already running")
	// ErrNoActiveRun is returned by run controls when the engine is idle
	ErrNoActiveRun = errors.New("no generation or search is running")
	// ErrInvalidEndpoint is returned when Start or End cannot be placed on a cell
	ErrInvalidEndpoint = errors.New("invalid start or end position")
	// ErrProtectedCell is returned when editing the border or an endpoint
	ErrProtectedCell = errors.New("cell cannot be edited")
)

// State is the activity of an engine
type State string

const (
	Idle       State = "idle"
	Generating State = "generating"
	Finding    State = "finding"
)

// RunKind tells generation runs from search runs
type RunKind string

const (
	KindGenerate RunKind = "generate"
	KindSolve    RunKind = "solve"
)

const (
	DefaultDelayMS = 10
	MaxDelayMS     = 5000
)

// RunResult describes a finished run
type RunResult struct {
	Kind      RunKind      `json:"kind"`
	Algorithm string       `json:"algorithm"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Found     bool         `json:"found"`
	Route     []grid.Coord `json:"route,omitempty"`
	// Steps is the number of cells on the route, Start and End included
	Steps      int           `json:"steps"`
	Events     int64         `json:"events"`
	Elapsed    time.Duration `json:"elapsed"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Cancelled  bool          `json:"cancelled"`
	Error      string        `json:"error,omitempty"`

	Err error `json:"-"`
}

// Snapshot is a consistent copy of an engine's observable state
type Snapshot struct {
	Grid   *grid.Grid
	Start  grid.Coord
	End    grid.Coord
	State  State
	Paused bool
	Delay  time.Duration
	Route  []grid.Coord
	Last   *RunResult
}
