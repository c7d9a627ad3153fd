package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/maze-lab/game/engine"
	"github.com/wricardo/maze-lab/game/instrument"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// MazeService defines all maze operations of a multi-session server
type MazeService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Runs
	Generate(ctx context.Context, sessionID string, req GenerateRequest) (*RunInfo, error)
	Solve(ctx context.Context, sessionID string, req SolveRequest) (*RunInfo, error)
	Pause(ctx context.Context, sessionID string) (*MazeState, error)
	Resume(ctx context.Context, sessionID string) (*MazeState, error)
	Step(ctx context.Context, sessionID string) (*MazeState, error)
	Cancel(ctx context.Context, sessionID string) (*MazeState, error)
	SetSpeed(ctx context.Context, sessionID string, delayMS int) (*MazeState, error)

	// Editing
	SetStart(ctx context.Context, sessionID string, x, y int) (*MazeState, error)
	SetEnd(ctx context.Context, sessionID string, x, y int) (*MazeState, error)
	ToggleCell(ctx context.Context, sessionID string, x, y int) (*MazeState, error)
	Encode(ctx context.Context, sessionID string) (string, error)
	Decode(ctx context.Context, sessionID, encoded string) (*MazeState, error)

	// Maze State
	GetState(ctx context.Context, sessionID string) (*MazeState, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.MazeConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.MazeConfig) error
	Algorithms(ctx context.Context) *AlgorithmCatalog
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.MazeConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.MazeConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles maze preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.MazeConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.MazeConfig
	SaveConfig(name string, config *engine.MazeConfig) error
}

// EventPublisher receives the cell and run events of every session
type EventPublisher interface {
	PublishCell(sessionID string, ev instrument.CellEvent)
	PublishRun(sessionID string, ev RunEvent)
}

// Session represents one maze and its engine
type Session struct {
	ID             string
	Engine         *engine.MazeEngine
	Config         *engine.MazeConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	events *instrument.Dispatcher
}

// Close cancels the active run and stops event delivery
func (s *Session) Close() {
	s.Engine.Cancel()
	if s.events != nil {
		s.events.Close()
	}
}
