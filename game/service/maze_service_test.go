package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/maze-lab/game/engine"
	"github.com/wricardo/maze-lab/game/generator"
	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/instrument"
	"github.com/wricardo/maze-lab/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	mu       sync.Mutex
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.MazeConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}
	eng.SetSource(generator.NewSeededSource(3))

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.MazeConfig) (*service.Session, error) {
	if session, err := m.Get(id); err == nil {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

func (m *MockSessionManager) Save(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	m.saves++
	return nil
}

func (m *MockSessionManager) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.MazeConfig
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := &engine.MazeConfig{
		Name:        "test",
		Description: "Test preset",
		Width:       11,
		Height:      9,
		Generator:   "dfs",
		Pathfinder:  "bfs",
		DelayMS:     0,
	}

	return &MockConfigManager{
		configs: map[string]*engine.MazeConfig{
			"test":    defaultConfig,
			"default": defaultConfig,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.MazeConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Width:       config.Width,
			Height:      config.Height,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.MazeConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.MazeConfig) error {
	if err := engine.ValidateMazeConfig(config); err != nil {
		return err
	}
	m.configs[name] = config
	return nil
}

// MockPublisher records published events
type MockPublisher struct {
	mu    sync.Mutex
	cells []instrument.CellEvent
	runs  []service.RunEvent
	order []string
}

func (p *MockPublisher) PublishCell(sessionID string, ev instrument.CellEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cells = append(p.cells, ev)
	p.order = append(p.order, "cell")
}

func (p *MockPublisher) PublishRun(sessionID string, ev service.RunEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = append(p.runs, ev)
	p.order = append(p.order, ev.Type)
}

func (p *MockPublisher) snapshot() ([]instrument.CellEvent, []service.RunEvent, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]instrument.CellEvent(nil), p.cells...),
		append([]service.RunEvent(nil), p.runs...),
		append([]string(nil), p.order...)
}

func newTestService(t *testing.T) (service.MazeService, *MockSessionManager, *MockPublisher) {
	t.Helper()
	sessions := NewMockSessionManager()
	publisher := &MockPublisher{}
	return service.NewMazeService(sessions, NewMockConfigManager(), publisher), sessions, publisher
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMazeService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	tests := []struct {
		name       string
		configName string
		wantErr    error
	}{
		{"create with default config", "", nil},
		{"create with named config", "test", nil},
		{"create with unknown config", "labyrinth", service.ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.configName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
			if info.ID == "" {
				t.Error("Expected a session ID")
			}
			if info.MazeState == nil || info.MazeState.Width != 11 || info.MazeState.Height != 9 {
				t.Errorf("Unexpected maze state: %+v", info.MazeState)
			}
			if info.MazeState.State != engine.Idle {
				t.Errorf("Expected idle, got %s", info.MazeState.State)
			}
			if len(info.MazeState.Rows) != 9 {
				t.Errorf("Expected 9 rows, got %d", len(info.MazeState.Rows))
			}
		})
	}
}

func TestMazeService_UnknownCreateListsConfigs(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateSession(context.Background(), "nope")
	if err == nil || !strings.Contains(err.Error(), "Available configs") {
		t.Errorf("Expected available configs in error, got %v", err)
	}
}

func TestMazeService_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != info.ID || got.ConfigName != "default" && got.ConfigName != "test" {
		t.Errorf("Unexpected session info: %+v", got)
	}

	list, _ := svc.ListSessions(ctx)
	if len(list) != 1 {
		t.Errorf("Expected 1 session, got %d", len(list))
	}

	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.DeleteSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestMazeService_GenerateAndSolve(t *testing.T) {
	ctx := context.Background()
	svc, sessions, publisher := newTestService(t)

	info, _ := svc.CreateSession(ctx, "test")

	run, err := svc.Generate(ctx, info.ID, service.GenerateRequest{Algorithm: "prim", Wait: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if run.Running || run.Result == nil {
		t.Fatalf("Expected finished run, got %+v", run)
	}
	if run.Kind != engine.KindGenerate || run.Algorithm != "prim" {
		t.Errorf("Unexpected run: %+v", run)
	}

	state, err := svc.GetState(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.Width != 11 || state.Height != 9 {
		t.Errorf("Expected preset dimensions, got %dx%d", state.Width, state.Height)
	}

	solved, err := svc.Solve(ctx, info.ID, service.SolveRequest{Wait: true})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if solved.Algorithm != "bfs" {
		t.Errorf("Expected preset pathfinder bfs, got %s", solved.Algorithm)
	}
	if !solved.Result.Found || solved.Result.Steps < 2 {
		t.Errorf("Expected a route, got %+v", solved.Result)
	}

	state, _ = svc.GetState(ctx, info.ID)
	if len(state.Route) != solved.Result.Steps {
		t.Errorf("Expected route of %d cells, got %d", solved.Result.Steps, len(state.Route))
	}
	if !strings.Contains(state.View(), ".") {
		t.Errorf("Expected route in view:\n%s", state.View())
	}

	waitFor(t, "run_finished events", func() bool {
		_, runs, _ := publisher.snapshot()
		return len(runs) == 4
	})

	cells, runs, order := publisher.snapshot()
	if len(cells) == 0 {
		t.Error("Expected cell events to be published")
	}
	want := []string{service.EventRunStarted, service.EventRunFinished, service.EventRunStarted, service.EventRunFinished}
	for i, ev := range runs {
		if ev.Type != want[i] {
			t.Errorf("Run event %d: expected %s, got %s", i, want[i], ev.Type)
		}
	}
	if last := order[len(order)-1]; last != service.EventRunFinished {
		t.Errorf("Expected run_finished after every cell event, last was %s", last)
	}
	if sessions.Saves() == 0 {
		t.Error("Expected generation to persist the session")
	}
}

func TestMazeService_RunErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	info, _ := svc.CreateSession(ctx, "")

	if _, err := svc.Generate(ctx, info.ID, service.GenerateRequest{Algorithm: "wilson"}); !errors.Is(err, generator.ErrUnknownAlgorithm) {
		t.Errorf("Expected ErrUnknownAlgorithm, got %v", err)
	}
	if _, err := svc.Generate(ctx, info.ID, service.GenerateRequest{Width: 10, Height: 9}); !errors.Is(err, grid.ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions, got %v", err)
	}
	if _, err := svc.Generate(ctx, "missing", service.GenerateRequest{}); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Pause(ctx, info.ID); !errors.Is(err, engine.ErrNoActiveRun) {
		t.Errorf("Expected ErrNoActiveRun, got %v", err)
	}
	if _, err := svc.Cancel(ctx, info.ID); !errors.Is(err, engine.ErrNoActiveRun) {
		t.Errorf("Expected ErrNoActiveRun, got %v", err)
	}
	if _, err := svc.SetSpeed(ctx, info.ID, -5); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest, got %v", err)
	}
}

func TestMazeService_PauseStepCancel(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	info, _ := svc.CreateSession(ctx, "")

	if _, err := svc.SetSpeed(ctx, info.ID, 1); err != nil {
		t.Fatalf("SetSpeed failed: %v", err)
	}
	if _, err := svc.Generate(ctx, info.ID, service.GenerateRequest{}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	state, err := svc.Pause(ctx, info.ID)
	if err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if !state.Paused || state.State != engine.Generating {
		t.Errorf("Expected paused generation, got %s paused=%v", state.State, state.Paused)
	}
	if _, err := svc.Step(ctx, info.ID); err != nil {
		t.Errorf("Step failed: %v", err)
	}
	if _, err := svc.Generate(ctx, info.ID, service.GenerateRequest{}); !errors.Is(err, engine.ErrRunInProgress) {
		t.Errorf("Expected ErrRunInProgress, got %v", err)
	}
	if _, err := svc.Cancel(ctx, info.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	waitFor(t, "cancelled run", func() bool {
		state, _ := svc.GetState(ctx, info.ID)
		return state.State == engine.Idle
	})
	state, _ = svc.GetState(ctx, info.ID)
	if state.Last == nil || !state.Last.Cancelled {
		t.Errorf("Expected cancelled result, got %+v", state.Last)
	}
}

func TestMazeService_Editing(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.Generate(ctx, info.ID, service.GenerateRequest{Wait: true}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// (3,1) is a room of every perfect maze
	state, err := svc.SetStart(ctx, info.ID, 3, 1)
	if err != nil {
		t.Fatalf("SetStart failed: %v", err)
	}
	if state.Start != (grid.Coord{X: 3, Y: 1}) {
		t.Errorf("Expected start (3,1), got %s", state.Start)
	}
	if _, err := svc.SetEnd(ctx, info.ID, 0, 0); !errors.Is(err, engine.ErrInvalidEndpoint) {
		t.Errorf("Expected ErrInvalidEndpoint, got %v", err)
	}

	state, err = svc.ToggleCell(ctx, info.ID, 2, 2)
	if err != nil {
		t.Fatalf("ToggleCell failed: %v", err)
	}
	if state.Rows[2][2] != ' ' {
		t.Errorf("Expected (2,2) to open, row is %q", state.Rows[2])
	}
	if _, err := svc.ToggleCell(ctx, info.ID, 0, 4); !errors.Is(err, engine.ErrProtectedCell) {
		t.Errorf("Expected ErrProtectedCell, got %v", err)
	}
}

func TestMazeService_EncodeDecode(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	first, _ := svc.CreateSession(ctx, "")
	second, _ := svc.CreateSession(ctx, "")

	if _, err := svc.Generate(ctx, first.ID, service.GenerateRequest{Algorithm: "kruskal", Width: 15, Height: 7, Wait: true}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	encoded, err := svc.Encode(ctx, first.ID)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "15,7,") {
		t.Errorf("Unexpected encoding %q", encoded)
	}

	state, err := svc.Decode(ctx, second.ID, encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if state.Encoded != encoded || state.Width != 15 {
		t.Errorf("Expected decoded maze to match, got %q", state.Encoded)
	}
	if state.End != (grid.Coord{X: 13, Y: 5}) {
		t.Errorf("Expected default end, got %s", state.End)
	}

	if _, err := svc.Decode(ctx, second.ID, "15,7,@@@"); err == nil {
		t.Error("Expected malformed encoding error")
	}
}

func TestMazeService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	preset := &engine.MazeConfig{Name: "wide", Width: 41, Height: 11, Generator: "division", Pathfinder: "astar"}
	if err := svc.SaveConfig(ctx, "wide", preset); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := svc.LoadConfig(ctx, "wide")
	if err != nil || loaded.Width != 41 {
		t.Fatalf("LoadConfig failed: %v %+v", err, loaded)
	}
	configs, _ := svc.ListConfigs(ctx)
	if len(configs) != 3 {
		t.Errorf("Expected 3 configs, got %d", len(configs))
	}
	if err := svc.SaveConfig(ctx, "bad", &engine.MazeConfig{Name: "bad", Width: 4, Height: 4}); err == nil {
		t.Error("Expected invalid preset to be rejected")
	}

	catalog := svc.Algorithms(ctx)
	if len(catalog.Generators) != 4 || len(catalog.Pathfinders) != 7 {
		t.Errorf("Unexpected catalog sizes %d/%d", len(catalog.Generators), len(catalog.Pathfinders))
	}
}
