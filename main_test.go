package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wricardo/maze-lab/game/service"
	"github.com/wricardo/maze-lab/transport/mcp"
	"github.com/wricardo/maze-lab/transport/websocket"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Maze Lab Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

// useTempDirs points the directory flags at fresh temp directories for one test
func useTempDirs(t *testing.T) (string, string) {
	t.Helper()
	cfgDir, sessDir := t.TempDir(), filepath.Join(t.TempDir(), "sessions")

	origConfig, origSessions := *configDir, *sessionsDir
	*configDir, *sessionsDir = cfgDir, sessDir
	t.Cleanup(func() { *configDir, *sessionsDir = origConfig, origSessions })
	return cfgDir, sessDir
}

func TestInitializeServices(t *testing.T) {
	_, sessDir := useTempDirs(t)

	svcs, err := initializeServices(nil)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svcs.maze == nil || svcs.sessions == nil || svcs.configs == nil {
		t.Fatal("Expected all services to be initialized")
	}
	if _, err := os.Stat(sessDir); err != nil {
		t.Errorf("Expected sessions directory to be created: %v", err)
	}

	// An empty preset directory still offers the built-in classic preset
	info, err := svcs.maze.CreateSession(context.Background(), "classic")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if info.MazeConfig.Width != 31 {
		t.Errorf("Expected classic 31x31 preset, got %+v", info.MazeConfig)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	useTempDirs(t)
	*configDir = "/non/existent/path"

	if _, err := initializeServices(nil); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestInitializeServices_ReloadsPersistedSessions(t *testing.T) {
	useTempDirs(t)

	svcs, err := initializeServices(nil)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	ctx := context.Background()
	info, err := svcs.maze.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := svcs.maze.SetSpeed(ctx, info.ID, 0); err != nil {
		t.Fatalf("Failed to set speed: %v", err)
	}
	if _, err := svcs.maze.Generate(ctx, info.ID, service.GenerateRequest{Algorithm: "prim", Width: 15, Height: 9, Wait: true}); err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	encoded, _ := svcs.maze.Encode(ctx, info.ID)

	restarted, err := initializeServices(nil)
	if err != nil {
		t.Fatalf("Failed to reinitialize services: %v", err)
	}
	got, err := restarted.maze.Encode(ctx, info.ID)
	if err != nil {
		t.Fatalf("Persisted session not restored: %v", err)
	}
	if got != encoded {
		t.Errorf("Restored maze differs:\n%s\n%s", got, encoded)
	}
}

func TestPruneOrphanedSessions(t *testing.T) {
	_, sessDir := useTempDirs(t)

	svcs, err := initializeServices(nil)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	info, err := svcs.maze.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if n := pruneOrphanedSessions(svcs.sessions, svcs.persistence); n != 0 {
		t.Errorf("Expected nothing to prune, got %d", n)
	}

	if err := os.Remove(filepath.Join(sessDir, info.ID+".json")); err != nil {
		t.Fatalf("Failed to remove session file: %v", err)
	}
	if n := pruneOrphanedSessions(svcs.sessions, svcs.persistence); n != 1 {
		t.Errorf("Expected 1 pruned session, got %d", n)
	}
	if svcs.sessions.Count() != 0 {
		t.Errorf("Expected no sessions in memory, got %d", svcs.sessions.Count())
	}
}

func TestFilesystemSyncRoutineStops(t *testing.T) {
	useTempDirs(t)
	svcs, err := initializeServices(nil)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		filesystemSyncRoutine(ctx, svcs.sessions, svcs.persistence, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("filesystemSyncRoutine did not stop")
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://localhost:0"))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", w.Code)
	}

	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest("POST", "/mcp", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range resp.Result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"create_session", "generate_maze", "solve_maze", "maze_state", "encode_maze", "decode_maze", "set_endpoints", "list_configs", "algorithm_info", "list_sessions"} {
		if !names[want] {
			t.Errorf("Expected tool %s, got %v", want, names)
		}
	}
}

func TestInitializeServices_PublishesToHub(t *testing.T) {
	useTempDirs(t)
	hub := websocket.NewHub()
	go hub.Run()

	svcs, err := initializeServices(hub)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svcs.hub != hub {
		t.Error("Expected hub to be kept")
	}

	info, err := svcs.maze.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := svcs.maze.SetSpeed(context.Background(), info.ID, 0); err != nil {
		t.Fatalf("Failed to set speed: %v", err)
	}
	run, err := svcs.maze.Solve(context.Background(), info.ID, service.SolveRequest{Algorithm: "bfs", Wait: true})
	if err != nil {
		t.Fatalf("Failed to solve: %v", err)
	}
	if run.Result == nil || !run.Result.Found {
		t.Errorf("Expected a route across the open grid, got %+v", run.Result)
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}
	if *host == "" {
		t.Error("Host should have a default value")
	}
	if *configDir == "" || *sessionsDir == "" {
		t.Error("Directories should have default values")
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("MAZE_TEST_DIR", "/tmp/presets")
	if got := envOrDefault("MAZE_TEST_DIR", "configs"); got != "/tmp/presets" {
		t.Errorf("Expected env value, got %s", got)
	}
	if got := envOrDefault("MAZE_TEST_UNSET", "configs"); got != "configs" {
		t.Errorf("Expected fallback, got %s", got)
	}
}
