package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/maze-lab/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// Generate and solve wait for the run to finish
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Maze Lab",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Lab - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Mazes are odd-sized grids. Rooms sit at odd (x,y) coordinates and the border is
always wall. S marks Start, E marks End and '.' marks the last route found.

AVAILABLE TOOLS:
- create_session: Create a maze session from a preset
- list_sessions: List active sessions
- generate_maze: Carve a new maze (dfs, prim, kruskal, recursive_division)
- solve_maze: Search Start to End (dfs, bfs, dijkstra, gbfs, astar, bidirectional_dfs, bidirectional_bfs)
- maze_state: ASCII view of the maze with the current route
- run_control: Pause, resume, step or cancel a running generation or search
- set_endpoints: Move Start and/or End onto open cells
- encode_maze / decode_maze: Share mazes as "width,height,base64" strings
- list_configs: List maze presets
- algorithm_info: Describe the available algorithms`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new maze session with optional preset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active maze sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "generate_maze",
		Description: "Generate a new perfect maze. Unset fields use the session preset.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"algorithm": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"dfs", "prim", "kruskal", "recursive_division"},
					"description": "Generation algorithm",
				},
				"width": map[string]interface{}{
					"type":        "integer",
					"description": "Odd width, at least 5",
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": "Odd height, at least 5",
				},
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "Wait for the generation to finish (default true)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGenerate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_maze",
		Description: "Search a route from Start to End",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"algorithm": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"dfs", "bfs", "dijkstra", "gbfs", "astar", "bidirectional_dfs", "bidirectional_bfs"},
					"description": "Pathfinding algorithm",
				},
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "Wait for the search to finish (default true)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "maze_state",
		Description: "Get the maze as ASCII art with Start, End and the last route",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleMazeState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_control",
		Description: "Control the running generation or search of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"action": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"pause", "resume", "step", "cancel"},
					"description": "Control to apply",
				},
				"delay_ms": map[string]interface{}{
					"type":        "integer",
					"description": "Also set the delay after each cell event (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRunControl)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_endpoints",
		Description: "Move Start and/or End onto open interior cells",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"start_x":    map[string]interface{}{"type": "integer"},
				"start_y":    map[string]interface{}{"type": "integer"},
				"end_x":      map[string]interface{}{"type": "integer"},
				"end_y":      map[string]interface{}{"type": "integer"},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSetEndpoints)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "encode_maze",
		Description: "Encode the maze of a session as a width,height,base64 string",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleEncode)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "decode_maze",
		Description: "Replace the maze of a session with an encoded one",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"encoded": map[string]interface{}{
					"type":        "string",
					"description": "Encoded maze from encode_maze",
				},
			},
			Required: []string{"session_id", "encoded"},
		},
	}, c.handleDecode)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available maze presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "algorithm_info",
		Description: "Describe the generation and pathfinding algorithms",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"algorithm": map[string]interface{}{
					"type":        "string",
					"description": "Only describe this algorithm (optional)",
				},
			},
		},
	}, c.handleAlgorithmInfo)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, op string) string {
	p := "/api/sessions/" + url.PathEscape(sessionID)
	if op != "" {
		p += "/" + op
	}
	return p
}

// intArg reads an integer argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func boolArg(args map[string]interface{}, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		size := ""
		if s.MazeState != nil {
			size = fmt.Sprintf(", %dx%d, %s", s.MazeState.Width, s.MazeState.Height, s.MazeState.State)
		}
		fmt.Fprintf(&b, "- %s (Config: %s%s, Created: %s)\n",
			s.ID, s.ConfigName, size, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	req := service.GenerateRequest{Wait: boolArg(args, "wait", true)}
	req.Algorithm, _ = args["algorithm"].(string)
	req.Width, _ = intArg(args, "width")
	req.Height, _ = intArg(args, "height")

	var run service.RunInfo
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "generate"), req, &run); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := formatRunInfo(&run)
	if !run.Running {
		if state, err := c.state(ctx, sessionID); err == nil {
			text += "\n" + state.View()
		}
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	req := service.SolveRequest{Wait: boolArg(args, "wait", true)}
	req.Algorithm, _ = args["algorithm"].(string)

	var run service.RunInfo
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "solve"), req, &run); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := formatRunInfo(&run)
	if run.Result != nil && run.Result.Found {
		if state, err := c.state(ctx, sessionID); err == nil {
			text += "\n" + state.View()
		}
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) state(ctx context.Context, sessionID string) (*service.MazeState, error) {
	var state service.MazeState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "state"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) handleMazeState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	state, err := c.state(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMazeState(state)), nil
}

func (c *Client) handleRunControl(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	action, _ := args["action"].(string)

	var state service.MazeState
	if delay, ok := intArg(args, "delay_ms"); ok {
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "speed"), map[string]int{"delay_ms": delay}, &state); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	switch action {
	case "":
		if _, ok := intArg(args, "delay_ms"); !ok {
			return mcp.NewToolResultError("action or delay_ms is required"), nil
		}
	case "pause", "resume", "step", "cancel":
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, action), nil, &state); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q: use pause, resume, step or cancel", action)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("State: %s (paused: %t, delay: %dms)", state.State, state.Paused, state.DelayMS)), nil
}

func (c *Client) handleSetEndpoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	sx, hasSX := intArg(args, "start_x")
	sy, hasSY := intArg(args, "start_y")
	ex, hasEX := intArg(args, "end_x")
	ey, hasEY := intArg(args, "end_y")
	moveStart, moveEnd := hasSX && hasSY, hasEX && hasEY
	if !moveStart && !moveEnd {
		return mcp.NewToolResultError("give start_x/start_y, end_x/end_y or both"), nil
	}

	var state service.MazeState
	if moveStart {
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "start"), map[string]int{"x": sx, "y": sy}, &state); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if moveEnd {
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "end"), map[string]int{"x": ex, "y": ey}, &state); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	return mcp.NewToolResultText(formatMazeState(&state)), nil
}

func (c *Client) handleEncode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var resp struct {
		Encoded string `json:"encoded"`
	}
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "encode"), nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(resp.Encoded), nil
}

func (c *Client) handleDecode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	encoded, _ := args["encoded"].(string)

	var state service.MazeState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "decode"), map[string]string{"encoded": encoded}, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Maze loaded.\n\n" + formatMazeState(&state)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Presets:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Maze: %dx%d, Generator: %s, Pathfinder: %s, Delay: %dms\n\n",
			config.Name, config.ConfigID, config.Description, config.Width, config.Height,
			config.Generator, config.Pathfinder, config.DelayMS)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleAlgorithmInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	only, _ := request.GetArguments()["algorithm"].(string)
	only = strings.ToLower(strings.TrimSpace(only))

	var catalog service.AlgorithmCatalog
	if err := c.apiCall(ctx, "GET", "/api/algorithms", nil, &catalog); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := formatCatalog(&catalog, only)
	if text == "" {
		return mcp.NewToolResultError(fmt.Sprintf("unknown algorithm %q", only)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.MazeConfig != nil {
		cfg := session.MazeConfig
		fmt.Fprintf(&b, "Preset: %dx%d, Generator: %s, Pathfinder: %s, Delay: %dms\n",
			cfg.Width, cfg.Height, cfg.Generator, cfg.Pathfinder, cfg.DelayMS)
	}
	if session.MazeState != nil {
		fmt.Fprintf(&b, "State: %s\n", session.MazeState.State)
	}
	return b.String()
}

func formatRunInfo(run *service.RunInfo) string {
	if run.Running || run.Result == nil {
		return fmt.Sprintf("Started %s with %s. Cell events stream to /ws?session=%s\n", run.Kind, run.Algorithm, run.SessionID)
	}

	r := run.Result
	var b strings.Builder
	switch {
	case r.Cancelled:
		fmt.Fprintf(&b, "✗ %s with %s cancelled after %d events\n", r.Kind, r.Algorithm, r.Events)
	case r.Error != "":
		fmt.Fprintf(&b, "✗ %s with %s failed: %s\n", r.Kind, r.Algorithm, r.Error)
	case r.Kind == "generate":
		fmt.Fprintf(&b, "✓ Generated %dx%d maze with %s (%d events, %s)\n", r.Width, r.Height, r.Algorithm, r.Events, r.Elapsed)
	case r.Found:
		fmt.Fprintf(&b, "✓ Route found with %s: %d steps (%d events, %s)\n", r.Algorithm, r.Steps, r.Events, r.Elapsed)
	default:
		fmt.Fprintf(&b, "✗ No route from Start to End with %s (%d events)\n", r.Algorithm, r.Events)
	}
	return b.String()
}

func formatMazeState(state *service.MazeState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Maze: %dx%d  State: %s", state.Width, state.Height, state.State)
	if state.Paused {
		b.WriteString(" (paused)")
	}
	fmt.Fprintf(&b, "\nStart: (%d,%d)  End: (%d,%d)  Delay: %dms\n",
		state.Start.X, state.Start.Y, state.End.X, state.End.Y, state.DelayMS)
	if len(state.Route) > 0 {
		fmt.Fprintf(&b, "Route: %d steps\n", len(state.Route))
	}
	if state.Last != nil {
		b.WriteString("Last run: " + formatRunInfo(&service.RunInfo{Kind: state.Last.Kind, Algorithm: state.Last.Algorithm, Result: state.Last}))
	}
	b.WriteString("\n")
	b.WriteString(state.View())
	b.WriteString("\n\nLegend: # wall, S start, E end, . route")
	return b.String()
}

func formatCatalog(catalog *service.AlgorithmCatalog, only string) string {
	var b strings.Builder
	for _, g := range catalog.Generators {
		if only != "" && only != string(g.Algorithm) {
			continue
		}
		fmt.Fprintf(&b, "[generator] %s (%s)\n  %s\n", g.Name, g.Algorithm, g.Description)
	}
	for _, p := range catalog.Pathfinders {
		if only != "" && only != string(p.Algorithm) {
			continue
		}
		shortest := "not guaranteed shortest"
		if p.Shortest {
			shortest = "shortest route"
		}
		fmt.Fprintf(&b, "[pathfinder] %s (%s)\n  frontier: %s, %s\n  %s\n", p.Name, p.Algorithm, p.Frontier, shortest, p.Description)
	}
	return b.String()
}
