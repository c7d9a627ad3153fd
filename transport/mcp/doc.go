// Package mcp exposes the maze server to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes one or more REST calls
// against the api package, so the MCP surface always matches the HTTP one.
//
// Tools:
//   - create_session, list_sessions
//   - generate_maze, solve_maze (wait for the run by default)
//   - maze_state: ASCII view with Start, End and the last route
//   - run_control: pause, resume, step, cancel and delay
//   - set_endpoints
//   - encode_maze, decode_maze
//   - list_configs, algorithm_info
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
