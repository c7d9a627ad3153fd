// Package service provides the business logic layer of the maze lab server.
//
// The service package implements:
//   - Multi-session maze management
//   - Preset loading and saving
//   - Run control (generate, solve, pause, resume, step, cancel, speed)
//   - Maze editing and codec import/export
//
// Core Interfaces:
//
// MazeService is the main service interface providing high-level maze operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages preset loading and validation.
// EventPublisher receives the cell events and run lifecycle events of every session.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the maze engine. Each session owns its own engine. Cell events of a run are
// queued on a per-session dispatcher so that a slow publisher never holds the
// engine's worker; run_finished is published only after every cell event of
// the run has been delivered.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	mazeService := service.NewMazeService(sessionMgr, configMgr, hub)
//
//	info, err := mazeService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	run, err := mazeService.Generate(ctx, info.ID, service.GenerateRequest{Algorithm: "prim", Wait: true})
package service
