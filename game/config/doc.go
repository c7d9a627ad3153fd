// Package config provides maze preset management.
//
// A preset names a maze size, a generation algorithm, a pathfinding algorithm
// and an animation delay. Presets live in a directory as JSON or TOML files;
// the file name without extension is the preset ID used to create sessions.
//
//	# wide.toml
//	name = "wide"
//	description = "Wide maze with short dead ends"
//	width = 61
//	height = 21
//	generator = "prim"
//	pathfinder = "bidirectional_bfs"
//	delay_ms = 5
//
// The Manager caches parsed presets and serves "classic" as the default. When
// the directory has no classic preset, a built-in one (31x31, DFS, A*, 10 ms)
// is used. Watch keeps the cache fresh while presets are edited on disk.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	go manager.Watch(ctx)
//
//	preset, err := manager.LoadConfig("wide")
package config
