// Package session provides session management for the maze lab server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - UUID session identifiers
//   - Idle session eviction
//   - Optional file persistence
//
// Core Types:
//
// Manager is the session store that implements service.SessionManager. Each
// session owns a maze engine, the preset it was created from and its
// creation and last access times.
//
// Persistence:
//
// FilePersistence writes one JSON file per session holding the preset ID,
// the codec string of the maze, Start, End and the animation delay. Runs in
// flight are not persisted; a restored session is always idle.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	manager.LoadPersistedSessions()
//	go manager.RunCleanup(ctx, time.Minute, 24*time.Hour)
//
//	sess, err := manager.Create("", preset)
package session
