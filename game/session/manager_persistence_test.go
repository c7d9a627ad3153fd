package session

import (
	"context"
	"testing"
	"time"

	"github.com/wricardo/maze-lab/game/generator"
)

func TestManagerWithPersistence(t *testing.T) {
	persistence, configManager := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence)

	mazeConfig, err := configManager.LoadConfig("small")
	if err != nil {
		t.Fatalf("Failed to load preset: %v", err)
	}

	t.Run("Create Session Auto-Saves", func(t *testing.T) {
		session, err := manager.Create("auto1", mazeConfig)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if !persistence.Exists(session.ID) {
			t.Error("Session should be auto-saved on creation")
		}

		loaded, err := persistence.Load(session.ID)
		if err != nil {
			t.Fatalf("Failed to load auto-saved session: %v", err)
		}
		if loaded.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loaded.ID)
		}
	})

	t.Run("Get Session Loads from Persistence", func(t *testing.T) {
		manager2 := NewManagerWithPersistence(persistence)

		session, err := manager2.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to get session from persistence: %v", err)
		}
		if session.ID != "auto1" {
			t.Errorf("Expected ID auto1, got %s", session.ID)
		}

		session2, err := manager2.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to get session from memory: %v", err)
		}
		if session2 != session {
			t.Error("Session should be cached in memory after loading from persistence")
		}
	})

	t.Run("Save Method Persists Changes", func(t *testing.T) {
		session, err := manager.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}

		run, err := session.Engine.Generate(context.Background(), generator.Prim, 11, 9)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		run.Wait()
		encoded := session.Engine.Encode()

		if err := manager.Save("auto1"); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		manager3 := NewManagerWithPersistence(persistence)
		loaded, err := manager3.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to load session after manual save: %v", err)
		}
		if loaded.Engine.Encode() != encoded {
			t.Error("Generated maze should be persisted")
		}
	})

	t.Run("Delete Removes from Persistence", func(t *testing.T) {
		session, err := manager.Create("delete_test", mazeConfig)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if !persistence.Exists(session.ID) {
			t.Error("Session should exist in persistence")
		}

		if err := manager.Delete(session.ID); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists(session.ID) {
			t.Error("Session should be removed from persistence on delete")
		}
		if _, err := manager.Get(session.ID); err == nil {
			t.Error("Should not be able to get deleted session")
		}
	})

	t.Run("Load Persisted Sessions on Startup", func(t *testing.T) {
		sessions := []string{"startup1", "startup2", "startup3"}
		for _, id := range sessions {
			if _, err := manager.Create(id, mazeConfig); err != nil {
				t.Fatalf("Failed to create session %s: %v", id, err)
			}
		}

		// Simulates a server restart
		manager4 := NewManagerWithPersistence(persistence)
		if err := manager4.LoadPersistedSessions(); err != nil {
			t.Fatalf("Failed to load persisted sessions: %v", err)
		}

		for _, id := range sessions {
			session, err := manager4.Get(id)
			if err != nil {
				t.Errorf("Failed to get session %s after loading persisted sessions: %v", id, err)
				continue
			}
			if session.ID != id {
				t.Errorf("Expected ID %s, got %s", id, session.ID)
			}
		}
		if manager4.Count() != len(sessions)+1 {
			t.Errorf("Expected %d sessions, got %d", len(sessions)+1, manager4.Count())
		}
	})

	t.Run("Save All Sessions Persists Access Time", func(t *testing.T) {
		session, err := manager.Get("startup1")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}

		originalTime := session.LastAccessedAt
		time.Sleep(10 * time.Millisecond)

		if err := manager.UpdateLastAccessed("startup1"); err != nil {
			t.Fatalf("Failed to update last accessed: %v", err)
		}
		if err := manager.SaveAllSessions(); err != nil {
			t.Fatalf("SaveAllSessions failed: %v", err)
		}

		manager5 := NewManagerWithPersistence(persistence)
		loaded, err := manager5.Get("startup1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if !loaded.LastAccessedAt.After(originalTime) {
			t.Error("Last accessed time should be updated and persisted")
		}
	})
}
