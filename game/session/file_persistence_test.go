package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/fogquest/game/agents"
	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/setup"
)

func newTestPersistence(t *testing.T) (*FilePersistence, string) {
	tempDir, err := os.MkdirTemp("", "session_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	persistence, err := NewFilePersistence(filepath.Join(tempDir, "sessions"), setup.Options{})
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return persistence, filepath.Join(tempDir, "sessions")
}

func stateJSON(t *testing.T, state *engine.GameState) string {
	t.Helper()
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}
	return string(data)
}

func TestFilePersistence(t *testing.T) {
	persistence, dir := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence, nil)

	session, err := manager.Create("test1", "test", createTestConfig(), 11)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	t.Run("create auto-saves", func(t *testing.T) {
		if !persistence.Exists("test1") {
			t.Error("Session file should exist after create")
		}
		if _, err := os.Stat(filepath.Join(dir, "test1.map.yaml")); err != nil {
			t.Errorf("Expected a world file next to the session: %v", err)
		}
	})

	if _, err := session.Engine.Run(context.Background(), 12); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	session.Recorded = session.Engine.IsOver()
	if err := manager.Save("test1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Run("load restores the full state", func(t *testing.T) {
		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if loaded.ID != "test1" || loaded.ConfigName != "test" || loaded.Seed != 11 {
			t.Errorf("Unexpected metadata %+v", loaded)
		}
		if loaded.Recorded != session.Recorded {
			t.Errorf("Expected recorded=%v", session.Recorded)
		}
		if got, want := stateJSON(t, loaded.Engine.GetState()), stateJSON(t, session.Engine.GetState()); got != want {
			t.Errorf("Restored state differs:\n got %s\nwant %s", got, want)
		}
		if len(loaded.Agents) != 2 {
			t.Errorf("Expected 2 rebuilt agents, got %d", len(loaded.Agents))
		}
	})

	t.Run("restored game keeps playing", func(t *testing.T) {
		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatal(err)
		}
		if loaded.Engine.IsOver() {
			t.Skip("game already finished with this seed")
		}
		rec, err := loaded.Engine.Step()
		if err != nil {
			t.Fatalf("Step after restore failed: %v", err)
		}
		if rec.Step != session.Engine.GetState().Steps+1 {
			t.Errorf("Expected step %d, got %d", session.Engine.GetState().Steps+1, rec.Step)
		}
	})

	t.Run("manager loads missing sessions from disk", func(t *testing.T) {
		fresh := NewManagerWithPersistence(persistence, nil)
		got, err := fresh.Get("test1")
		if err != nil {
			t.Fatalf("Expected the session to load from persistence: %v", err)
		}
		if got.Engine.GetState().Steps != session.Engine.GetState().Steps {
			t.Error("Expected the persisted step count")
		}
		if fresh.Count() != 1 {
			t.Errorf("Expected the loaded session to be cached, got %d", fresh.Count())
		}
	})

	t.Run("LoadPersistedSessions", func(t *testing.T) {
		if _, err := manager.Create("test2", "test", createTestConfig(), 12); err != nil {
			t.Fatal(err)
		}
		fresh := NewManagerWithPersistence(persistence, nil)
		if err := fresh.LoadPersistedSessions(); err != nil {
			t.Fatal(err)
		}
		if fresh.Count() != 2 {
			t.Errorf("Expected 2 sessions loaded, got %d", fresh.Count())
		}
		ids, _ := persistence.ListAll()
		if len(ids) != 2 {
			t.Errorf("Expected the map files to be skipped by ListAll, got %v", ids)
		}
	})

	t.Run("SaveAllSessions", func(t *testing.T) {
		if err := manager.SaveAllSessions(); err != nil {
			t.Errorf("SaveAllSessions failed: %v", err)
		}
	})

	t.Run("delete removes both files", func(t *testing.T) {
		if err := manager.Delete("test1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if persistence.Exists("test1") {
			t.Error("Session file should be gone")
		}
		if _, err := os.Stat(filepath.Join(dir, "test1.map.yaml")); !os.IsNotExist(err) {
			t.Error("World file should be gone")
		}
		if _, err := persistence.Load("test1"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
		if err := persistence.Delete("test1"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("delete from memory keeps the files", func(t *testing.T) {
		if err := manager.DeleteFromMemory("test2"); err != nil {
			t.Fatal(err)
		}
		if !persistence.Exists("test2") {
			t.Error("Expected the persisted copy to stay")
		}
		if _, err := manager.Get("test2"); err != nil {
			t.Errorf("Expected the session to reload from disk: %v", err)
		}
	})
}

func TestFilePersistenceQueuedAgents(t *testing.T) {
	persistence, _ := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence, nil)

	cfg := createTestConfig()
	cfg.Agents[1].Kind = agents.KindHuman
	if _, err := manager.Create("remote", "test", cfg, 3); err != nil {
		t.Fatal(err)
	}

	loaded, err := persistence.Load("remote")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := loaded.Agents[1].(*agents.Queued); !ok {
		t.Errorf("Expected the restored human to be queued, got %T", loaded.Agents[1])
	}
}

func TestFilePersistenceFileStructure(t *testing.T) {
	persistence, dir := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence, nil)

	if _, err := manager.Create("file_test", "arena", createTestConfig(), 1); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "file_test.json"))
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}
	content := string(data)
	for _, field := range []string{`"id"`, `"config_name": "arena"`, `"config"`, `"seed": 1`, `"created_at"`, `"game_state"`, `"knowledge"`} {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain %s", field)
		}
	}
	if !strings.Contains(content, `"world": null`) {
		t.Error("Expected the world to be kept out of the session file")
	}

	mapData, err := os.ReadFile(filepath.Join(dir, "file_test.map.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(mapData), "rows:") || !strings.Contains(string(mapData), "kind: boss") {
		t.Errorf("Unexpected world file:\n%s", mapData)
	}

	// a session file without its world cannot be restored
	os.Remove(filepath.Join(dir, "file_test.map.yaml"))
	if _, err := persistence.Load("file_test"); err == nil {
		t.Error("Expected an error without the world file")
	}
}
