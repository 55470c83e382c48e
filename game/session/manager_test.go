package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/fogquest/game/agents"
	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/service"
)

func createTestConfig() *engine.GameConfig {
	cfg := engine.DefaultGameConfig()
	cfg.Name = "Test Config"
	cfg.Height, cfg.Width = 8, 8
	cfg.NumPowerUps, cfg.NumMonsters = 3, 2
	cfg.Agents = []engine.AgentConfig{
		{Name: "alice", Kind: agents.KindExplorer},
		{Name: "bob", Kind: agents.KindRandom},
	}
	return cfg
}

func TestManager_Create(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", "test", config, 42)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Engine == nil || len(session.Agents) != 2 {
			t.Error("Expected engine and agents to be initialized")
		}
		if session.Seed != 42 || session.ConfigName != "test" {
			t.Errorf("Unexpected seed %d / config %q", session.Seed, session.ConfigName)
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", "test", config, 1)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %q", session.ID)
		}
	})

	t.Run("duplicate ID is case-insensitive", func(t *testing.T) {
		if _, err := manager.Create("TEST-SESSION", "test", config, 1); !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		if _, err := manager.Create("../escape", "test", config, 1); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := createTestConfig()
		bad.NumMonsters = 1000
		if _, err := manager.Create("bad", "bad", bad, 1); !errors.Is(err, engine.ErrTooManyObjects) {
			t.Errorf("Expected ErrTooManyObjects, got %v", err)
		}
	})

	t.Run("zero seed uses the config seed", func(t *testing.T) {
		seeded := createTestConfig()
		seeded.Seed = 77
		session, err := manager.Create("seeded", "test", seeded, 0)
		if err != nil {
			t.Fatal(err)
		}
		if session.Seed != 77 {
			t.Errorf("Expected seed 77, got %d", session.Seed)
		}
	})

	t.Run("humans are driven remotely", func(t *testing.T) {
		cfg := createTestConfig()
		cfg.Agents[0].Kind = agents.KindHuman
		session, err := manager.Create("remote", "test", cfg, 1)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := session.Agents[0].(*agents.Queued); !ok {
			t.Errorf("Expected a queued agent, got %T", session.Agents[0])
		}
	})
}

func TestManager_SameSeedSameWorld(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	a, _ := manager.Create("a", "test", config, 5)
	b, _ := manager.Create("b", "test", config, 5)

	sa, sb := a.Engine.GetState(), b.Engine.GetState()
	if fmt.Sprint(sa.World.Tiles) != fmt.Sprint(sb.World.Tiles) || len(sa.World.Objects) != len(sb.World.Objects) {
		t.Error("Expected identical worlds for the same seed")
	}
	for i := range sa.Agents {
		if sa.Agents[i].Location != sb.Agents[i].Location {
			t.Errorf("Agent %d starts differ", i)
		}
	}
}

func TestManager_Get(t *testing.T) {
	manager := NewManager(nil)
	created, _ := manager.Create("Mixed-Case", "test", createTestConfig(), 1)

	got, err := manager.Get("mixed-case")
	if err != nil {
		t.Fatalf("Expected case-insensitive lookup, got %v", err)
	}
	if got != created {
		t.Error("Expected the same session")
	}

	_, err = manager.Get("missing")
	if !errors.Is(err, ErrSessionNotFound) || !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(nil)
	manager.Create("gone", "test", createTestConfig(), 1)

	if err := manager.Delete("GONE"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := manager.Get("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected the session to be gone, got %v", err)
	}
	if err := manager.Delete("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if err := manager.DeleteFromMemory("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager(nil)
	for _, id := range []string{"one", "two", "three"} {
		if _, err := manager.Create(id, "test", createTestConfig(), 1); err != nil {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond)
	}

	list := manager.List()
	if len(list) != 3 || manager.Count() != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(list))
	}
	if list[0].ID != "one" || list[2].ID != "three" {
		t.Errorf("Expected sessions oldest first, got %s..%s", list[0].ID, list[2].ID)
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager(nil)
	old, _ := manager.Create("old", "test", createTestConfig(), 1)
	manager.Create("fresh", "test", createTestConfig(), 1)
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected 1 expired session, got %d", removed)
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Error("Expected the fresh session to survive")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager(nil)
	session, _ := manager.Create("touch", "test", createTestConfig(), 1)
	before := session.LastAccessedAt

	time.Sleep(2 * time.Millisecond)
	if err := manager.UpdateLastAccessed("touch"); err != nil {
		t.Fatal(err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected the access time to move forward")
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := manager.Save("touch"); err != nil {
		t.Errorf("Save without persistence should be a no-op, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", n)
			if _, err := manager.Create(id, "test", config, int64(n+1)); err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(id); err != nil {
				errs <- err
			}
			manager.List()
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 20 {
		t.Errorf("Expected 20 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", "test", config, 9)
	session2, _ := manager.Create("iso-2", "test", config, 9)

	if _, err := session1.Engine.Step(); err != nil {
		t.Fatal(err)
	}
	if session2.Engine.GetState().Steps != 0 {
		t.Error("Session 2 should not be affected by session 1 steps")
	}
	if session1.Engine.GetState().World == session2.Engine.GetState().World {
		t.Error("Sessions should not share a world")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", "test", config, 1)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %d", len(session.ID))
		}
	}
}
