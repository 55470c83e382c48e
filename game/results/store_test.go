package results

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/wricardo/fogquest/game/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "results.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, name := range []string{"alice", "bob", "alice"} {
		r := &Result{
			SessionID:  "s" + string(rune('a'+i)),
			ConfigName: "default",
			Status:     engine.StatusAgentWon,
			AgentName:  name,
			AgentKind:  "explorer",
			Steps:      10 + i,
			NumAgents:  2,
			Seed:       int64(i),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if r.ID == "" {
			t.Error("Expected Record to assign an ID")
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(recent))
	}
	if recent[0].SessionID != "sc" || recent[1].SessionID != "sb" {
		t.Errorf("Expected newest first, got %s, %s", recent[0].SessionID, recent[1].SessionID)
	}
	if !recent[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("Unexpected created_at %v", recent[0].CreatedAt)
	}
	if recent[0].Status != engine.StatusAgentWon || recent[0].Steps != 12 {
		t.Errorf("Unexpected result %+v", recent[0])
	}
}

func TestRecordIsIdempotentPerSession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Record(ctx, &Result{SessionID: "same", Status: engine.StatusAgentDied, AgentName: "bob"}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Errorf("Expected one row for a session, got %d", len(recent))
	}
}

func TestLeaderboard(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	games := []struct {
		agent  string
		status engine.Status
		steps  int
	}{
		{"alice", engine.StatusAgentWon, 30},
		{"alice", engine.StatusAgentWon, 10},
		{"alice", engine.StatusAgentDied, 5},
		{"bob", engine.StatusAgentWon, 8},
		{"carol", engine.StatusAgentDied, 3},
		{"dave", engine.StatusAgentWon, 12},
		{"dave", engine.StatusAgentDied, 9},
		{"dave", engine.StatusAgentDied, 2},
	}
	for i, g := range games {
		r := &Result{SessionID: string(rune('a' + i)), Status: g.status, AgentName: g.agent, Steps: g.steps}
		if err := store.Record(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	board, err := store.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	want := []string{"alice", "bob", "dave", "carol"}
	if len(board) != len(want) {
		t.Fatalf("Expected %d standings, got %d", len(want), len(board))
	}
	for i, name := range want {
		if board[i].AgentName != name {
			t.Errorf("Rank %d: expected %s, got %s", i+1, name, board[i].AgentName)
		}
	}
	alice := board[0]
	if alice.Wins != 2 || alice.Deaths != 1 || alice.AvgWinSteps != 20 || alice.FastestSteps != 10 {
		t.Errorf("Unexpected standing for alice: %+v", alice)
	}
	if carol := board[3]; carol.Wins != 0 || carol.AvgWinSteps != 0 || carol.FastestSteps != 0 {
		t.Errorf("Unexpected standing for carol: %+v", carol)
	}
}

func TestFromState(t *testing.T) {
	state := &engine.GameState{
		ConfigName: "duel",
		Agents: []engine.AgentState{
			{Name: "alice", Kind: "explorer"},
			{Name: "bob", Kind: "random"},
		},
		Status: engine.StatusRunning,
	}
	if _, err := FromState("ab12", 1, state); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("Expected ErrNotTerminal, got %v", err)
	}

	state.Status = engine.StatusAgentDied
	state.Outcome = &engine.Outcome{Status: engine.StatusAgentDied, AgentIndex: 1, AgentName: "bob", Steps: 17}
	r, err := FromState("ab12", 1, state)
	if err != nil {
		t.Fatalf("FromState failed: %v", err)
	}
	if r.AgentKind != "random" || r.Steps != 17 || r.NumAgents != 2 || r.ConfigName != "duel" {
		t.Errorf("Unexpected result %+v", r)
	}
}
