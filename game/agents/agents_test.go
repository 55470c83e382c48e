package agents

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/wricardo/fogquest/game/engine"
)

// observe builds the observation an agent at loc would get after one refresh
func observe(w *engine.World, loc engine.Location, resource int) engine.Observation {
	ks := engine.NewKnowledgeStore(1, w.Height, w.Width)
	ks.Refresh(0, w, loc)
	return ks.Observation(0, loc, resource)
}

func testWorld() *engine.World {
	w := engine.NewWorld(6, 6)
	w.Goal = engine.Location{Row: 5, Col: 5}
	w.Objects[w.Goal] = engine.Boss()
	return w
}

func TestNew(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tests := []struct {
		kind string
		want interface{}
	}{
		{KindRandom, &Random{}},
		{"", &Random{}},
		{KindExplorer, &Explorer{}},
		{"Explorer", &Explorer{}},
		{KindQueued, &Queued{}},
		{KindHuman, &Human{}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			a, err := New(tt.kind, "agent", rng)
			if err != nil {
				t.Fatalf("New(%q) failed: %v", tt.kind, err)
			}
			if a.Name() != "agent" {
				t.Errorf("Expected name agent, got %q", a.Name())
			}
			switch tt.want.(type) {
			case *Random:
				if _, ok := a.(*Random); !ok {
					t.Errorf("Expected *Random, got %T", a)
				}
			case *Explorer:
				if _, ok := a.(*Explorer); !ok {
					t.Errorf("Expected *Explorer, got %T", a)
				}
			case *Queued:
				if _, ok := a.(*Queued); !ok {
					t.Errorf("Expected *Queued, got %T", a)
				}
			case *Human:
				if _, ok := a.(*Human); !ok {
					t.Errorf("Expected *Human, got %T", a)
				}
			}
		})
	}

	if _, err := New("telepath", "x", rng); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}
}

func TestRandomIsReproducible(t *testing.T) {
	obs := observe(testWorld(), engine.Location{Row: 2, Col: 2}, 10)
	a := NewRandom("a", rand.New(rand.NewSource(42)))
	b := NewRandom("b", rand.New(rand.NewSource(42)))

	counts := map[engine.Direction]int{}
	for i := 0; i < 200; i++ {
		da, db := a.Decide(obs), b.Decide(obs)
		if da != db {
			t.Fatalf("Expected equal seeds to agree at decision %d: %s vs %s", i, da, db)
		}
		if !da.Valid() {
			t.Fatalf("Random returned invalid direction %q", da)
		}
		counts[da]++
	}
	if len(counts) != 4 {
		t.Errorf("Expected all four directions over 200 draws, got %v", counts)
	}
}

func TestQueued(t *testing.T) {
	q := NewQueued("q")
	obs := engine.Observation{}

	if d := q.Decide(obs); d != "" {
		t.Errorf("Expected no direction from an empty queue, got %q", d)
	}

	q.Push(engine.East, engine.South)
	if q.Pending() != 2 {
		t.Errorf("Expected 2 pending, got %d", q.Pending())
	}
	if d := q.Decide(obs); d != engine.East {
		t.Errorf("Expected east first, got %s", d)
	}
	q.Clear()
	if q.Pending() != 0 {
		t.Errorf("Expected empty queue after Clear, got %d", q.Pending())
	}
}

func TestHumanPromptsUntilValid(t *testing.T) {
	in := strings.NewReader("x\n\nnorth\n e \n")
	var out bytes.Buffer
	h := NewHuman("h", in, &out)

	obs := observe(testWorld(), engine.Location{Row: 2, Col: 2}, 10)
	if d := h.Decide(obs); d != engine.East {
		t.Errorf("Expected east, got %q", d)
	}
	if n := strings.Count(out.String(), "Please enter a direction"); n != 4 {
		t.Errorf("Expected 4 prompts, got %d", n)
	}
	if d := h.Decide(obs); d != "" {
		t.Errorf("Expected no direction once input ends, got %q", d)
	}
}

func TestExplorerHeadsForKnownBoss(t *testing.T) {
	w := testWorld()
	obs := observe(w, engine.Location{Row: 4, Col: 4}, 10)

	e := NewExplorer("e", rand.New(rand.NewSource(1)))
	d := e.Decide(obs)
	if d != engine.South && d != engine.East {
		t.Errorf("Expected a step toward the boss, got %s", d)
	}
}

func TestExplorerPrefersPowerUp(t *testing.T) {
	w := testWorld()
	w.Objects[engine.Location{Row: 1, Col: 2}] = engine.PowerUp(5)
	obs := observe(w, engine.Location{Row: 2, Col: 2}, 10)

	if d := NewExplorer("e", nil).Decide(obs); d != engine.North {
		t.Errorf("Expected north toward the power-up, got %s", d)
	}
}

func TestExplorerAvoidsMonsters(t *testing.T) {
	w := testWorld()
	w.Objects[engine.Location{Row: 5, Col: 4}] = engine.StaticMonster(3)
	obs := observe(w, engine.Location{Row: 4, Col: 4}, 10)

	for i := 0; i < 10; i++ {
		e := NewExplorer("e", rand.New(rand.NewSource(int64(i))))
		if d := e.Decide(obs); obs.Location.Add(d.Offset()) == (engine.Location{Row: 5, Col: 4}) {
			t.Fatalf("Explorer walked into a known monster")
		}
	}
}

func TestExplorerRespectsResource(t *testing.T) {
	w := testWorld()
	for _, loc := range []engine.Location{{Row: 1, Col: 2}, {Row: 3, Col: 2}, {Row: 2, Col: 1}, {Row: 2, Col: 3}} {
		w.SetTile(loc, engine.Mountain)
	}
	obs := observe(w, engine.Location{Row: 2, Col: 2}, 2)

	// Every neighbour costs 3; nothing is affordable, so it falls back to a random direction.
	if d := NewExplorer("e", rand.New(rand.NewSource(3))).Decide(obs); !d.Valid() {
		t.Errorf("Expected a valid fallback direction, got %q", d)
	}
}

func TestExplorerWalksIntoFog(t *testing.T) {
	w := testWorld()
	obs := observe(w, engine.Location{Row: 0, Col: 0}, 10)
	d := NewExplorer("e", rand.New(rand.NewSource(5))).Decide(obs)
	if d != engine.South && d != engine.East {
		t.Errorf("Expected to move toward unexplored cells, got %s", d)
	}
}
