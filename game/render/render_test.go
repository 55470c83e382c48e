package render

import (
	"strings"
	"testing"

	"github.com/wricardo/fogquest/game/engine"
)

func testWorld() *engine.World {
	w := engine.NewWorld(3, 4)
	w.SetTile(engine.Location{Row: 0, Col: 3}, engine.Wall)
	w.SetTile(engine.Location{Row: 1, Col: 1}, engine.Sand)
	w.SetTile(engine.Location{Row: 2, Col: 0}, engine.Mountain)
	w.Goal = engine.Location{Row: 2, Col: 3}
	w.Objects[w.Goal] = engine.Boss()
	w.Objects[engine.Location{Row: 1, Col: 2}] = engine.PowerUp(3)
	w.Objects[engine.Location{Row: 2, Col: 1}] = engine.StaticMonster(4)
	return w
}

func TestWorldGridPlain(t *testing.T) {
	agents := []engine.AgentState{
		{Name: "alice", Location: engine.Location{Row: 0, Col: 0}},
		{Name: "bob", Location: engine.Location{Row: 1, Col: 3}},
	}
	got := WorldGrid(testWorld(), agents).Plain()
	want := "0..#\n" +
		".:+1\n" +
		"^M.B"
	if got != want {
		t.Errorf("Unexpected grid:\n%s\nwant:\n%s", got, want)
	}
}

func TestObservationGridPlain(t *testing.T) {
	w := testWorld()
	ks := engine.NewKnowledgeStore(1, w.Height, w.Width)
	ks.Refresh(0, w, engine.Location{Row: 0, Col: 0})

	got := ObservationGrid(ks.Observation(0, engine.Location{Row: 0, Col: 0}, 5)).Plain()
	want := "@.??\n" +
		".:??\n" +
		"????"
	if got != want {
		t.Errorf("Unexpected view:\n%s\nwant:\n%s", got, want)
	}
}

func TestWorldIncludesAgents(t *testing.T) {
	agents := []engine.AgentState{{Name: "alice", Location: engine.Location{}, Resource: 7}}
	out := World(testWorld(), agents)
	if !strings.Contains(out, "alice") || !strings.Contains(out, "resource=7") {
		t.Errorf("Expected agent status line, got:\n%s", out)
	}
}

func TestAgentGlyph(t *testing.T) {
	if AgentGlyph(0) != '0' || AgentGlyph(9) != '9' || AgentGlyph(10) != 'a' {
		t.Error("Unexpected agent glyphs")
	}
}

func TestLegendMentionsEveryGlyph(t *testing.T) {
	legend := Legend()
	for _, s := range []string{"grass", "sand", "mountain", "wall", "power-up", "monster", "boss"} {
		if !strings.Contains(legend, s) {
			t.Errorf("Legend misses %q", s)
		}
	}
}
