package engine

import (
	"errors"
	"testing"
)

func TestCostOf(t *testing.T) {
	tests := []struct {
		tile   Tile
		cost   int
		passes bool
	}{
		{Grass, 1, true},
		{Sand, 2, true},
		{Mountain, 3, true},
		{Wall, 0, false},
		{Unknown, 0, false},
	}
	for _, tt := range tests {
		cost, ok := CostOf(tt.tile)
		if cost != tt.cost || ok != tt.passes {
			t.Errorf("CostOf(%s) = %d, %v; want %d, %v", tt.tile, cost, ok, tt.cost, tt.passes)
		}
		if Passable(tt.tile) != tt.passes {
			t.Errorf("Passable(%s) = %v", tt.tile, !tt.passes)
		}
	}
}

func TestTileChars(t *testing.T) {
	for _, tile := range append(Terrains, Unknown) {
		back, err := TileFromChar(TileChar(tile))
		if err != nil || back != tile {
			t.Errorf("round trip of %s gave %s, %v", tile, back, err)
		}
	}
	if _, err := TileFromChar('x'); err == nil {
		t.Error("Expected error for unknown character")
	}
}

func TestWorldValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(w *World)
		ok     bool
	}{
		{"valid", func(w *World) {}, true},
		{"too small", func(w *World) { w.Height = 1; w.Tiles = w.Tiles[:1] }, false},
		{"ragged row", func(w *World) { w.Tiles[2] = w.Tiles[2][:3] }, false},
		{"unknown tile", func(w *World) { w.Tiles[0][0] = Unknown }, false},
		{"goal out of bounds", func(w *World) { w.Goal = Location{Row: 7, Col: 0} }, false},
		{"goal without boss", func(w *World) { delete(w.Objects, w.Goal) }, false},
		{"object on wall", func(w *World) {
			w.SetTile(Location{Row: 1, Col: 1}, Wall)
			w.Objects[Location{Row: 1, Col: 1}] = PowerUp(1)
		}, false},
		{"second boss", func(w *World) { w.Objects[Location{Row: 0, Col: 0}] = Boss() }, false},
		{"object out of bounds", func(w *World) { w.Objects[Location{Row: -1, Col: 0}] = PowerUp(1) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := createTestWorld()
			tt.modify(w)
			err := w.Validate()
			if tt.ok && err != nil {
				t.Errorf("Expected valid world, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidWorld) {
				t.Errorf("Expected ErrInvalidWorld, got %v", err)
			}
		})
	}
}

func TestNeighbors(t *testing.T) {
	w := NewWorld(3, 3)
	if got := len(w.Neighbors(Location{Row: 1, Col: 1})); got != 8 {
		t.Errorf("Expected 8 neighbours in the centre, got %d", got)
	}
	if got := len(w.Neighbors(Location{Row: 0, Col: 0})); got != 3 {
		t.Errorf("Expected 3 neighbours in a corner, got %d", got)
	}
	if got := len(w.Neighbors(Location{Row: 0, Col: 1})); got != 5 {
		t.Errorf("Expected 5 neighbours on an edge, got %d", got)
	}
}

func TestWorldCloneIsIndependent(t *testing.T) {
	w := createTestWorld()
	c := w.Clone()
	c.SetTile(Location{}, Wall)
	delete(c.Objects, c.Goal)
	if w.TileAt(Location{}) != Grass || len(w.Objects) != 1 {
		t.Error("Expected clone to be independent")
	}
}

func TestReachableAndFreeCells(t *testing.T) {
	w := createTestWorld()
	// wall off the bottom-right corner
	w.SetTile(Location{Row: 3, Col: 4}, Wall)
	w.SetTile(Location{Row: 4, Col: 3}, Wall)

	if w.Reachable(Location{})[w.Goal] {
		t.Error("Expected the walled-in goal to be unreachable")
	}
	w.SetTile(Location{Row: 3, Col: 4}, Grass)
	if !w.Reachable(Location{})[w.Goal] {
		t.Error("Expected the goal to be reachable once opened")
	}

	free := w.FreeCells()
	if len(free) != 25-1-1 {
		t.Errorf("Expected 23 free cells, got %d", len(free))
	}
}

func TestManhattanAndNearestObject(t *testing.T) {
	if d := ManhattanDistance(Location{Row: 1, Col: 1}, Location{Row: 4, Col: 3}); d != 5 {
		t.Errorf("Expected 5, got %d", d)
	}
	obs := Observation{
		Location: Location{Row: 2, Col: 2},
		Objects: ObjectMap{
			{Row: 0, Col: 2}: PowerUp(1),
			{Row: 2, Col: 0}: PowerUp(1),
			{Row: 3, Col: 3}: StaticMonster(2),
		},
	}
	loc, d, ok := NearestObject(obs, KindPowerUp)
	if !ok || d != 2 || loc != (Location{Row: 0, Col: 2}) {
		t.Errorf("Expected (0,2) at 2, got %s at %d (%v)", loc, d, ok)
	}
	if _, _, ok := NearestObject(obs, KindBoss); ok {
		t.Error("Expected no boss to be known")
	}
}
