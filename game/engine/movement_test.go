package engine

import "testing"

func TestResolveMove(t *testing.T) {
	world := createTestWorld()
	world.SetTile(Location{Row: 1, Col: 2}, Wall)
	world.SetTile(Location{Row: 2, Col: 1}, Sand)
	world.SetTile(Location{Row: 1, Col: 0}, Mountain)

	from := Location{Row: 1, Col: 1}

	tests := []struct {
		name       string
		from       Location
		resource   int
		dir        Direction
		wantTo     Location
		wantCost   int
		wantResult MoveResult
	}{
		{"grass", from, 5, North, Location{Row: 0, Col: 1}, 1, MoveOK},
		{"sand", from, 5, South, Location{Row: 2, Col: 1}, 2, MoveOK},
		{"mountain", from, 5, West, Location{Row: 1, Col: 0}, 3, MoveOK},
		{"mountain exactly affordable", from, 3, West, Location{Row: 1, Col: 0}, 3, MoveOK},
		{"mountain unaffordable", from, 2, West, from, 1, MoveUnaffordable},
		{"wall", from, 5, East, from, 1, MoveBlockedWall},
		{"wall checked before cost", from, 0, East, from, 1, MoveBlockedWall},
		{"north edge", Location{Row: 0, Col: 3}, 5, North, Location{Row: 0, Col: 3}, 1, MoveOutOfBounds},
		{"west edge", Location{Row: 3, Col: 0}, 5, West, Location{Row: 3, Col: 0}, 1, MoveOutOfBounds},
		{"south edge", Location{Row: 4, Col: 0}, 5, South, Location{Row: 4, Col: 0}, 1, MoveOutOfBounds},
		{"east edge", Location{Row: 0, Col: 4}, 5, East, Location{Row: 0, Col: 4}, 1, MoveOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			to, cost, result := world.ResolveMove(tt.from, tt.resource, tt.dir)
			if to != tt.wantTo || cost != tt.wantCost || result != tt.wantResult {
				t.Errorf("ResolveMove(%s, %d, %s) = (%s, %d, %s), want (%s, %d, %s)",
					tt.from, tt.resource, tt.dir, to, cost, result, tt.wantTo, tt.wantCost, tt.wantResult)
			}
		})
	}
}

// Every resolved move costs either the destination's terrain cost or exactly one.
func TestMoveCostProperty(t *testing.T) {
	world := NewWorld(4, 4)
	terrains := []Tile{Grass, Sand, Mountain, Wall}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			world.SetTile(Location{Row: r, Col: c}, terrains[(r*4+c)%len(terrains)])
		}
	}

	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			from := Location{Row: r, Col: c}
			for resource := 0; resource <= 4; resource++ {
				for _, dir := range Directions {
					to, cost, result := world.ResolveMove(from, resource, dir)
					if result == MoveOK {
						want, ok := CostOf(world.TileAt(to))
						if !ok || cost != want || want > resource {
							t.Errorf("move %s %s with %d: cost %d, terrain cost %d", from, dir, resource, cost, want)
						}
						continue
					}
					if to != from || cost != 1 {
						t.Errorf("failed move %s %s with %d: to=%s cost=%d", from, dir, resource, to, cost)
					}
				}
			}
		}
	}
}

func TestCanMove(t *testing.T) {
	world := createTestWorld()
	world.SetTile(Location{Row: 0, Col: 1}, Wall)

	if world.CanMove(Location{}, 5, East) {
		t.Error("Expected wall to block")
	}
	if !world.CanMove(Location{}, 5, South) {
		t.Error("Expected grass to be enterable")
	}
	if world.CanMove(Location{}, 5, North) {
		t.Error("Expected edge to block")
	}
}
