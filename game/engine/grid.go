package engine

import "fmt"

// tileCosts holds the movement cost of every passable terrain
var tileCosts = map[Tile]int{
	Grass:    1,
	Sand:     2,
	Mountain: 3,
}

// CostOf returns the resource cost of moving onto tile.
// ok is false for walls and unknown cells, which have no finite cost.
func CostOf(tile Tile) (cost int, ok bool) {
	cost, ok = tileCosts[tile]
	return cost, ok
}

// Passable reports whether an agent may ever stand on tile
func Passable(tile Tile) bool {
	_, ok := tileCosts[tile]
	return ok
}

// Terrains lists the tiles that may appear in the authoritative map
var Terrains = []Tile{Grass, Sand, Mountain, Wall}

// TileChar returns the single character used for tile in map files and renders
func TileChar(tile Tile) byte {
	switch tile {
	case Grass:
		return '.'
	case Sand:
		return ':'
	case Mountain:
		return '^'
	case Wall:
		return '#'
	default:
		return '?'
	}
}

// TileFromChar is the inverse of TileChar
func TileFromChar(c byte) (Tile, error) {
	switch c {
	case '.':
		return Grass, nil
	case ':':
		return Sand, nil
	case '^':
		return Mountain, nil
	case '#':
		return Wall, nil
	case '?':
		return Unknown, nil
	}
	return "", fmt.Errorf("unknown tile character %q", c)
}

// World is the authoritative game map: static terrain plus the mutable object placements.
type World struct {
	Height  int       `json:"height"`
	Width   int       `json:"width"`
	Tiles   [][]Tile  `json:"tiles"`
	Objects ObjectMap `json:"objects"`
	Goal    Location  `json:"goal"`

	listeners []ObjectRemovedListener
}

// NewWorld creates a world of the given size filled with grass
func NewWorld(height, width int) *World {
	tiles := make([][]Tile, height)
	for r := range tiles {
		tiles[r] = make([]Tile, width)
		for c := range tiles[r] {
			tiles[r][c] = Grass
		}
	}
	return &World{
		Height:  height,
		Width:   width,
		Tiles:   tiles,
		Objects: make(ObjectMap),
	}
}

// InBounds reports whether loc lies on the map
func (w *World) InBounds(loc Location) bool {
	return loc.Row >= 0 && loc.Row < w.Height && loc.Col >= 0 && loc.Col < w.Width
}

// TileAt returns the terrain at loc; callers must check InBounds first.
func (w *World) TileAt(loc Location) Tile {
	return w.Tiles[loc.Row][loc.Col]
}

// SetTile changes terrain during setup. Terrain is never changed once a game starts.
func (w *World) SetTile(loc Location, tile Tile) {
	w.Tiles[loc.Row][loc.Col] = tile
}

// Validate checks the invariants of an authoritative map
func (w *World) Validate() error {
	if w.Height < MinGridSize || w.Width < MinGridSize {
		return fmt.Errorf("%w: map must be at least %dx%d, got %dx%d", ErrInvalidWorld, MinGridSize, MinGridSize, w.Height, w.Width)
	}
	if len(w.Tiles) != w.Height {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidWorld, w.Height, len(w.Tiles))
	}
	for r, row := range w.Tiles {
		if len(row) != w.Width {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidWorld, r, len(row), w.Width)
		}
		for c, tile := range row {
			if tile != Wall && !Passable(tile) {
				return fmt.Errorf("%w: invalid tile %q at (%d,%d)", ErrInvalidWorld, tile, r, c)
			}
		}
	}

	if !w.InBounds(w.Goal) {
		return fmt.Errorf("%w: goal %s out of bounds", ErrInvalidWorld, w.Goal)
	}
	if obj, ok := w.Objects[w.Goal]; !ok || obj.Kind != KindBoss {
		return fmt.Errorf("%w: goal %s must hold the boss", ErrInvalidWorld, w.Goal)
	}

	for loc, obj := range w.Objects {
		if !w.InBounds(loc) {
			return fmt.Errorf("%w: object at %s out of bounds", ErrInvalidWorld, loc)
		}
		if w.TileAt(loc) == Wall {
			return fmt.Errorf("%w: object at %s placed on a wall", ErrInvalidWorld, loc)
		}
		if err := obj.Validate(); err != nil {
			return fmt.Errorf("%w: object at %s: %v", ErrInvalidWorld, loc, err)
		}
		if obj.Kind == KindBoss && loc != w.Goal {
			return fmt.Errorf("%w: boss at %s is not on the goal %s", ErrInvalidWorld, loc, w.Goal)
		}
	}
	return nil
}

// Subscribe registers a listener for object removals
func (w *World) Subscribe(l ObjectRemovedListener) {
	w.listeners = append(w.listeners, l)
}

// RemoveObject deletes the object at loc and notifies every listener.
// It reports whether an object was present.
func (w *World) RemoveObject(loc Location) bool {
	if _, ok := w.Objects[loc]; !ok {
		return false
	}
	delete(w.Objects, loc)
	for _, l := range w.listeners {
		l.ObjectRemoved(loc)
	}
	return true
}

// Clone returns a deep copy of the world without listeners
func (w *World) Clone() *World {
	tiles := make([][]Tile, len(w.Tiles))
	for r := range w.Tiles {
		tiles[r] = append([]Tile(nil), w.Tiles[r]...)
	}
	return &World{
		Height:  w.Height,
		Width:   w.Width,
		Tiles:   tiles,
		Objects: w.Objects.Clone(),
		Goal:    w.Goal,
	}
}

// CountTiles counts the cells holding the given terrain
func (w *World) CountTiles(tile Tile) int {
	count := 0
	for _, row := range w.Tiles {
		for _, t := range row {
			if t == tile {
				count++
			}
		}
	}
	return count
}

// Neighbors returns the in-bounds Moore neighbourhood of loc, excluding loc itself.
func (w *World) Neighbors(loc Location) []Location {
	out := make([]Location, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := loc.Add(dr, dc)
			if w.InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}
