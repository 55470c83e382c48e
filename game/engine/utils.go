package engine

// ManhattanDistance calculates the Manhattan distance between two locations
func ManhattanDistance(from, to Location) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// NearestObject finds the closest known object of the given kind and returns its location and distance
func NearestObject(obs Observation, kind ObjectKind) (Location, int, bool) {
	minDistance := -1
	var nearest Location
	for loc, obj := range obs.Objects {
		if obj.Kind != kind {
			continue
		}
		d := ManhattanDistance(obs.Location, loc)
		// Ties break on row then col so map iteration order never matters.
		if minDistance == -1 || d < minDistance ||
			(d == minDistance && (loc.Row < nearest.Row || (loc.Row == nearest.Row && loc.Col < nearest.Col))) {
			minDistance = d
			nearest = loc
		}
	}
	return nearest, minDistance, minDistance != -1
}

// Reachable returns every cell reachable from start through passable terrain,
// ignoring resource. start itself is always included.
func (w *World) Reachable(start Location) map[Location]bool {
	seen := map[Location]bool{start: true}
	queue := []Location{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			next := cur.Add(d.Offset())
			if seen[next] || !w.InBounds(next) || !Passable(w.TileAt(next)) {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return seen
}

// FreeCells lists the passable cells that hold no object, in row-major order
func (w *World) FreeCells() []Location {
	var out []Location
	for r := 0; r < w.Height; r++ {
		for c := 0; c < w.Width; c++ {
			loc := Location{Row: r, Col: c}
			if _, taken := w.Objects[loc]; taken {
				continue
			}
			if Passable(w.TileAt(loc)) {
				out = append(out, loc)
			}
		}
	}
	return out
}
