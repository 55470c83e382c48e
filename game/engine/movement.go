package engine

// stayPenalty is charged for any move attempt that leaves the agent in place
const stayPenalty = 1

// ResolveMove applies the move rules to an agent at from with the given resource.
// Rules are checked in order: out of bounds, wall, unaffordable, then a successful move.
func (w *World) ResolveMove(from Location, resource int, dir Direction) (to Location, cost int, result MoveResult) {
	dst := from.Add(dir.Offset())

	if !w.InBounds(dst) {
		return from, stayPenalty, MoveOutOfBounds
	}

	tile := w.TileAt(dst)
	if tile == Wall {
		return from, stayPenalty, MoveBlockedWall
	}

	tileCost, ok := CostOf(tile)
	if !ok || tileCost > resource {
		return from, stayPenalty, MoveUnaffordable
	}

	return dst, tileCost, MoveOK
}

// CanMove reports whether dir would actually move an agent standing at from
func (w *World) CanMove(from Location, resource int, dir Direction) bool {
	_, _, result := w.ResolveMove(from, resource, dir)
	return result == MoveOK
}
