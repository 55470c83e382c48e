package agents

import (
	"math/rand"

	"github.com/wricardo/fogquest/game/engine"
)

// Explorer plans over its private knowledge only. In order of preference it walks to
// the boss, to the nearest known power-up, or to the nearest unexplored cell, paying
// attention to never start a path it cannot afford. Monsters are avoided while any
// other plan exists.
type Explorer struct {
	name    string
	rng     *rand.Rand
	visited map[engine.Location]int
}

// NewExplorer creates an exploring agent; rng breaks ties when it is stuck.
func NewExplorer(name string, rng *rand.Rand) *Explorer {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Explorer{name: name, rng: rng, visited: make(map[engine.Location]int)}
}

func (a *Explorer) Name() string { return a.name }

func (a *Explorer) Decide(obs engine.Observation) engine.Direction {
	a.visited[obs.Location]++

	if goal, _, ok := engine.NearestObject(obs, engine.KindBoss); ok {
		if path := a.path(obs, func(loc engine.Location) bool { return loc == goal }); path != nil {
			return path[0]
		}
	}
	if path := a.path(obs, func(loc engine.Location) bool {
		obj, ok := obs.Objects[loc]
		return ok && obj.Kind == engine.KindPowerUp
	}); path != nil {
		return path[0]
	}
	if path := a.path(obs, func(loc engine.Location) bool {
		return obs.TileAt(loc) == engine.Unknown
	}); path != nil {
		return path[0]
	}
	return a.exploreMove(obs)
}

// path runs a breadth-first search from the agent's location through cells it knows
// are passable and monster-free. Unknown cells may only end a path. The first path
// whose known cost leaves at least one resource is returned.
func (a *Explorer) path(obs engine.Observation, isTarget func(engine.Location) bool) []engine.Direction {
	type queueItem struct {
		loc  engine.Location
		path []engine.Direction
		cost int
	}

	queue := []queueItem{{loc: obs.Location}}
	visited := map[engine.Location]bool{obs.Location: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range engine.Directions {
			next := current.loc.Add(dir.Offset())
			if visited[next] {
				continue
			}
			tile := obs.TileAt(next)
			if tile == engine.Wall {
				continue
			}
			if obj, ok := obs.Objects[next]; ok && obj.Kind == engine.KindMonster {
				continue
			}

			// Entering unknown terrain may cost up to the dearest tile.
			stepCost, known := engine.CostOf(tile)
			if !known {
				stepCost, _ = engine.CostOf(engine.Mountain)
			}
			cost := current.cost + stepCost

			newPath := append([]engine.Direction{}, current.path...)
			newPath = append(newPath, dir)

			if isTarget(next) {
				if cost < obs.Resource {
					return newPath
				}
				continue
			}

			visited[next] = true
			if known {
				queue = append(queue, queueItem{loc: next, path: newPath, cost: cost})
			}
		}
	}
	return nil
}

// exploreMove picks the least visited affordable neighbour, breaking ties at random.
func (a *Explorer) exploreMove(obs engine.Observation) engine.Direction {
	var best []engine.Direction
	bestScore := -1
	for _, dir := range engine.Directions {
		next := obs.Location.Add(dir.Offset())
		cost, ok := engine.CostOf(obs.TileAt(next))
		if !ok || cost > obs.Resource {
			continue
		}
		score := a.visited[next]
		switch {
		case bestScore == -1 || score < bestScore:
			best = []engine.Direction{dir}
			bestScore = score
		case score == bestScore:
			best = append(best, dir)
		}
	}
	if len(best) == 0 {
		return engine.Directions[a.rng.Intn(len(engine.Directions))]
	}
	return best[a.rng.Intn(len(best))]
}
