// Command analyze prints quick, human-readable heuristics about map files:
// dimensions, the terrain mix, object counts, and for every stored start
// whether the boss can be reached and what the cheapest route costs.
//
//	analyze configs/maps/*.yaml
//
// Without arguments it scans configs/maps.
package main

import (
	"container/heap"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/worldfile"
)

// StartReport describes the route from one start to the boss
type StartReport struct {
	Start     engine.Location
	Reachable bool
	Cost      int // cheapest terrain cost, -1 when unreachable
	Manhattan int
}

// Analysis summarizes one map file
type Analysis struct {
	Path         string
	Height       int
	Width        int
	Tiles        map[engine.Tile]int
	PowerUps     int
	PowerUpTotal int
	Monsters     int
	MinStrength  int
	MaxStrength  int
	Goal         engine.Location
	Starts       []StartReport
	Stranded     int // objects no start can reach
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "inspect fogquest map files",
		ArgsUsage: "[map files...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				found, err := findMaps(filepath.Join("configs", "maps"))
				if err != nil {
					return err
				}
				paths = found
			}
			for _, path := range paths {
				analyzeFile(os.Stdout, path)
			}
			return nil
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal("analyze", "err", err)
	}
}

// findMaps lists the map files in dir
func findMaps(dir string) ([]string, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml", "*.json"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

func analyzeFile(out io.Writer, path string) {
	fmt.Fprintf(out, "\n=== Analyzing %s ===\n", path)
	a, err := analyzeMap(path)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	printAnalysis(out, a)
}

func analyzeMap(path string) (*Analysis, error) {
	world, starts, err := worldfile.Load(path)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Path:   path,
		Height: world.Height,
		Width:  world.Width,
		Tiles:  make(map[engine.Tile]int),
		Goal:   world.Goal,
	}
	for _, row := range world.Tiles {
		for _, t := range row {
			a.Tiles[t]++
		}
	}
	for _, obj := range world.Objects {
		switch obj.Kind {
		case engine.KindPowerUp:
			a.PowerUps++
			a.PowerUpTotal += obj.Delta
		case engine.KindMonster:
			if a.Monsters == 0 || obj.Strength < a.MinStrength {
				a.MinStrength = obj.Strength
			}
			if obj.Strength > a.MaxStrength {
				a.MaxStrength = obj.Strength
			}
			a.Monsters++
		}
	}

	reached := make(map[engine.Location]bool)
	for _, start := range starts {
		for loc := range world.Reachable(start) {
			reached[loc] = true
		}
		cost := cheapestCost(world, start, world.Goal)
		a.Starts = append(a.Starts, StartReport{
			Start:     start,
			Reachable: cost >= 0,
			Cost:      cost,
			Manhattan: engine.ManhattanDistance(start, world.Goal),
		})
	}
	if len(starts) > 0 {
		for loc := range world.Objects {
			if !reached[loc] {
				a.Stranded++
			}
		}
	}
	return a, nil
}

func printAnalysis(out io.Writer, a *Analysis) {
	cells := a.Height * a.Width
	fmt.Fprintf(out, "Size: %d x %d (%d cells)\n", a.Height, a.Width, cells)
	for _, t := range []engine.Tile{engine.Grass, engine.Sand, engine.Mountain, engine.Wall} {
		fmt.Fprintf(out, "  %-8s %4d (%.0f%%)\n", t, a.Tiles[t], 100*float64(a.Tiles[t])/float64(cells))
	}

	fmt.Fprintf(out, "Boss at %s\n", a.Goal)
	fmt.Fprintf(out, "Power-ups: %d (total +%d)\n", a.PowerUps, a.PowerUpTotal)
	if a.Monsters > 0 {
		fmt.Fprintf(out, "Monsters: %d (strength %d-%d)\n", a.Monsters, a.MinStrength, a.MaxStrength)
	} else {
		fmt.Fprintln(out, "Monsters: 0")
	}

	if len(a.Starts) == 0 {
		fmt.Fprintln(out, "No stored starts; agents will be placed at random")
		return
	}
	for i, s := range a.Starts {
		if !s.Reachable {
			fmt.Fprintf(out, "Start %d %s: boss UNREACHABLE\n", i, s.Start)
			continue
		}
		fmt.Fprintf(out, "Start %d %s: boss reachable, cheapest cost %d, distance %d\n", i, s.Start, s.Cost, s.Manhattan)
	}
	if a.Stranded > 0 {
		fmt.Fprintf(out, "⚠️  %d objects cannot be reached from any start\n", a.Stranded)
	}
}

type costItem struct {
	loc  engine.Location
	cost int
}

type costQueue []costItem

func (q costQueue) Len() int            { return len(q) }
func (q costQueue) Less(i, j int) bool  { return q[i].cost < q[j].cost }
func (q costQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *costQueue) Push(x interface{}) { *q = append(*q, x.(costItem)) }
func (q *costQueue) Pop() interface{} {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// cheapestCost returns the lowest total entry cost from start to goal, ignoring
// objects and resource, or -1 when no passable route exists.
func cheapestCost(w *engine.World, start, goal engine.Location) int {
	best := map[engine.Location]int{start: 0}
	q := &costQueue{{loc: start}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(costItem)
		if cur.loc == goal {
			return cur.cost
		}
		if cur.cost > best[cur.loc] {
			continue
		}
		for _, d := range engine.Directions {
			next := cur.loc.Add(d.Offset())
			if !w.InBounds(next) {
				continue
			}
			step, ok := engine.CostOf(w.TileAt(next))
			if !ok {
				continue
			}
			cost := cur.cost + step
			if prev, seen := best[next]; seen && prev <= cost {
				continue
			}
			best[next] = cost
			heap.Push(q, costItem{loc: next, cost: cost})
		}
	}
	return -1
}
