// Package setup turns a scenario config into a playable engine: it generates or loads
// the world, places the agents and builds their decision makers.
package setup

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/wricardo/fogquest/game/agents"
	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/worldfile"
)

// maxAttempts bounds how often terrain is redrawn when too few cells are passable
const maxAttempts = 100

// Game is everything a freshly set up simulation needs
type Game struct {
	Engine *engine.GameEngine
	Agents []engine.Agent
	Starts []engine.Location
	Seed   int64

	// Generated is false when the world came from a map file
	Generated bool
}

// Options tweak Build beyond what the config says
type Options struct {
	Logger  *log.Logger
	Verbose bool

	// RemoteHumans builds human agents as queued agents fed through the API
	RemoteHumans bool
}

// Seed returns the config seed, or a random one when the config leaves it at 0
func Seed(cfg *engine.GameConfig) int64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return rand.Int63()
}

// Build validates cfg, generates or loads the world and wires the engine.
// The same config and seed always produce the same game.
func Build(cfg *engine.GameConfig, seed int64, opts Options) (*Game, error) {
	if err := engine.ValidateGameConfig(cfg); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))

	var (
		world     *engine.World
		starts    []engine.Location
		generated bool
		err       error
	)
	if cfg.MapFile != "" {
		world, starts, err = worldfile.Load(cfg.MapFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load map %q: %w", cfg.MapFile, err)
		}
		starts, err = completeStarts(world, starts, len(cfg.Agents), rng)
		if err != nil {
			return nil, err
		}
	} else {
		world, starts, err = Generate(cfg, rng)
		if err != nil {
			return nil, err
		}
		generated = true
	}

	states := make([]engine.AgentState, len(cfg.Agents))
	for i, a := range cfg.Agents {
		states[i] = engine.AgentState{Name: a.Name, Kind: a.Kind, Location: starts[i]}
	}
	state := engine.NewGameState(world, states, cfg.InitialResource)
	state.ConfigName = cfg.Name

	eng, decisionMakers, err := Wire(state, cfg, rng, opts)
	if err != nil {
		return nil, err
	}
	return &Game{
		Engine:    eng,
		Agents:    decisionMakers,
		Starts:    starts,
		Seed:      seed,
		Generated: generated,
	}, nil
}

// Wire builds the agents named in cfg and attaches them to an existing state,
// fresh or restored from persistence. rng feeds both the agents and combat.
func Wire(state *engine.GameState, cfg *engine.GameConfig, rng *rand.Rand, opts Options) (*engine.GameEngine, []engine.Agent, error) {
	if len(cfg.Agents) != len(state.Agents) {
		return nil, nil, fmt.Errorf("%w: config names %d agents, state has %d", engine.ErrInvalidConfig, len(cfg.Agents), len(state.Agents))
	}
	decisionMakers := make([]engine.Agent, len(cfg.Agents))
	for i, a := range cfg.Agents {
		kind := a.Kind
		if opts.RemoteHumans && strings.EqualFold(kind, agents.KindHuman) {
			kind = agents.KindQueued
		}
		agent, err := agents.New(kind, a.Name, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: agent %q: %v", engine.ErrInvalidConfig, a.Name, err)
		}
		decisionMakers[i] = agent
	}

	engineOpts := []engine.Option{engine.WithRand(rng), engine.WithVerbose(opts.Verbose || cfg.Verbose)}
	if opts.Logger != nil {
		engineOpts = append(engineOpts, engine.WithLogger(opts.Logger))
	}
	eng, err := engine.NewEngine(state, decisionMakers, engineOpts...)
	if err != nil {
		return nil, nil, err
	}
	return eng, decisionMakers, nil
}

// Generate draws terrain from the config's tile weights, places the boss, the
// power-ups and the monsters on distinct passable cells and picks a distinct free
// starting cell for every agent.
func Generate(cfg *engine.GameConfig, rng *rand.Rand) (*engine.World, []engine.Location, error) {
	numObjects := cfg.NumPowerUps + cfg.NumMonsters + 1
	needed := numObjects + len(cfg.Agents)
	if needed > cfg.Height*cfg.Width {
		return nil, nil, fmt.Errorf("%w: %d objects and %d agents need more than %d cells",
			engine.ErrNotEnoughSpace, numObjects, len(cfg.Agents), cfg.Height*cfg.Width)
	}

	weights := cfg.TileWeights
	if weights.Total() == 0 {
		weights = engine.DefaultTileWeights
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		world := engine.NewWorld(cfg.Height, cfg.Width)
		for r := 0; r < cfg.Height; r++ {
			for c := 0; c < cfg.Width; c++ {
				world.SetTile(engine.Location{Row: r, Col: c}, drawTile(weights, rng))
			}
		}

		open := world.FreeCells()
		if len(open) < needed {
			continue
		}
		rng.Shuffle(len(open), func(i, j int) { open[i], open[j] = open[j], open[i] })

		world.Goal = open[0]
		world.Objects[open[0]] = engine.Boss()
		for i, loc := range open[1:numObjects] {
			if i < cfg.NumPowerUps {
				world.Objects[loc] = engine.PowerUp(drawRange(cfg.PowerUpDelta, rng))
			} else {
				world.Objects[loc] = engine.StaticMonster(drawRange(cfg.MonsterStrength, rng))
			}
		}
		starts := append([]engine.Location(nil), open[numObjects:needed]...)
		return world, starts, nil
	}
	return nil, nil, fmt.Errorf("%w: fewer than %d passable cells after %d attempts", engine.ErrNotEnoughSpace, needed, maxAttempts)
}

// completeStarts keeps the starts stored in a map file and draws free cells for the rest.
// Stored starts must be distinct and hold no object.
func completeStarts(world *engine.World, starts []engine.Location, n int, rng *rand.Rand) ([]engine.Location, error) {
	if len(starts) > n {
		starts = starts[:n]
	}
	taken := make(map[engine.Location]bool, len(starts))
	for i, s := range starts {
		if taken[s] {
			return nil, fmt.Errorf("%w: start %d at %s is shared with another agent", worldfile.ErrInvalidFile, i, s)
		}
		if _, ok := world.Objects[s]; ok {
			return nil, fmt.Errorf("%w: start %d at %s holds an object", worldfile.ErrInvalidFile, i, s)
		}
		taken[s] = true
	}
	missing := n - len(starts)
	if missing == 0 {
		return append([]engine.Location(nil), starts...), nil
	}
	var free []engine.Location
	for _, loc := range world.FreeCells() {
		if !taken[loc] {
			free = append(free, loc)
		}
	}
	if len(free) < missing {
		return nil, fmt.Errorf("%w: map has room for %d more agents, %d needed", engine.ErrNotEnoughSpace, len(free), missing)
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	return append(append([]engine.Location(nil), starts...), free[:missing]...), nil
}

func drawTile(w engine.TileWeights, rng *rand.Rand) engine.Tile {
	x := rng.Float64() * w.Total()
	for _, t := range engine.Terrains {
		x -= w.Weight(t)
		if x < 0 {
			return t
		}
	}
	return engine.Grass
}

func drawRange(r engine.IntRange, rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}
