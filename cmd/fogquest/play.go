package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/fogquest/game/config"
	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/render"
	"github.com/wricardo/fogquest/game/results"
	"github.com/wricardo/fogquest/game/setup"
	"github.com/wricardo/fogquest/game/worldfile"
)

// playOptions collects the flags of the play command
type playOptions struct {
	Config     string
	ConfigDir  string
	Seed       int64
	MaxSteps   int
	SaveDir    string
	Verbose    bool
	Plain      bool
	ResultsDSN string
}

func configDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config-dir",
		Value:   "configs",
		Usage:   "directory containing game configurations",
		Sources: cli.EnvVars("CONFIG_DIR"),
	}
}

func resultsDSNFlag(value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "results-dsn",
		Value:   value,
		Usage:   "SQLite path or postgres:// URL of the results database",
		Sources: cli.EnvVars("RESULTS_DSN"),
	}
}

func playCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "play",
		Aliases: []string{"simulate", "run"},
		Usage:   "play one game to the end and print the map before and after",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config name in --config-dir or path to a config file (default config when empty)"},
			configDirFlag(),
			&cli.Int64Flag{Name: "seed", Usage: "random seed (0 uses the config seed or a random one)"},
			&cli.IntFlag{Name: "max-steps", Usage: "stop after this many steps (0 uses the config value, which may be unbounded)"},
			&cli.StringFlag{Name: "save-dir", Value: "saved_maps", Usage: "where generated maps are saved (empty disables)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log every step"},
			&cli.BoolFlag{Name: "plain", Usage: "draw maps without colors"},
			resultsDSNFlag(""),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := play(ctx, out, playOptions{
				Config:     cmd.String("config"),
				ConfigDir:  cmd.String("config-dir"),
				Seed:       cmd.Int64("seed"),
				MaxSteps:   cmd.Int("max-steps"),
				SaveDir:    cmd.String("save-dir"),
				Verbose:    cmd.Bool("verbose"),
				Plain:      cmd.Bool("plain"),
				ResultsDSN: cmd.String("results-dsn"),
			})
			return err
		},
	}
}

// loadConfig resolves name as a file path first, then as a config in dir.
// The returned config is a copy the caller may change.
func loadConfig(dir, name string) (*engine.GameConfig, error) {
	if name != "" {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			dir, name = filepath.Dir(name), filepath.Base(name)
		}
	}

	var cfg *engine.GameConfig
	manager, err := config.NewManager(dir)
	switch {
	case err == nil && name == "":
		cfg = manager.GetDefault()
	case err == nil:
		if cfg, err = manager.LoadConfig(name); err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", name, err)
		}
	case name == "":
		log.Debug("config directory unavailable, using built-in scenario", "dir", dir)
		cfg = engine.DefaultGameConfig()
	default:
		return nil, err
	}

	copied := *cfg
	copied.Agents = append([]engine.AgentConfig(nil), cfg.Agents...)
	return &copied, nil
}

// mapFileName builds the name a generated map is saved under
func mapFileName(cfg *engine.GameConfig, seed int64) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '_'
	}, cfg.Name)
	return fmt.Sprintf("%s-%d.yaml", name, seed)
}

func drawWorld(state *engine.GameState, plain bool) string {
	if plain {
		return render.WorldGrid(state.World, state.Agents).Plain()
	}
	return render.World(state.World, state.Agents)
}

// play builds the game described by opts and runs it to the end.
// The outcome is nil when the step limit stopped the game first.
func play(ctx context.Context, out io.Writer, opts playOptions) (*engine.Outcome, error) {
	cfg, err := loadConfig(opts.ConfigDir, opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.MaxSteps > 0 {
		cfg.MaxSteps = opts.MaxSteps
	}

	seed := opts.Seed
	if seed == 0 {
		seed = setup.Seed(cfg)
	}

	game, err := setup.Build(cfg, seed, setup.Options{Logger: log.Default(), Verbose: opts.Verbose})
	if err != nil {
		return nil, fmt.Errorf("failed to set up game: %w", err)
	}
	state := game.Engine.GetState()

	if game.Generated && opts.SaveDir != "" {
		path := filepath.Join(opts.SaveDir, mapFileName(cfg, seed))
		if err := os.MkdirAll(opts.SaveDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create save dir: %w", err)
		}
		if err := worldfile.Save(path, state.World, game.Starts); err != nil {
			return nil, err
		}
		log.Info("map saved", "path", path)
	}

	fmt.Fprintf(out, "%s (seed %d), %dx%d, %d agents\n", cfg.Name, seed, state.World.Height, state.World.Width, len(state.Agents))
	fmt.Fprintln(out, drawWorld(state, opts.Plain))
	fmt.Fprintln(out, render.Legend())

	outcome, runErr := game.Engine.Run(ctx, cfg.MaxSteps)

	fmt.Fprintln(out)
	fmt.Fprintln(out, drawWorld(state, opts.Plain))
	if runErr != nil {
		if errors.Is(runErr, engine.ErrInvalidDecision) {
			return nil, fmt.Errorf("game aborted after %d steps: %w", state.Steps, runErr)
		}
		return nil, runErr
	}

	switch {
	case outcome == nil:
		fmt.Fprintf(out, "Stopped after %d steps without a result\n", state.Steps)
		return nil, nil
	case outcome.Status == engine.StatusAgentWon:
		fmt.Fprintf(out, "%s reached the boss after %d steps\n", outcome.AgentName, outcome.Steps)
	default:
		fmt.Fprintf(out, "%s ran out of resource after %d steps\n", outcome.AgentName, outcome.Steps)
	}

	if opts.ResultsDSN != "" {
		if err := record(ctx, opts.ResultsDSN, seed, state); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

// record stores a finished CLI game under a fresh session id
func record(ctx context.Context, dsn string, seed int64, state *engine.GameState) error {
	store, err := results.Open(dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := results.FromState("cli-"+uuid.NewString()[:8], seed, state)
	if err != nil {
		return err
	}
	if err := store.Record(ctx, result); err != nil {
		return err
	}
	log.Debug("result recorded", "dsn", dsn, "id", result.ID)
	return nil
}
