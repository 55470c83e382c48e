// Command validate checks the game configurations in a directory (../configs by
// default). For every YAML or JSON file it checks:
//   - the config parses and passes engine validation
//   - every agent kind is known
//   - a referenced map file loads, and the boss and objects can be reached from its starts
//   - a generated map can actually be drawn for a few sample seeds
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/fogquest/game/agents"
	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/setup"
	"github.com/wricardo/fogquest/game/worldfile"
)

// sampleSeeds are the seeds generated maps are drawn with
var sampleSeeds = []int64{1, 2, 3}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.ParseGameConfig(filePath, data)
	if err != nil {
		result.fail("Failed to parse config: %v", err)
		return result
	}
	if config.MapFile != "" && !filepath.IsAbs(config.MapFile) {
		config.MapFile = filepath.Join(filepath.Dir(filePath), config.MapFile)
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail("%v", err)
		return result
	}
	result.info("Config %q is valid", config.Name)

	for _, a := range config.Agents {
		if !slices.Contains(agents.Kinds(), strings.ToLower(a.Kind)) {
			result.fail("Agent %q has unknown kind %q (known: %s)", a.Name, a.Kind, strings.Join(agents.Kinds(), ", "))
		}
	}

	if config.MapFile != "" {
		validateMapFile(&result, config)
	} else {
		validateGenerated(&result, config)
	}
	return result
}

// validateMapFile checks that the referenced map loads and can be played
func validateMapFile(result *ValidationResult, config *engine.GameConfig) {
	world, starts, err := worldfile.Load(config.MapFile)
	if err != nil {
		result.fail("Map file %s: %v", config.MapFile, err)
		return
	}
	result.info("Map %dx%d with %d objects", world.Height, world.Width, len(world.Objects))

	if len(starts) < len(config.Agents) {
		result.info("%d of %d agents get random starts", len(config.Agents)-len(starts), len(config.Agents))
	}
	if len(starts) > len(config.Agents) {
		result.info("%d stored starts are unused", len(starts)-len(config.Agents))
	}

	reached := make(map[engine.Location]bool)
	for i, start := range starts {
		if _, taken := world.Objects[start]; taken {
			result.fail("Start %d at %s holds an object", i, start)
			continue
		}
		r := world.Reachable(start)
		if !r[world.Goal] {
			result.fail("Boss at %s is unreachable from start %d at %s", world.Goal, i, start)
		}
		for loc := range r {
			reached[loc] = true
		}
	}

	if len(starts) == 0 {
		return
	}
	var stranded []string
	for loc, obj := range world.Objects {
		if !reached[loc] {
			stranded = append(stranded, fmt.Sprintf("%s at %s", obj, loc))
		}
	}
	if len(stranded) > 0 {
		sort.Strings(stranded)
		result.fail("Unreachable objects: %s", strings.Join(stranded, ", "))
		return
	}
	result.info("All objects reachable from the stored starts")
}

// validateGenerated draws a map for every sample seed
func validateGenerated(result *ValidationResult, config *engine.GameConfig) {
	reachable := 0
	for _, seed := range sampleSeeds {
		world, starts, err := setup.Generate(config, rand.New(rand.NewSource(seed)))
		if err != nil {
			if errors.Is(err, engine.ErrNotEnoughSpace) {
				result.fail("Seed %d: not enough passable cells: %v", seed, err)
			} else {
				result.fail("Seed %d: %v", seed, err)
			}
			continue
		}
		for _, start := range starts {
			if world.Reachable(start)[world.Goal] {
				reachable++
			}
		}
	}
	if result.Valid {
		total := len(sampleSeeds) * len(config.Agents)
		result.info("Generates maps for seeds %v; boss reachable from %d of %d sampled starts", sampleSeeds, reachable, total)
	}
}

func findConfigs(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml", "*.json"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// validateDir prints a concise report and returns whether every config was valid
func validateDir(dir string) (bool, error) {
	files, err := findConfigs(dir)
	if err != nil {
		return false, fmt.Errorf("error finding config files: %w", err)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "validate fogquest game configurations",
		ArgsUsage: "[config dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "../configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			ok, err := validateDir(dir)
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
