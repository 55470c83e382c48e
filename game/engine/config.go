package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// IntRange is an inclusive [Min, Max] range
type IntRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// TileWeights are the relative frequencies used when generating terrain
type TileWeights struct {
	Grass    float64 `json:"grass" yaml:"grass"`
	Sand     float64 `json:"sand" yaml:"sand"`
	Mountain float64 `json:"mountain" yaml:"mountain"`
	Wall     float64 `json:"wall" yaml:"wall"`
}

// Weight returns the weight of tile, 0 for anything that is not a terrain
func (tw TileWeights) Weight(tile Tile) float64 {
	switch tile {
	case Grass:
		return tw.Grass
	case Sand:
		return tw.Sand
	case Mountain:
		return tw.Mountain
	case Wall:
		return tw.Wall
	}
	return 0
}

// Total is the sum of all weights
func (tw TileWeights) Total() float64 {
	return tw.Grass + tw.Sand + tw.Mountain + tw.Wall
}

// AgentConfig names one participant and the decision strategy it uses
type AgentConfig struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
}

// GameConfig is a named scenario: map dimensions, population and participants.
type GameConfig struct {
	Name            string        `json:"name" yaml:"name"`
	Description     string        `json:"description" yaml:"description"`
	Height          int           `json:"height" yaml:"height"`
	Width           int           `json:"width" yaml:"width"`
	NumPowerUps     int           `json:"num_power_ups" yaml:"num_power_ups"`
	NumMonsters     int           `json:"num_monsters" yaml:"num_monsters"`
	InitialResource int           `json:"initial_resource" yaml:"initial_resource"`
	Seed            int64         `json:"seed,omitempty" yaml:"seed,omitempty"`
	MaxSteps        int           `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	TileWeights     TileWeights   `json:"tile_weights" yaml:"tile_weights"`
	PowerUpDelta    IntRange      `json:"power_up_delta" yaml:"power_up_delta"`
	MonsterStrength IntRange      `json:"monster_strength" yaml:"monster_strength"`
	Agents          []AgentConfig `json:"agents" yaml:"agents"`
	MapFile         string        `json:"map_file,omitempty" yaml:"map_file,omitempty"`
	Verbose         bool          `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// DefaultTileWeights is the terrain mix used when a config leaves the weights empty
var DefaultTileWeights = TileWeights{Grass: 0.4, Sand: 0.3, Mountain: 0.2, Wall: 0.1}

// DefaultGameConfig returns the built-in scenario
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:            "default",
		Description:     "Two explorers race through a 12x12 fog-covered map to reach the boss",
		Height:          12,
		Width:           12,
		NumPowerUps:     6,
		NumMonsters:     4,
		InitialResource: 20,
		TileWeights:     DefaultTileWeights,
		PowerUpDelta:    IntRange{Min: 2, Max: 8},
		MonsterStrength: IntRange{Min: 1, Max: 10},
		Agents: []AgentConfig{
			{Name: "alice", Kind: "explorer"},
			{Name: "bob", Kind: "random"},
		},
	}
}

// ApplyDefaults fills the optional fields a config file may leave out
func (c *GameConfig) ApplyDefaults() {
	if c.TileWeights.Total() == 0 {
		c.TileWeights = DefaultTileWeights
	}
	if c.PowerUpDelta == (IntRange{}) {
		c.PowerUpDelta = IntRange{Min: 2, Max: 8}
	}
	if c.MonsterStrength == (IntRange{}) {
		c.MonsterStrength = IntRange{Min: 1, Max: 10}
	}
	for i := range c.Agents {
		if c.Agents[i].Kind == "" {
			c.Agents[i].Kind = "random"
		}
	}
}

// ValidateGameConfig validates a scenario before any turn is played
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	if len(config.Agents) == 0 {
		return ErrNoAgents
	}
	seen := make(map[string]bool, len(config.Agents))
	for i, a := range config.Agents {
		if a.Name == "" {
			return fmt.Errorf("%w: agent %d has no name", ErrInvalidConfig, i)
		}
		if seen[a.Name] {
			return fmt.Errorf("%w: duplicate agent name %q", ErrInvalidConfig, a.Name)
		}
		seen[a.Name] = true
	}

	if config.InitialResource < MinResource || config.InitialResource > MaxResource {
		return fmt.Errorf("%w: initial_resource must be between %d and %d, got %d",
			ErrInvalidConfig, MinResource, MaxResource, config.InitialResource)
	}
	if config.MaxSteps < 0 {
		return fmt.Errorf("%w: max_steps cannot be negative", ErrInvalidConfig)
	}

	// A map file carries its own dimensions and population.
	if config.MapFile != "" {
		return nil
	}

	if config.Height < MinGridSize || config.Height > MaxGridSize ||
		config.Width < MinGridSize || config.Width > MaxGridSize {
		return fmt.Errorf("%w: map must be between %dx%d and %dx%d, got %dx%d",
			ErrInvalidConfig, MinGridSize, MinGridSize, MaxGridSize, MaxGridSize, config.Height, config.Width)
	}
	if config.NumPowerUps < 0 || config.NumMonsters < 0 {
		return fmt.Errorf("%w: object counts cannot be negative", ErrInvalidConfig)
	}
	cells := config.Height * config.Width
	if config.NumPowerUps+config.NumMonsters+1 > cells {
		return fmt.Errorf("%w: %d power-ups, %d monsters and the boss do not fit in %d cells",
			ErrTooManyObjects, config.NumPowerUps, config.NumMonsters, cells)
	}

	tw := config.TileWeights
	if tw.Grass < 0 || tw.Sand < 0 || tw.Mountain < 0 || tw.Wall < 0 {
		return fmt.Errorf("%w: tile weights cannot be negative", ErrInvalidConfig)
	}
	if tw.Total() > 0 && tw.Grass+tw.Sand+tw.Mountain == 0 {
		return fmt.Errorf("%w: tile weights must allow passable terrain", ErrInvalidConfig)
	}

	if err := validateRange("power_up_delta", config.PowerUpDelta, 1); err != nil {
		return err
	}
	if err := validateRange("monster_strength", config.MonsterStrength, 0); err != nil {
		return err
	}
	return nil
}

func validateRange(field string, r IntRange, min int) error {
	if r == (IntRange{}) {
		return nil
	}
	if r.Min < min || r.Max < r.Min {
		return fmt.Errorf("%w: %s must satisfy %d <= min <= max, got [%d, %d]", ErrInvalidConfig, field, min, r.Min, r.Max)
	}
	return nil
}

// ParseGameConfig decodes a scenario. YAML is a superset of JSON, so the yaml
// decoder is used unless the name ends in .json.
func ParseGameConfig(name string, data []byte) (*GameConfig, error) {
	var config GameConfig
	var err error
	if strings.EqualFold(filepath.Ext(name), ".json") {
		err = json.Unmarshal(data, &config)
	} else {
		err = yaml.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", name, err)
	}
	config.ApplyDefaults()
	return &config, nil
}

// LoadGameConfig loads and validates a scenario file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(filename, data)
	if err != nil {
		return nil, err
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", filename, err)
	}
	return config, nil
}
