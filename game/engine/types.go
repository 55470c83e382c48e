package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tile represents the terrain of a single map cell
type Tile string

const (
	Wall     Tile = "wall"
	Grass    Tile = "grass"
	Sand     Tile = "sand"
	Mountain Tile = "mountain"

	// Unknown only ever appears in an agent's private map
	Unknown Tile = "unknown"

	// Validation constants
	MinGridSize     = 2
	MaxGridSize     = 100
	MinResource     = 1
	MaxResource     = 10000
	MaxRunSteps     = 5000
	MaxHistoryLimit = 100
)

// Status is the state of the game as a whole, not of a single agent
type Status string

const (
	StatusRunning   Status = "running"
	StatusAgentDied Status = "agent_died"
	StatusAgentWon  Status = "agent_won"
)

// Terminal reports whether no further steps can be taken
func (s Status) Terminal() bool {
	return s == StatusAgentDied || s == StatusAgentWon
}

// Location is a (row, col) coordinate on the map
type Location struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Add returns the location shifted by the given deltas
func (l Location) Add(dRow, dCol int) Location {
	return Location{Row: l.Row + dRow, Col: l.Col + dCol}
}

func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.Row, l.Col)
}

// MarshalText encodes the location as "row,col" so it can key a JSON object.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(l.Row) + "," + strconv.Itoa(l.Col)), nil
}

// UnmarshalText parses the "row,col" form written by MarshalText.
func (l *Location) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ",")
	if len(parts) != 2 {
		return fmt.Errorf("invalid location %q", text)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("invalid location row %q: %w", parts[0], err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("invalid location col %q: %w", parts[1], err)
	}
	l.Row, l.Col = row, col
	return nil
}

// plainLocation drops the text methods so values encode as {row, col} objects
type plainLocation Location

// MarshalJSON keeps values as objects; MarshalText is only used for map keys.
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(plainLocation(l))
}

// UnmarshalJSON accepts both {row, col} values and quoted "row,col" map keys.
// encoding/json hands map keys to UnmarshalJSON before UnmarshalText.
func (l *Location) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		return l.UnmarshalText([]byte(text))
	}
	var p plainLocation
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Location(p)
	return nil
}

func (l Location) MarshalYAML() (interface{}, error) {
	return plainLocation(l), nil
}

func (l *Location) UnmarshalYAML(value *yaml.Node) error {
	var p plainLocation
	if err := value.Decode(&p); err != nil {
		return err
	}
	*l = Location(p)
	return nil
}

// Direction is a move an agent may choose on its turn
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Directions lists the four valid moves in a stable order
var Directions = []Direction{North, South, East, West}

// Valid reports whether d is one of the four cardinal directions
func (d Direction) Valid() bool {
	switch d {
	case North, South, East, West:
		return true
	}
	return false
}

// Offset returns the row and column delta for a single step in d
func (d Direction) Offset() (int, int) {
	switch d {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	}
	return 0, 0
}

// ParseDirection accepts full names, single letters and the up/down/left/right aliases.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n", "up":
		return North, nil
	case "south", "s", "down":
		return South, nil
	case "east", "e", "right":
		return East, nil
	case "west", "w", "left":
		return West, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// AgentState is the authoritative per-agent state owned by the engine
type AgentState struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind,omitempty"`
	Location Location `json:"location"`
	Resource int      `json:"resource"`
}

// Outcome describes how a finished game ended
type Outcome struct {
	Status     Status `json:"status"`
	AgentIndex int    `json:"agent_index"`
	AgentName  string `json:"agent_name"`
	Steps      int    `json:"steps"`
}

// MoveResult names the branch of move resolution that applied
type MoveResult string

const (
	MoveOK           MoveResult = "moved"
	MoveOutOfBounds  MoveResult = "out_of_bounds"
	MoveBlockedWall  MoveResult = "wall"
	MoveUnaffordable MoveResult = "unaffordable"
)

// Interaction names what happened with an object on the agent's final cell
type Interaction string

const (
	InteractionNone        Interaction = ""
	InteractionPowerUp     Interaction = "power_up"
	InteractionMonsterWon  Interaction = "monster_defeated"
	InteractionMonsterLost Interaction = "monster_lost"
	InteractionBoss        Interaction = "boss"
)

// StepRecord is one entry of the per-step trace
type StepRecord struct {
	Step           int         `json:"step"`
	AgentIndex     int         `json:"agent_index"`
	AgentName      string      `json:"agent_name"`
	Direction      Direction   `json:"direction"`
	From           Location    `json:"from"`
	To             Location    `json:"to"`
	ResourceBefore int         `json:"resource_before"`
	ResourceAfter  int         `json:"resource_after"`
	Move           MoveResult  `json:"move"`
	Cost           int         `json:"cost"`
	Interaction    Interaction `json:"interaction,omitempty"`
	Object         *Object     `json:"object,omitempty"`
	WinChance      float64     `json:"win_chance,omitempty"`
	Draw           float64     `json:"draw,omitempty"`
	Status         Status      `json:"status"`
}

// GameState represents the complete state of one simulation
type GameState struct {
	World           *World          `json:"world"`
	Agents          []AgentState    `json:"agents"`
	Knowledge       *KnowledgeStore `json:"knowledge"`
	InitialResource int             `json:"initial_resource"`
	Status          Status          `json:"status"`
	Outcome         *Outcome        `json:"outcome,omitempty"`
	Turn            int             `json:"turn"`
	Steps           int             `json:"steps"`
	Message         string          `json:"message"`
	ConfigName      string          `json:"config_name"`
	History         []StepRecord    `json:"history"`
}

// Clone returns a deep copy that shares nothing mutable with gs.
// The copied world carries no listeners.
func (gs *GameState) Clone() *GameState {
	out := *gs
	if gs.World != nil {
		out.World = gs.World.Clone()
	}
	if gs.Knowledge != nil {
		out.Knowledge = gs.Knowledge.Clone()
	}
	out.Agents = make([]AgentState, len(gs.Agents))
	copy(out.Agents, gs.Agents)
	out.History = make([]StepRecord, len(gs.History))
	copy(out.History, gs.History)
	if gs.Outcome != nil {
		outcome := *gs.Outcome
		out.Outcome = &outcome
	}
	return &out
}

// ActingAgent returns the index of the agent whose turn is next
func (gs *GameState) ActingAgent() int {
	return gs.Turn
}
