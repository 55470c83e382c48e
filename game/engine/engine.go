package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
)

// GameEngine runs the turn loop over one authoritative GameState
type GameEngine struct {
	state   *GameState
	agents  []Agent
	rng     Rand
	logger  *log.Logger
	verbose bool

	// fault is set once an agent breaks the decision contract; the run cannot continue.
	fault error
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithRand sets the source of combat draws
func WithRand(r Rand) Option {
	return func(e *GameEngine) { e.rng = r }
}

// WithLogger sets the logger used for the per-step trace
func WithLogger(l *log.Logger) Option {
	return func(e *GameEngine) { e.logger = l }
}

// WithVerbose logs every step at info level instead of debug
func WithVerbose(v bool) Option {
	return func(e *GameEngine) { e.verbose = v }
}

// NewGameState creates the initial state for a world and its agents.
// Every agent starts with initialResource and an all-unknown private map.
func NewGameState(world *World, agents []AgentState, initialResource int) *GameState {
	states := make([]AgentState, len(agents))
	for i, a := range agents {
		states[i] = a
		states[i].Resource = initialResource
	}
	return &GameState{
		World:           world,
		Agents:          states,
		Knowledge:       NewKnowledgeStore(len(agents), world.Height, world.Width),
		InitialResource: initialResource,
		Status:          StatusRunning,
		History:         []StepRecord{},
	}
}

// NewEngine wires agents to a state. The state may be fresh or restored from persistence.
func NewEngine(state *GameState, agents []Agent, opts ...Option) (*GameEngine, error) {
	if state == nil || state.World == nil {
		return nil, fmt.Errorf("%w: state cannot be nil", ErrInvalidConfig)
	}
	if err := state.World.Validate(); err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, ErrNoAgents
	}
	if len(agents) != len(state.Agents) {
		return nil, fmt.Errorf("%w: %d agents supplied for %d agent slots", ErrInvalidConfig, len(agents), len(state.Agents))
	}
	for i, a := range agents {
		if a == nil {
			return nil, fmt.Errorf("%w: agent %d is nil", ErrInvalidConfig, i)
		}
		if !state.World.InBounds(state.Agents[i].Location) {
			return nil, fmt.Errorf("%w: agent %d starts out of bounds at %s", ErrInvalidConfig, i, state.Agents[i].Location)
		}
	}

	if state.Knowledge == nil {
		state.Knowledge = NewKnowledgeStore(len(agents), state.World.Height, state.World.Width)
	}
	if len(state.Knowledge.Agents) != len(agents) {
		return nil, fmt.Errorf("%w: knowledge for %d agents, expected %d", ErrInvalidConfig, len(state.Knowledge.Agents), len(agents))
	}
	if state.Status == "" {
		state.Status = StatusRunning
	}
	if state.History == nil {
		state.History = []StepRecord{}
	}

	e := &GameEngine{
		state:  state,
		agents: agents,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	state.World.Subscribe(state.Knowledge)
	return e, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// IsOver reports whether the game reached a terminal state
func (e *GameEngine) IsOver() bool {
	return e.state.Status.Terminal()
}

// Outcome returns the final result, or nil while the game is running
func (e *GameEngine) Outcome() *Outcome {
	return e.state.Outcome
}

// Agent returns the decision maker registered at idx
func (e *GameEngine) Agent(idx int) (Agent, error) {
	if idx < 0 || idx >= len(e.agents) {
		return nil, ErrUnknownAgent
	}
	return e.agents[idx], nil
}

// NextAgent returns the index of the agent that acts on the next step
func (e *GameEngine) NextAgent() int {
	return e.state.Turn
}

// AgentView returns what agent idx currently knows, without refreshing it.
func (e *GameEngine) AgentView(idx int) (Observation, error) {
	if idx < 0 || idx >= len(e.state.Agents) {
		return Observation{}, ErrUnknownAgent
	}
	a := e.state.Agents[idx]
	return e.state.Knowledge.Observation(idx, a.Location, a.Resource), nil
}

// Step plays exactly one turn for the acting agent.
func (e *GameEngine) Step() (*StepRecord, error) {
	if e.fault != nil {
		return nil, e.fault
	}
	st := e.state
	if st.Status.Terminal() {
		return nil, ErrGameOver
	}

	idx := st.Turn
	agent := e.agents[idx]
	self := &st.Agents[idx]

	st.Knowledge.Refresh(idx, st.World, self.Location)

	dir := agent.Decide(st.Knowledge.Observation(idx, self.Location, self.Resource))
	if !dir.Valid() {
		e.fault = fmt.Errorf("%w: agent %q returned %q", ErrInvalidDecision, agent.Name(), dir)
		return nil, e.fault
	}

	rec := StepRecord{
		Step:           st.Steps + 1,
		AgentIndex:     idx,
		AgentName:      self.Name,
		Direction:      dir,
		From:           self.Location,
		ResourceBefore: self.Resource,
	}

	to, cost, result := st.World.ResolveMove(self.Location, self.Resource, dir)
	self.Location = to
	self.Resource -= cost
	rec.To, rec.Cost, rec.Move = to, cost, result

	e.interact(idx, &rec)
	rec.ResourceAfter = self.Resource
	st.Steps++

	switch {
	case self.Resource <= 0:
		st.Status = StatusAgentDied
		st.Outcome = &Outcome{Status: StatusAgentDied, AgentIndex: idx, AgentName: self.Name, Steps: st.Steps}
	case self.Location == st.World.Goal:
		st.Status = StatusAgentWon
		st.Outcome = &Outcome{Status: StatusAgentWon, AgentIndex: idx, AgentName: self.Name, Steps: st.Steps}
	default:
		st.Turn = (idx + 1) % len(st.Agents)
	}
	rec.Status = st.Status

	st.Message = describeStep(rec)
	st.History = append(st.History, rec)
	e.trace(rec)

	return &rec, nil
}

// interact resolves the object, if any, on the acting agent's final cell
func (e *GameEngine) interact(idx int, rec *StepRecord) {
	st := e.state
	self := &st.Agents[idx]

	obj, ok := st.World.Objects[self.Location]
	if !ok {
		return
	}
	snapshot := obj
	rec.Object = &snapshot

	switch obj.Kind {
	case KindPowerUp:
		self.Resource += obj.Delta
		st.World.RemoveObject(self.Location)
		rec.Interaction = InteractionPowerUp

	case KindMonster:
		draw := e.rng.Float64()
		rec.WinChance = WinChance(self.Resource, obj.Strength)
		rec.Draw = draw
		if AgentWinsFight(self.Resource, obj.Strength, draw) {
			self.Resource = st.InitialResource + obj.Strength
			st.World.RemoveObject(self.Location)
			rec.Interaction = InteractionMonsterWon
		} else {
			self.Resource = 0
			rec.Interaction = InteractionMonsterLost
		}

	case KindBoss:
		rec.Interaction = InteractionBoss
	}
}

// Run steps until the game ends, maxSteps is reached (0 means no limit) or ctx is done.
// The returned outcome is nil when the game is still running.
func (e *GameEngine) Run(ctx context.Context, maxSteps int) (*Outcome, error) {
	if _, err := e.RunUntil(ctx, maxSteps, nil); err != nil {
		return nil, err
	}
	return e.state.Outcome, nil
}

// RunUntil is Run with an extra pause condition checked before every step with the
// index of the agent about to act. It returns the number of steps played.
func (e *GameEngine) RunUntil(ctx context.Context, maxSteps int, pause func(next int) bool) (int, error) {
	played := 0
	for maxSteps <= 0 || played < maxSteps {
		if e.IsOver() {
			break
		}
		if err := ctx.Err(); err != nil {
			return played, err
		}
		if pause != nil && pause(e.state.Turn) {
			break
		}
		if _, err := e.Step(); err != nil {
			return played, err
		}
		played++
	}
	return played, nil
}

func (e *GameEngine) trace(rec StepRecord) {
	if e.logger == nil {
		return
	}
	level := log.DebugLevel
	if e.verbose {
		level = log.InfoLevel
	}
	e.logger.Log(level, "step",
		"n", rec.Step,
		"agent", rec.AgentName,
		"dir", rec.Direction,
		"from", rec.From,
		"to", rec.To,
		"resource", rec.ResourceAfter,
		"move", rec.Move,
	)
	if rec.Interaction != InteractionNone {
		e.logger.Log(level, "interaction", "agent", rec.AgentName, "at", rec.To, "kind", rec.Interaction, "object", rec.Object)
	}
	if rec.Status.Terminal() {
		e.logger.Log(level, "game over", "status", rec.Status, "agent", rec.AgentName, "steps", rec.Step)
	}
}

func describeStep(rec StepRecord) string {
	var msg string
	switch rec.Move {
	case MoveOK:
		msg = fmt.Sprintf("%s moved %s to %s (cost %d)", rec.AgentName, rec.Direction, rec.To, rec.Cost)
	case MoveOutOfBounds:
		msg = fmt.Sprintf("%s tried to leave the map going %s", rec.AgentName, rec.Direction)
	case MoveBlockedWall:
		msg = fmt.Sprintf("%s bumped into a wall going %s", rec.AgentName, rec.Direction)
	case MoveUnaffordable:
		msg = fmt.Sprintf("%s could not afford to move %s", rec.AgentName, rec.Direction)
	}

	switch rec.Interaction {
	case InteractionPowerUp:
		msg += fmt.Sprintf("; picked up a power-up (+%d)", rec.Object.Delta)
	case InteractionMonsterWon:
		msg += fmt.Sprintf("; defeated a monster of strength %d", rec.Object.Strength)
	case InteractionMonsterLost:
		msg += fmt.Sprintf("; lost a fight against a monster of strength %d", rec.Object.Strength)
	}

	switch rec.Status {
	case StatusAgentDied:
		msg += fmt.Sprintf(". %s died!", rec.AgentName)
	case StatusAgentWon:
		msg += fmt.Sprintf(". %s reached the boss and won the game!", rec.AgentName)
	}
	return msg
}
