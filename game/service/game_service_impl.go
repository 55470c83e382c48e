package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/render"
	"github.com/wricardo/fogquest/game/results"
)

// directionQueue is satisfied by agents driven from outside the engine
type directionQueue interface {
	Push(dirs ...engine.Direction)
	Pending() int
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	store    ResultStore
	logger   *log.Logger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance.
// store may be nil, in which case finished games are not recorded.
func NewGameService(sessions SessionManager, configs ConfigManager, store ResultStore, logger *log.Logger) GameService {
	if logger == nil {
		logger = log.Default()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		store:    store,
		logger:   logger,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed int64) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configNotFound(configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configName = "default"
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", configName, config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Info("session created", "id", sess.ID, "config", configName, "seed", sess.Seed)

	return newSessionInfo(sess), nil
}

// configNotFound lists the available configs when the requested one is missing
func (s *gameServiceImpl) configNotFound(configName string, err error) error {
	if !strings.Contains(err.Error(), "configuration not found") {
		return fmt.Errorf("failed to load config %s: %w", configName, err)
	}
	available, listErr := s.configs.ListConfigs()
	if listErr == nil && len(available) > 0 {
		var ids []string
		for _, cfg := range available {
			ids = append(ids, cfg.ConfigID)
		}
		return fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, ids, err)
	}
	return fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return newSessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, newSessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Step plays one turn. direction feeds the acting agent when it is queued and must be
// empty otherwise.
func (s *gameServiceImpl) Step(ctx context.Context, sessionID, direction string) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	eng := sess.Engine
	if eng.IsOver() {
		return nil, engine.ErrGameOver
	}

	idx := eng.NextAgent()
	queue, queued := sess.Agents[idx].(directionQueue)
	switch {
	case queued && direction == "" && queue.Pending() == 0:
		return nil, fmt.Errorf("%w: agent %q", ErrDirectionRequired, sess.Agents[idx].Name())
	case queued && direction != "":
		dir, err := engine.ParseDirection(direction)
		if err != nil {
			return nil, err
		}
		queue.Push(dir)
	case !queued && direction != "":
		return nil, fmt.Errorf("%w: agent %q", ErrUnexpectedDirection, sess.Agents[idx].Name())
	}

	rec, err := eng.Step()
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, sess)

	state := eng.GetState()
	return &StepResult{
		Record:    rec,
		Status:    state.Status,
		Outcome:   state.Outcome,
		NextAgent: eng.NextAgent(),
		Message:   state.Message,
		GameOver:  eng.IsOver(),
	}, nil
}

// Run plays turns until the game ends, a queued agent has nothing to play or
// maxSteps (capped at MaxRunSteps) turns were played.
func (s *gameServiceImpl) Run(ctx context.Context, sessionID string, maxSteps int) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	eng := sess.Engine
	if eng.IsOver() {
		return nil, engine.ErrGameOver
	}
	if maxSteps <= 0 || maxSteps > MaxRunSteps {
		maxSteps = MaxRunSteps
	}

	start := len(eng.GetState().History)
	awaiting := false
	played, err := eng.RunUntil(ctx, maxSteps, func(next int) bool {
		if q, ok := sess.Agents[next].(directionQueue); ok && q.Pending() == 0 {
			awaiting = true
		}
		return awaiting
	})
	if played > 0 {
		s.afterMutation(ctx, sess)
	}
	if err != nil {
		return nil, err
	}

	state := eng.GetState()
	result := &RunResult{
		Played:    played,
		Steps:     append([]engine.StepRecord{}, state.History[start:]...),
		Status:    state.Status,
		Outcome:   state.Outcome,
		NextAgent: eng.NextAgent(),
		Message:   state.Message,
	}
	switch {
	case eng.IsOver():
		result.StoppedReason = StopGameOver
	case awaiting:
		result.StoppedReason = StopAwaitingInput
	default:
		result.StoppedReason = StopMaxSteps
	}
	return result, nil
}

// GetGameState returns a snapshot of the game state, safe to read after the call returns
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState().Clone(), nil
}

// GetAgentView returns the private knowledge of one agent
func (s *gameServiceImpl) GetAgentView(ctx context.Context, sessionID string, agentIndex int) (*AgentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	obs, err := sess.Engine.AgentView(agentIndex)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.GetState()
	knowledge, err := state.Knowledge.Get(agentIndex)
	if err != nil {
		return nil, err
	}
	return &AgentView{
		SessionID:   sess.ID,
		Name:        state.Agents[agentIndex].Name,
		Kind:        state.Agents[agentIndex].Kind,
		Observation: obs,
		Rows:        strings.Split(render.ObservationGrid(obs).Plain(), "\n"),
		Revealed:    knowledge.Revealed(),
	}, nil
}

// GetHistory returns a page of the step trace
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetState().History
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	steps := []engine.StepRecord{}
	if start < total {
		if opts.Order == "desc" {
			// most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				steps = append(steps, history[i])
			}
		} else {
			steps = append(steps, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Steps:       steps,
		TotalSteps:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a configuration by name
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// Results returns the most recent finished games
func (s *gameServiceImpl) Results(ctx context.Context, limit int) ([]*results.Result, error) {
	if s.store == nil {
		return nil, ErrResultsDisabled
	}
	return s.store.Recent(ctx, limit)
}

// Leaderboard ranks agents over every recorded game
func (s *gameServiceImpl) Leaderboard(ctx context.Context, limit int) ([]*results.Standing, error) {
	if s.store == nil {
		return nil, ErrResultsDisabled
	}
	return s.store.Leaderboard(ctx, limit)
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// afterMutation records a finished game once and persists the session
func (s *gameServiceImpl) afterMutation(ctx context.Context, sess *Session) {
	state := sess.Engine.GetState()
	if state.Status.Terminal() && !sess.Recorded && s.store != nil {
		r, err := results.FromState(sess.ID, sess.Seed, state)
		if err == nil {
			err = s.store.Record(ctx, r)
		}
		if err != nil {
			s.logger.Warn("failed to record result", "session", sess.ID, "err", err)
		} else {
			sess.Recorded = true
			s.logger.Info("game recorded", "session", sess.ID, "status", r.Status, "agent", r.AgentName, "steps", r.Steps)
		}
	}
	if err := s.sessions.Save(sess.ID); err != nil {
		s.logger.Warn("failed to persist session", "session", sess.ID, "err", err)
	}
}

func newSessionInfo(sess *Session) *SessionInfo {
	state := sess.Engine.GetState()
	agents := make([]AgentSummary, len(state.Agents))
	for i, a := range state.Agents {
		agents[i] = AgentSummary{
			Index:    i,
			Name:     a.Name,
			Kind:     a.Kind,
			Location: a.Location,
			Resource: a.Resource,
		}
		if i < len(sess.Agents) {
			if q, ok := sess.Agents[i].(directionQueue); ok {
				agents[i].Queued = true
				agents[i].Pending = q.Pending()
			}
		}
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigName,
		Seed:           sess.Seed,
		Status:         state.Status,
		Steps:          state.Steps,
		NextAgent:      state.Turn,
		Message:        state.Message,
		Outcome:        state.Outcome,
		Agents:         agents,
		Height:         state.World.Height,
		Width:          state.World.Width,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameConfig:     sess.Config,
	}
}
