package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/results"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrDirectionRequired   = errors.New("the acting agent is queued and needs a direction")
	ErrUnexpectedDirection = errors.New("the acting agent decides on its own and takes no direction")
	ErrResultsDisabled     = errors.New("results store is not configured")
)

// MaxRunSteps caps a single Run call
const MaxRunSteps = 1000

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, seed int64) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Step(ctx context.Context, sessionID, direction string) (*StepResult, error)
	Run(ctx context.Context, sessionID string, maxSteps int) (*RunResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetAgentView(ctx context.Context, sessionID string, agentIndex int) (*AgentView, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error

	// Results
	Results(ctx context.Context, limit int) ([]*results.Result, error)
	Leaderboard(ctx context.Context, limit int) ([]*results.Standing, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configName string, config *engine.GameConfig, seed int64) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// ResultStore keeps the outcome of finished sessions
type ResultStore interface {
	Record(ctx context.Context, r *results.Result) error
	Recent(ctx context.Context, limit int) ([]*results.Result, error)
	Leaderboard(ctx context.Context, limit int) ([]*results.Standing, error)
}

// Session represents an active game session
type Session struct {
	ID         string
	Engine     *engine.GameEngine
	Agents     []engine.Agent
	Config     *engine.GameConfig
	ConfigName string
	Seed       int64

	// Recorded is set once the finished game went to the result store
	Recorded bool

	CreatedAt      time.Time
	LastAccessedAt time.Time
}
