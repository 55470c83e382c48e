package service

import (
	"time"

	"github.com/wricardo/fogquest/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Seed           int64              `json:"seed"`
	Status         engine.Status      `json:"status"`
	Steps          int                `json:"steps"`
	NextAgent      int                `json:"next_agent"`
	Message        string             `json:"message,omitempty"`
	Outcome        *engine.Outcome    `json:"outcome,omitempty"`
	Agents         []AgentSummary     `json:"agents"`
	Height         int                `json:"height"`
	Width          int                `json:"width"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// AgentSummary is the public part of one agent's state
type AgentSummary struct {
	Index    int             `json:"index"`
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Location engine.Location `json:"location"`
	Resource int             `json:"resource"`
	Queued   bool            `json:"queued"`
	Pending  int             `json:"pending,omitempty"`
}

// StepResult is the outcome of one Step call
type StepResult struct {
	Record    *engine.StepRecord `json:"record"`
	Status    engine.Status      `json:"status"`
	Outcome   *engine.Outcome    `json:"outcome,omitempty"`
	NextAgent int                `json:"next_agent"`
	Message   string             `json:"message"`
	GameOver  bool               `json:"game_over"`
}

// Reasons a Run call stopped
const (
	StopGameOver      = "game_over"
	StopAwaitingInput = "awaiting_input"
	StopMaxSteps      = "max_steps"
)

// RunResult is the outcome of one Run call
type RunResult struct {
	Played        int                 `json:"played"`
	Steps         []engine.StepRecord `json:"steps"`
	StoppedReason string              `json:"stopped_reason"`
	Status        engine.Status       `json:"status"`
	Outcome       *engine.Outcome     `json:"outcome,omitempty"`
	NextAgent     int                 `json:"next_agent"`
	Message       string              `json:"message"`
}

// AgentView is what one agent knows, as served to observers
type AgentView struct {
	SessionID   string             `json:"session_id"`
	Name        string             `json:"name"`
	Kind        string             `json:"kind"`
	Observation engine.Observation `json:"observation"`
	Rows        []string           `json:"rows"`
	Revealed    int                `json:"revealed"`
}

// HistoryOptions configures step history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated step history
type HistoryResponse struct {
	Steps       []engine.StepRecord `json:"steps"`
	TotalSteps  int                 `json:"total_steps"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string               `json:"filename"`
	ConfigID    string               `json:"config_id"` // The identifier to use for session creation
	Name        string               `json:"name"`      // Display name
	Description string               `json:"description"`
	Height      int                  `json:"height"`
	Width       int                  `json:"width"`
	MapFile     string               `json:"map_file,omitempty"`
	Agents      []engine.AgentConfig `json:"agents"`
}
