// Package results records finished games and ranks agents across them.
//
// The store runs on SQLite (pure Go, modernc.org/sqlite) for local use or on
// PostgreSQL (github.com/lib/pq) when several servers share one database. The
// DSN picks the backend: postgres:// and postgresql:// URLs go to PostgreSQL,
// anything else is a SQLite file path.
package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/wricardo/fogquest/game/engine"
)

// ErrNotTerminal is returned when recording a game that has not finished
var ErrNotTerminal = errors.New("game has not finished")

// Result is the outcome of one finished session
type Result struct {
	ID         string        `json:"id"`
	SessionID  string        `json:"session_id"`
	ConfigName string        `json:"config_name"`
	Status     engine.Status `json:"status"`
	AgentIndex int           `json:"agent_index"`
	AgentName  string        `json:"agent_name"`
	AgentKind  string        `json:"agent_kind"`
	Steps      int           `json:"steps"`
	NumAgents  int           `json:"num_agents"`
	Seed       int64         `json:"seed"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Standing aggregates every recorded game decided by one agent name
type Standing struct {
	AgentName    string  `json:"agent_name"`
	Wins         int     `json:"wins"`
	Deaths       int     `json:"deaths"`
	AvgWinSteps  float64 `json:"avg_win_steps"`
	FastestSteps int     `json:"fastest_win_steps"`
}

// FromState builds the result of a finished game state
func FromState(sessionID string, seed int64, state *engine.GameState) (*Result, error) {
	if state.Outcome == nil || !state.Outcome.Status.Terminal() {
		return nil, ErrNotTerminal
	}
	out := state.Outcome
	return &Result{
		SessionID:  sessionID,
		ConfigName: state.ConfigName,
		Status:     out.Status,
		AgentIndex: out.AgentIndex,
		AgentName:  out.AgentName,
		AgentKind:  state.Agents[out.AgentIndex].Kind,
		Steps:      out.Steps,
		NumAgents:  len(state.Agents),
		Seed:       seed,
	}, nil
}

// Store persists results in SQLite or PostgreSQL
type Store struct {
	db       *sql.DB
	postgres bool
}

// Open connects to the database named by dsn and runs migrations.
func Open(dsn string) (*Store, error) {
	driver, source := "sqlite", strings.TrimPrefix(dsn, "sqlite://")
	postgres := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
	if postgres {
		driver, source = "postgres", dsn
	} else if source != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(source), 0o755); err != nil {
			return nil, fmt.Errorf("results: cannot create directory for %s: %w", source, err)
		}
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("results: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: cannot connect to database: %w", err)
	}

	store := &Store{db: db, postgres: postgres}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL UNIQUE,
			config_name TEXT NOT NULL,
			status TEXT NOT NULL,
			agent_index INTEGER NOT NULL,
			agent_name TEXT NOT NULL,
			agent_kind TEXT NOT NULL,
			steps INTEGER NOT NULL,
			num_agents INTEGER NOT NULL,
			seed BIGINT NOT NULL,
			created_at BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_results_agent ON results(agent_name);
		CREATE INDEX IF NOT EXISTS idx_results_created ON results(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// rebind turns ? placeholders into $n for PostgreSQL
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a result once per session. Recording the same session again is a no-op.
func (s *Store) Record(ctx context.Context, r *Result) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO results (id, session_id, config_name, status, agent_index, agent_name, agent_kind, steps, num_agents, seed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id) DO NOTHING`),
		r.ID, r.SessionID, r.ConfigName, string(r.Status), r.AgentIndex, r.AgentName, r.AgentKind,
		r.Steps, r.NumAgents, r.Seed, r.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("results: cannot record result: %w", err)
	}
	return nil
}

// Recent returns the latest results, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, session_id, config_name, status, agent_index, agent_name, agent_kind, steps, num_agents, seed, created_at
		 FROM results
		 ORDER BY created_at DESC, id
		 LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("results: cannot query results: %w", err)
	}
	defer rows.Close()

	out := []*Result{}
	for rows.Next() {
		var r Result
		var status string
		var created int64
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ConfigName, &status, &r.AgentIndex, &r.AgentName,
			&r.AgentKind, &r.Steps, &r.NumAgents, &r.Seed, &created); err != nil {
			return nil, fmt.Errorf("results: cannot scan row: %w", err)
		}
		r.Status = engine.Status(status)
		r.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("results: row iteration error: %w", err)
	}
	return out, nil
}

// Leaderboard ranks agent names by wins, then by fewest deaths
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]*Standing, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT agent_name,
		        SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS wins,
		        SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS deaths,
		        COALESCE(AVG(CASE WHEN status = ? THEN steps END), 0) AS avg_win_steps,
		        COALESCE(MIN(CASE WHEN status = ? THEN steps END), 0) AS fastest
		 FROM results
		 GROUP BY agent_name
		 ORDER BY wins DESC, deaths ASC, agent_name ASC
		 LIMIT ?`),
		string(engine.StatusAgentWon), string(engine.StatusAgentDied),
		string(engine.StatusAgentWon), string(engine.StatusAgentWon), limit)
	if err != nil {
		return nil, fmt.Errorf("results: cannot query leaderboard: %w", err)
	}
	defer rows.Close()

	out := []*Standing{}
	for rows.Next() {
		var st Standing
		if err := rows.Scan(&st.AgentName, &st.Wins, &st.Deaths, &st.AvgWinSteps, &st.FastestSteps); err != nil {
			return nil, fmt.Errorf("results: cannot scan row: %w", err)
		}
		out = append(out, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("results: row iteration error: %w", err)
	}
	return out, nil
}
