package session

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/service"
	"github.com/wricardo/fogquest/game/setup"
	"github.com/wricardo/fogquest/game/worldfile"
)

// FilePersistence implements SessionPersistence using file system storage.
// Each session is written as <id>.json plus its world as <id>.map.yaml.
type FilePersistence struct {
	sessionsDir string
	setup       setup.Options
}

// NewFilePersistence creates a new file-based session persistence layer.
// opts are used to rebuild the agents of restored sessions.
func NewFilePersistence(sessionsDir string, opts setup.Options) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	opts.RemoteHumans = true
	return &FilePersistence{
		sessionsDir: sessionsDir,
		setup:       opts,
	}, nil
}

// Save persists a session to a JSON file and its world to a map file
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	state := session.Engine.GetState()
	positions := make([]engine.Location, len(state.Agents))
	for i, a := range state.Agents {
		positions[i] = a.Location
	}
	if err := worldfile.Save(fp.getMapPath(session.ID), state.World, positions); err != nil {
		return fmt.Errorf("failed to write world file: %w", err)
	}

	snapshot := *state
	snapshot.World = nil
	data := PersistedSessionData{
		ID:             session.ID,
		ConfigName:     session.ConfigName,
		Config:         session.Config,
		Seed:           session.Seed,
		Recorded:       session.Recorded,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      &snapshot,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}
	if err := os.WriteFile(fp.getFilePath(session.ID), jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load restores a session: its state, its world and freshly built agents.
// Directions queued for remote agents are not persisted.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	filePath := fp.getFilePath(id)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}

	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.Config == nil || data.GameState == nil {
		return nil, fmt.Errorf("session file %s is missing its config or state", filePath)
	}

	world, _, err := worldfile.Load(fp.getMapPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	state := data.GameState
	state.World = world

	// Continue the random stream from a point that depends on how far the game went
	rng := rand.New(rand.NewSource(data.Seed + int64(state.Steps)))
	eng, agents, err := setup.Wire(state, data.Config, rng, fp.setup)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game engine: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         eng,
		Agents:         agents,
		Config:         data.Config,
		ConfigName:     data.ConfigName,
		Seed:           data.Seed,
		Recorded:       data.Recorded,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// Delete removes the session and map files
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}
	if err := os.Remove(fp.getFilePath(id)); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	if err := os.Remove(fp.getMapPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove world file: %w", err)
	}
	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name := entry.Name(); strings.HasSuffix(name, ".json") {
			sessionIDs = append(sessionIDs, strings.TrimSuffix(name, ".json"))
		}
	}
	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.sessionsDir, fmt.Sprintf("%s.json", id))
}

func (fp *FilePersistence) getMapPath(id string) string {
	return filepath.Join(fp.sessionsDir, fmt.Sprintf("%s.map.yaml", id))
}
