// Package session keeps the live games of a FogQuest server.
//
// Manager creates sessions from scenario configs through the setup package,
// keys them by short case-insensitive IDs and optionally mirrors them to a
// SessionPersistence. Human agents are always built as queued agents here:
// a server session is driven through the API, never through stdin.
//
// FilePersistence writes two files per session:
//
//	<id>.json      config snapshot, seed and the full game state without the world
//	<id>.map.yaml  the world as a map file (terrain rows, remaining objects, goal)
//
// Restoring a session rebuilds its agents from the stored config. Directions
// queued for remote agents are not persisted.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("sessions", setup.Options{Logger: logger})
//	manager := session.NewManagerWithPersistence(persistence, logger)
//	_ = manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", "duel", cfg, 0)
package session
