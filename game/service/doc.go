// Package service provides the business logic layer for FogQuest.
//
// The service package implements:
//   - Multi-session game management
//   - Stepping and running the turn engine on behalf of remote clients
//   - Feeding queued agents with directions from the API
//   - Paginated step history and per-agent knowledge views
//   - Recording finished games to a result store
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages scenario loading and validation.
// ResultStore keeps finished games for the leaderboard.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine and agents; all access goes
// through one mutex so decision functions of a game never run concurrently.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, store, logger)
//
//	info, err := gameService.CreateSession(ctx, "duel", 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// let autonomous agents play until a queued agent needs input
//	run, err := gameService.Run(ctx, info.ID, 100)
//	if run.StoppedReason == service.StopAwaitingInput {
//		gameService.Step(ctx, info.ID, "north")
//	}
package service
