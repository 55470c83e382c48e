// Package engine provides the core rules of the fogquest simulation.
//
// Several agents take turns on one shared grid. Every agent only knows the
// cells it has seen so far: each turn starts by revealing the eight cells
// around the acting agent in that agent's private map. Agents pay resource
// to move onto grass, sand or mountain, pick up power-ups, gamble their
// resource against static monsters and try to reach the boss on the goal
// cell. The first agent to die or reach the goal ends the game for everyone.
//
// Core Types:
//
// World is the authoritative map and object placement. KnowledgeStore holds
// every agent's private map and subscribes to the world so consumed objects
// are forgotten by all agents at once. GameEngine drives the fixed
// round-robin turn loop over a GameState and asks each Agent for a Direction
// through a deep-copied Observation.
//
// Usage:
//
//	state := engine.NewGameState(world, []engine.AgentState{
//		{Name: "alice", Location: engine.Location{Row: 0, Col: 0}},
//	}, 20)
//
//	eng, err := engine.NewEngine(state, []engine.Agent{alice}, engine.WithRand(rng))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := eng.Run(ctx, 0)
//
// Combat:
//
// A fight is decided by one uniform draw in [0, 1). The agent wins when the
// draw is strictly greater than resource/(resource+strength). A win resets
// the agent's resource to the initial resource plus the monster's strength
// and removes the monster; a loss drops the resource to zero.
package engine
