// Package agents provides the decision makers that can take part in a game.
//
// Every agent only ever sees the engine.Observation handed to it on its own
// turn and answers with one of the four directions.
//
//   - Random picks a direction uniformly at random
//   - Explorer walks toward the boss, known power-ups or unexplored cells
//   - Queued plays directions pushed from outside (REST, MCP, tests)
//   - Human prompts for N/S/E/W on a terminal
//
// New builds any of them from the kind named in a scenario config.
package agents
