// Package mcp exposes fogquest to LLM agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request to the REST API
// (see package api) and the JSON answer is turned into readable text.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: authoritative state of every agent
//   - agent_view: one agent's fog-of-war map
//   - describe_cell: terrain, cost and object of one cell as an agent knows it
//   - step: play one turn, with a direction when the acting agent is queued
//   - run: play until the game ends or a queued agent needs input
//   - history: paginated turn records
//   - list_configs, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// The HTTP server also mounts the same MCP server on /mcp.
package mcp
