package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"FogQuest",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`FogQuest - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Agents explore a grid they can only see one cell around them. The first agent to reach
the boss (B) wins; the first agent to run out of resource ends the game as well.

AVAILABLE TOOLS:
- create_session: Start a game from a configuration
- list_sessions / get_session: Inspect sessions
- game_state: Authoritative state (all agents, status, outcome)
- agent_view: What one agent knows (its fog-of-war map)
- describe_cell: One cell as an agent knows it
- step: Play one turn; pass a direction when the acting agent is queued (human)
- run: Play turns until the game ends or a queued agent needs a direction
- history: Past turns
- list_configs: Available configurations
- game_instructions: Full rules`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session from a configuration",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Configuration to use (optional, see list_configs)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed for map generation and combat (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the authoritative game state: every agent's location and resource, status and outcome",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "agent_view",
		Description: "Get the map as one agent knows it. Unexplored cells are '?', the agent is '@'.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"agent_index": map[string]interface{}{
					"type":        "integer",
					"description": "Index of the agent (0-based, turn order)",
				},
			},
			Required: []string{"session_id", "agent_index"},
		},
	}, c.handleAgentView)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one cell as an agent knows it: terrain, movement cost and any object seen there",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"agent_index": map[string]interface{}{
					"type":        "integer",
					"description": "Index of the agent whose knowledge to use",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, north is 0)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based, west is 0)",
				},
			},
			Required: []string{"session_id", "agent_index", "row", "col"},
		},
	}, c.handleDescribeCell)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Play one turn. A queued (human) agent needs a direction; autonomous agents decide on their own.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"north", "south", "east", "west"},
					"description": "Direction for a queued agent",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run",
		Description: "Play turns until the game ends, a queued agent needs a direction, or max_steps turns were played",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"max_steps": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Maximum turns to play (default and cap %d)", service.MaxRunSteps),
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "history",
		Description: "Get the turn history of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc, default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(sessionID string, parts ...string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + strings.Join(parts, "")
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]interface{}{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}
	if seed := request.GetInt("seed", 0); seed != 0 {
		body["seed"] = seed
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created session: " + info.ID + "\n\n" + formatSessionInfo(&info)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Status: %s, Steps: %d, Created: %s)\n",
			s.ID, s.ConfigName, s.Status, s.Steps, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(request.GetString("session_id", "")), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(request.GetString("session_id", ""), "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) agentView(ctx context.Context, request mcp.CallToolRequest) (*service.AgentView, error) {
	path := sessionPath(request.GetString("session_id", ""), "/agents/", fmt.Sprint(request.GetInt("agent_index", 0)), "/view")
	var view service.AgentView
	if err := c.apiCall(ctx, "GET", path, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) handleAgentView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := c.agentView(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatAgentView(view)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := c.agentView(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	loc := engine.Location{Row: request.GetInt("row", 0), Col: request.GetInt("col", 0)}
	return mcp.NewToolResultText(describeCell(view, loc)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	body := map[string]string{}
	if direction := request.GetString("direction", ""); direction != "" {
		body["direction"] = direction
	}
	// intent is only there for the caller's reasoning

	var result service.StepResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/step"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	body := map[string]int{}
	if maxSteps := request.GetInt("max_steps", 0); maxSteps > 0 {
		body["max_steps"] = maxSteps
	}

	var result service.RunResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/run"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatRunResult(&result)), nil
}

func (c *Client) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}
	path := sessionPath(request.GetString("session_id", ""), "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		var agents []string
		for _, a := range cfg.Agents {
			agents = append(agents, a.Name+" ("+a.Kind+")")
		}
		size := fmt.Sprintf("%dx%d", cfg.Height, cfg.Width)
		if cfg.MapFile != "" {
			size = "map " + cfg.MapFile
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Grid: %s, Agents: %s\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, size, strings.Join(agents, ", "))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `FogQuest - Complete Instructions

GAME OBJECTIVE:
Be the first agent to reach the boss. Agents take turns in a fixed order and each turn moves
one cell north, south, east or west.

FOG OF WAR:
• An agent starts knowing nothing about the map
• After every move it learns the terrain and objects of the (up to) 8 cells around it
• Its own cell is not revealed by standing on it
• Use agent_view to see what an agent knows and describe_cell to inspect one cell

TERRAIN (character, cost):
• '.' grass   costs 1 resource
• ':' sand    costs 2 resource
• '^' mountain costs 3 resource
• '#' wall    impassable
• '?' unknown (not yet seen)

MOVEMENT:
• Moving off the map, into a wall, or onto terrain the agent cannot afford: the agent stays
  and pays 1 resource
• Otherwise it moves and pays the terrain cost

OBJECTS:
• '+' power-up: adds resource when stepped on, then disappears
• 'M' monster: stepping on it starts combat. With ratio = resource / (resource + strength)
  the agent wins when a uniform draw in [0,1) is greater than the ratio, so weaker agents
  win more often. A win resets resource to the starting resource plus the monster's strength
  and removes the monster. A loss drops resource to zero.
• 'B' boss: stepping on it wins the game

GAME END:
• An agent whose resource drops to zero or below dies and the game ends
• An agent reaching the boss wins and the game ends
• Exactly one agent determines the outcome

PLAYING:
• step plays one turn. If the acting agent is queued (a human seat), give it a direction
• run plays autonomous agents until the game ends or a queued agent needs input
• history lists past turns with costs, combat draws and outcomes

Good luck in the fog!`

// describeCell explains what the agent knows about loc
func describeCell(view *service.AgentView, loc engine.Location) string {
	obs := view.Observation
	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s as known by %s:\n", loc, view.Name)

	if loc == obs.Location {
		fmt.Fprintf(&b, "• This is where %s stands\n", view.Name)
	}
	if loc.Row < 0 || loc.Col < 0 || loc.Row >= obs.Height() || loc.Col >= obs.Width() {
		b.WriteString("• Outside the map: moving there bumps and costs 1\n")
		return b.String()
	}

	tile := obs.TileAt(loc)
	if tile == engine.Unknown {
		b.WriteString("• Terrain: unknown (not seen yet)\n")
	} else if cost, ok := engine.CostOf(tile); ok {
		fmt.Fprintf(&b, "• Terrain: %s '%c', costs %d to enter\n", tile, engine.TileChar(tile), cost)
	} else {
		fmt.Fprintf(&b, "• Terrain: %s '%c', impassable (bumping costs 1)\n", tile, engine.TileChar(tile))
	}

	if obj, ok := obs.Objects[loc]; ok {
		fmt.Fprintf(&b, "• Object: %s\n", obj)
		if obj.Kind == engine.KindMonster {
			fmt.Fprintf(&b, "  chance to win at resource %d: %.0f%%\n", obs.Resource, 100*winProbability(obs.Resource, obj.Strength))
		}
	} else {
		b.WriteString("• Object: none known\n")
	}
	fmt.Fprintf(&b, "• Distance from %s: %d\n", view.Name, engine.ManhattanDistance(obs.Location, loc))
	return b.String()
}

// winProbability is the chance that a fight at this resource is won
func winProbability(resource, strength int) float64 {
	switch {
	case resource <= 0:
		return 0
	case strength <= 0:
		return 1
	}
	return 1 - engine.WinChance(resource, strength)
}

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s (seed %d)\nMap: %dx%d\nStatus: %s after %d steps\n",
		info.ID, info.ConfigName, info.Seed, info.Height, info.Width, info.Status, info.Steps)
	if info.Outcome != nil {
		b.WriteString(formatOutcome(info.Outcome) + "\n")
	} else if len(info.Agents) > 0 && info.NextAgent < len(info.Agents) {
		next := info.Agents[info.NextAgent]
		fmt.Fprintf(&b, "Next to act: %s (%s)\n", next.Name, next.Kind)
	}
	b.WriteString("\nAgents:\n")
	for _, a := range info.Agents {
		queued := ""
		if a.Queued {
			queued = fmt.Sprintf(" [queued, %d pending]", a.Pending)
		}
		fmt.Fprintf(&b, "  %d. %s (%s) at %s, resource %d%s\n", a.Index, a.Name, a.Kind, a.Location, a.Resource, queued)
	}
	return b.String()
}

func formatOutcome(o *engine.Outcome) string {
	switch o.Status {
	case engine.StatusAgentWon:
		return fmt.Sprintf("🎉 %s reached the boss after %d steps", o.AgentName, o.Steps)
	case engine.StatusAgentDied:
		return fmt.Sprintf("💀 %s ran out of resource after %d steps", o.AgentName, o.Steps)
	}
	return string(o.Status)
}

func formatGameState(state *engine.GameState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\nSteps: %d\n", state.Status, state.Steps)
	if state.Outcome != nil {
		b.WriteString(formatOutcome(state.Outcome) + "\n")
	}
	for i, a := range state.Agents {
		marker := " "
		if state.Outcome == nil && i == state.Turn {
			marker = "▶"
		}
		fmt.Fprintf(&b, "%s %d. %s at %s, resource %d\n", marker, i, a.Name, a.Location, a.Resource)
	}
	if state.World != nil {
		fmt.Fprintf(&b, "Map: %dx%d, boss at %s, %d power-ups and %d monsters left\n",
			state.World.Height, state.World.Width, state.World.Goal,
			state.World.Objects.Count(engine.KindPowerUp), state.World.Objects.Count(engine.KindMonster))
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	return b.String()
}

func formatAgentView(view *service.AgentView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) at %s, resource %d, %d cells revealed\n\n",
		view.Name, view.Kind, view.Observation.Location, view.Observation.Resource, view.Revealed)
	for _, row := range view.Rows {
		b.WriteString(row + "\n")
	}
	b.WriteString("\nLegend: . grass(1) : sand(2) ^ mountain(3) # wall ? unknown + power-up M monster B boss @ you\n")
	return b.String()
}

func formatStep(rec *engine.StepRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s %s: %s", rec.Step, rec.AgentName, rec.Direction, rec.Move)
	if rec.From != rec.To {
		fmt.Fprintf(&b, " %s->%s", rec.From, rec.To)
	}
	fmt.Fprintf(&b, " resource %d->%d", rec.ResourceBefore, rec.ResourceAfter)
	switch rec.Interaction {
	case engine.InteractionNone:
	case engine.InteractionMonsterWon, engine.InteractionMonsterLost:
		fmt.Fprintf(&b, " [%s, ratio %.2f, draw %.2f]", rec.Interaction, rec.WinChance, rec.Draw)
	default:
		fmt.Fprintf(&b, " [%s]", rec.Interaction)
	}
	return b.String()
}

func formatStepResult(result *service.StepResult) string {
	var b strings.Builder
	if result.Record != nil {
		b.WriteString(formatStep(result.Record) + "\n")
	}
	if result.Outcome != nil {
		b.WriteString(formatOutcome(result.Outcome) + "\n")
	} else {
		fmt.Fprintf(&b, "Next agent: %d\n", result.NextAgent)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", result.Message)
	}
	return b.String()
}

func formatRunResult(result *service.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Played %d turns, stopped: %s\n\n", result.Played, result.StoppedReason)
	for i := range result.Steps {
		b.WriteString(formatStep(&result.Steps[i]) + "\n")
	}
	if result.Outcome != nil {
		b.WriteString("\n" + formatOutcome(result.Outcome) + "\n")
	} else if result.StoppedReason == service.StopAwaitingInput {
		fmt.Fprintf(&b, "\nAgent %d is queued and needs a direction (use step)\n", result.NextAgent)
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turn History (Page %d/%d), total %d\n\n", history.Page, history.TotalPages, history.TotalSteps)
	for i := range history.Steps {
		b.WriteString(formatStep(&history.Steps[i]) + "\n")
	}
	return b.String()
}
