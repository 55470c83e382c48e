package websocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/wricardo/fogquest/game/engine"
)

func newTestHub() *Hub {
	return NewHub(log.New(io.Discard))
}

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub registration channels are nil")
	}
	if hub.logger == nil {
		t.Error("Expected a default logger")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if got := hub.ClientCount("TEST-SESSION"); got != 1 {
		t.Errorf("Expected 1 client in session, got %d", got)
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected the send channel to be closed")
	}

	// a second unregister must not close the channel again
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := newTestHub()
	sessionID := "multi-client-session"
	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)
	if got := hub.ClientCount(sessionID); got != 2 {
		t.Errorf("Expected 2 clients in session, got %d", got)
	}

	hub.unregisterClient(client1)
	if got := hub.ClientCount(sessionID); got != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", got)
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "broadcast-test")
	other := newTestClient(hub, "other-session")
	hub.registerClient(client)
	hub.registerClient(other)

	state := &engine.GameState{
		Agents:  []engine.AgentState{{Name: "alice", Location: engine.Location{Row: 2, Col: 3}, Resource: 12}},
		Status:  engine.StatusRunning,
		Steps:   4,
		Message: "alice moved east",
	}
	hub.BroadcastToSession("Broadcast-Test", state)

	message := receive(t, client)
	if message.SessionID != "Broadcast-Test" {
		t.Errorf("Expected sessionID Broadcast-Test, got %s", message.SessionID)
	}
	if message.Event != EventStateUpdate {
		t.Errorf("Expected event %s, got %s", EventStateUpdate, message.Event)
	}
	if message.GameState == nil || message.GameState.Steps != 4 || message.GameState.Agents[0].Resource != 12 {
		t.Errorf("GameState not correctly transmitted: %+v", message.GameState)
	}

	select {
	case <-other.send:
		t.Error("Clients of another session should not receive the update")
	default:
	}
}

func TestHubBroadcastSteps(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "steps")
	hub.registerClient(client)

	steps := []engine.StepRecord{
		{Step: 1, AgentName: "alice", Direction: engine.East, Status: engine.StatusRunning},
		{Step: 2, AgentName: "bob", Direction: engine.North, Status: engine.StatusAgentWon},
	}
	state := &engine.GameState{
		Status:  engine.StatusAgentWon,
		Steps:   2,
		Outcome: &engine.Outcome{Status: engine.StatusAgentWon, AgentIndex: 1, AgentName: "bob", Steps: 2},
	}
	hub.BroadcastSteps("steps", steps, state)

	message := receive(t, client)
	if message.Event != EventSteps {
		t.Errorf("Expected event %s, got %s", EventSteps, message.Event)
	}
	if records, ok := message.Data.([]interface{}); !ok || len(records) != 2 {
		t.Errorf("Expected two step records, got %v", message.Data)
	}

	message = receive(t, client)
	if message.Event != EventGameOver {
		t.Errorf("Expected event %s, got %s", EventGameOver, message.Event)
	}
	outcome, ok := message.Data.(map[string]interface{})
	if !ok || outcome["agent_name"] != "bob" {
		t.Errorf("Expected the outcome as data, got %v", message.Data)
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "event-test")
	hub.registerClient(client)

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	message := receive(t, client)
	if message.Event != "custom-event" {
		t.Errorf("Expected event 'custom-event', got %s", message.Event)
	}
	if message.Data != "test-data" {
		t.Errorf("Expected data 'test-data', got %v", message.Data)
	}
	if message.GameState != nil {
		t.Error("Expected no game state on a custom event")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := newTestHub()
	client := &Client{hub: hub, sessionID: "slow", send: make(chan []byte, 1)}
	hub.registerClient(client)

	hub.BroadcastEvent("slow", "first", nil)
	hub.BroadcastEvent("slow", "second", nil)

	if got := hub.ClientCount("slow"); got != 0 {
		t.Errorf("Expected the slow client to be dropped, got %d clients", got)
	}
}

func startTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	return conn
}

func waitForClients(hub *Hub, sessionID string, want int) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := startTestServer(t, hub)
	conn := dial(t, server, "ws-test")

	if !waitForClients(hub, "ws-test", 1) {
		t.Fatalf("Expected 1 client in session, got %d", hub.ClientCount("ws-test"))
	}

	conn.Close()

	if !waitForClients(hub, "ws-test", 0) {
		t.Error("Session should have been cleaned up after WebSocket close")
	}
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := startTestServer(t, hub)
	conn := dial(t, server, "msg-test")
	defer conn.Close()

	if !waitForClients(hub, "msg-test", 1) {
		t.Fatal("Client never registered")
	}

	state := &engine.GameState{
		Agents: []engine.AgentState{{Name: "alice", Location: engine.Location{Row: 10, Col: 15}, Resource: 50}},
		Status: engine.StatusRunning,
		Steps:  7,
	}
	hub.BroadcastToSession("msg-test", state)

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.SessionID != "msg-test" {
		t.Errorf("Expected sessionID 'msg-test', got %s", message.SessionID)
	}
	agent := message.GameState.Agents[0]
	if agent.Location != (engine.Location{Row: 10, Col: 15}) || agent.Resource != 50 {
		t.Errorf("Agent not correctly received: %+v", agent)
	}
}

func TestHubRunClosesClientsOnShutdown(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(finished)
	}()

	server := startTestServer(t, hub)
	conn := dial(t, server, "shutdown")
	defer conn.Close()
	if !waitForClients(hub, "shutdown", 1) {
		t.Fatal("Client never registered")
	}

	cancel()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed")
	}
}
