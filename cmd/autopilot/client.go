package main

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

	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/service"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// Client talks to the fogquest REST API on behalf of one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID is the session the client plays
func (c *Client) SessionID() string { return c.sessionID }

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) sessionPath(parts ...string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + strings.Join(parts, "")
}

// CreateSession starts a new session and makes it the client's session
func (c *Client) CreateSession(ctx context.Context, configID string, seed int64) (*service.SessionInfo, error) {
	req := map[string]interface{}{"config_id": configID, "seed": seed}
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

// Resume points the client at an existing session
func (c *Client) Resume(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	c.sessionID = sessionID
	return c.GetSession(ctx)
}

func (c *Client) GetSession(ctx context.Context) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, c.sessionPath(), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// AgentView fetches what agent idx knows
func (c *Client) AgentView(ctx context.Context, idx int) (*service.AgentView, error) {
	var view service.AgentView
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/agents/", fmt.Sprint(idx), "/view"), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Step plays one turn; dir is only sent when non-empty
func (c *Client) Step(ctx context.Context, dir engine.Direction) (*service.StepResult, error) {
	var result service.StepResult
	req := map[string]string{}
	if dir != "" {
		req["direction"] = string(dir)
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/step"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Run lets the server play autonomous agents until a queued agent needs input
func (c *Client) Run(ctx context.Context, maxSteps int) (*service.RunResult, error) {
	var result service.RunResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/run"), map[string]int{"max_steps": maxSteps}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
