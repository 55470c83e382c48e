package main

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wricardo/fogquest/game/agents"
	"github.com/wricardo/fogquest/game/engine"
)

// ErrStalled is returned when the server plays no step for a run request
var ErrStalled = errors.New("server made no progress")

// Pilot decides for every queued agent of a session with an explorer strategy
// and leaves the other agents to the server.
type Pilot struct {
	client    *Client
	seed      int64
	delay     time.Duration
	maxSteps  int
	logger    *log.Logger
	explorers map[int]*agents.Explorer
}

func NewPilot(client *Client, seed int64, logger *log.Logger) *Pilot {
	if logger == nil {
		logger = log.Default()
	}
	return &Pilot{
		client:    client,
		seed:      seed,
		maxSteps:  5000,
		logger:    logger,
		explorers: make(map[int]*agents.Explorer),
	}
}

func (p *Pilot) explorer(idx int, name string) *agents.Explorer {
	if e, ok := p.explorers[idx]; ok {
		return e
	}
	e := agents.NewExplorer(name, rand.New(rand.NewSource(p.seed+int64(idx))))
	p.explorers[idx] = e
	return e
}

// Play drives the session until it ends, the step limit is reached or ctx is done.
// The outcome is nil when the game is still running.
func (p *Pilot) Play(ctx context.Context) (*engine.Outcome, error) {
	played := 0
	for played < p.maxSteps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := p.client.GetSession(ctx)
		if err != nil {
			return nil, err
		}
		if info.Outcome != nil {
			return info.Outcome, nil
		}

		next := info.Agents[info.NextAgent]
		if !next.Queued {
			run, err := p.client.Run(ctx, p.maxSteps-played)
			if err != nil {
				return nil, err
			}
			if run.Played == 0 && run.Outcome == nil {
				return nil, ErrStalled
			}
			played += run.Played
			p.logger.Debug("server played", "steps", run.Played, "stop", run.StoppedReason)
			continue
		}

		view, err := p.client.AgentView(ctx, next.Index)
		if err != nil {
			return nil, err
		}
		dir := p.explorer(next.Index, next.Name).Decide(view.Observation)

		result, err := p.client.Step(ctx, dir)
		if err != nil {
			return nil, err
		}
		played++
		if rec := result.Record; rec != nil {
			p.logger.Info("step", "n", rec.Step, "agent", rec.AgentName, "dir", rec.Direction,
				"to", rec.To, "resource", rec.ResourceAfter, "move", rec.Move)
		}
		if result.GameOver {
			return result.Outcome, nil
		}

		if p.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.delay):
			}
		}
	}
	return nil, nil
}
