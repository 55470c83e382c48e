// Command autopilot plays the queued agents of a fogquest server session over
// the REST API. Every queued agent gets an explorer strategy fed with its own
// view; autonomous agents are left to the server's run endpoint.
//
//	autopilot --url http://localhost:8080 --config solo
//	autopilot --session ab12 --delay 200ms
//
// The session ID is saved to --session-file so the next run resumes it.
package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/fogquest/game/engine"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autopilot",
		Usage: "play queued agents of a fogquest session through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "config", Usage: "config ID for a new session (server default when empty)"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for a new session and the explorer strategy"},
			&cli.StringFlag{Name: "session", Usage: "resume this session instead of the saved one"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "where the session ID is remembered (empty disables)"},
			&cli.BoolFlag{Name: "new", Usage: "always create a new session"},
			&cli.IntFlag{Name: "max-steps", Value: 5000, Usage: "maximum steps to play"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between own moves, e.g. 200ms"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log server-played batches"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}

	client := NewClient(cmd.String("url"))
	log.Info("connecting to game server", "url", cmd.String("url"))

	sessionFile := cmd.String("session-file")
	sessionID := cmd.String("session")
	if sessionID == "" && sessionFile != "" && !cmd.Bool("new") {
		if data, err := os.ReadFile(sessionFile); err == nil {
			sessionID = string(bytes.TrimSpace(data))
		}
	}

	if sessionID != "" {
		info, err := client.Resume(ctx, sessionID)
		var apiErr *APIError
		switch {
		case err == nil:
			log.Info("resuming session", "id", info.ID, "steps", info.Steps, "status", info.Status)
		case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
			log.Warn("saved session is gone, creating a new one", "id", sessionID)
			sessionID = ""
		default:
			return err
		}
	}

	if sessionID == "" {
		info, err := client.CreateSession(ctx, cmd.String("config"), cmd.Int64("seed"))
		if err != nil {
			return err
		}
		log.Info("session created", "id", info.ID, "config", info.ConfigName, "seed", info.Seed, "size", info.Height*info.Width)
		if sessionFile != "" {
			if err := os.WriteFile(sessionFile, []byte(info.ID), 0644); err != nil {
				log.Warn("failed to save session ID", "err", err)
			}
		}
	}

	pilot := NewPilot(client, cmd.Int64("seed"), log.Default())
	pilot.maxSteps = cmd.Int("max-steps")
	pilot.delay = cmd.Duration("delay")

	outcome, err := pilot.Play(ctx)
	if err != nil {
		return err
	}
	switch {
	case outcome == nil:
		log.Warn("step limit reached", "session", client.SessionID())
	case outcome.Status == engine.StatusAgentWon:
		log.Info("🎉 boss reached", "agent", outcome.AgentName, "steps", outcome.Steps, "session", client.SessionID())
	default:
		log.Info("💀 agent ran out of resource", "agent", outcome.AgentName, "steps", outcome.Steps, "session", client.SessionID())
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal("autopilot", "err", err)
	}
}
