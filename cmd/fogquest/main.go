// Command fogquest runs fog-of-war simulations from the terminal.
//
//	fogquest play --config duel --seed 42 --verbose
//	fogquest play --config configs/solo.yaml      # human agents read N/S/E/W from stdin
//	fogquest leaderboard --results-dsn data/results.db
//
// Generated maps are saved to --save-dir so a run can be replayed by pointing a
// config's map_file at the saved file.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

const version = "1.0.0"

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "fogquest",
		Usage:   "turn-based fog-of-war exploration",
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(log.DebugLevel)
				log.SetReportCaller(true)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			playCommand(out),
			configsCommand(out),
			resultsCommand(out),
			leaderboardCommand(out),
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatal("fogquest", "err", err)
	}
}
