package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/fogquest/game/config"
	"github.com/wricardo/fogquest/game/results"
)

func configsCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "configs",
		Usage: "list the configurations in --config-dir",
		Flags: []cli.Flag{configDirFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return listConfigs(out, cmd.String("config-dir"))
		},
	}
}

func listConfigs(out io.Writer, dir string) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	configs, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSIZE\tAGENTS\tDESCRIPTION")
	for _, c := range configs {
		size := fmt.Sprintf("%dx%d", c.Height, c.Width)
		if c.MapFile != "" {
			size = "map file"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.ConfigID, size, len(c.Agents), c.Description)
	}
	return tw.Flush()
}

func resultsCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "results",
		Usage: "show the most recent finished games",
		Flags: []cli.Flag{
			resultsDSNFlag("data/results.db"),
			&cli.IntFlag{Name: "limit", Value: 10, Usage: "how many results to show"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return showResults(ctx, out, cmd.String("results-dsn"), cmd.Int("limit"))
		},
	}
}

func leaderboardCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "rank agents by wins across recorded games",
		Flags: []cli.Flag{
			resultsDSNFlag("data/results.db"),
			&cli.IntFlag{Name: "limit", Value: 10, Usage: "how many agents to show"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return showLeaderboard(ctx, out, cmd.String("results-dsn"), cmd.Int("limit"))
		},
	}
}

func showResults(ctx context.Context, out io.Writer, dsn string, limit int) error {
	store, err := results.Open(dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	recent, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSESSION\tCONFIG\tAGENT\tSTATUS\tSTEPS")
	for _, r := range recent {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s (%s)\t%s\t%d\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.SessionID, r.ConfigName, r.AgentName, r.AgentKind, r.Status, r.Steps)
	}
	return tw.Flush()
}

func showLeaderboard(ctx context.Context, out io.Writer, dsn string, limit int) error {
	store, err := results.Open(dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	standings, err := store.Leaderboard(ctx, limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tAGENT\tWINS\tDEATHS\tAVG STEPS\tFASTEST")
	for i, s := range standings {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.1f\t%d\n", i+1, s.AgentName, s.Wins, s.Deaths, s.AvgWinSteps, s.FastestSteps)
	}
	return tw.Flush()
}
