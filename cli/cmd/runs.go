package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/snapclone/cli/reader"
	"github.com/pithecene-io/snapclone/cli/render"
	"github.com/pithecene-io/snapclone/cli/tui"
	"github.com/pithecene-io/snapclone/store"
)

// runFilterFlags narrow archive queries.
func runFilterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "run-id", Usage: "Only this run"},
		&cli.StringFlag{Name: "source", Usage: "Only runs against this host"},
		&cli.StringFlag{Name: "phase", Usage: "Only capture or generate runs"},
		&cli.IntFlag{Name: "limit", Usage: "Maximum number of runs (0 = all)"},
	}
}

func runFilter(c *cli.Context) reader.ListRunsOptions {
	return reader.ListRunsOptions{
		RunID:  c.String("run-id"),
		Source: c.String("source"),
		Phase:  c.String("phase"),
		Limit:  c.Int("limit"),
	}
}

// RunsCommand returns the runs command, listing archived runs newest first.
func RunsCommand() *cli.Command {
	return &cli.Command{
		Name:   "runs",
		Usage:  "List archived runs (requires an archive path)",
		Flags:  append(WorkspaceReadOnlyFlags(), runFilterFlags()...),
		Action: runsAction,
	}
}

func runsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// TUI not supported for list views
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for runs command", 1)
	}

	rd, err := newReader(c)
	if err != nil {
		return err
	}
	items, err := rd.ListRuns(c.Context, runFilter(c))
	if err != nil {
		return err
	}
	return r.Render(items)
}

// StatsCommand returns the stats command aggregating archived runs.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show aggregated statistics over archived runs",
		Flags:  append(WorkspaceReadOnlyFlags(), runFilterFlags()...),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	rd, err := newReader(c)
	if err != nil {
		return err
	}
	stats, err := rd.StatsRuns(c.Context, runFilter(c))
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewStatsRuns, stats)
	}
	return r.Render(stats)
}

func storeFor(s *settings) *store.Store {
	return store.New(s.workdir)
}
