package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/snapclone/cli/reader"
	"github.com/pithecene-io/snapclone/cli/render"
	"github.com/pithecene-io/snapclone/cli/tui"
)

// newReader builds the reader for read-only commands. Tests replace it.
var newReader = func(c *cli.Context) (reader.Reader, error) {
	s, err := loadSettings(c)
	if err != nil {
		return nil, err
	}
	return reader.NewWorkspaceReader(storeFor(s), datasetOpener(s)), nil
}

// InspectCommand returns the inspect command with subcommands.
// Inspect returns a deep view of the workspace snapshot or a run report.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect the workspace snapshot or a run report",
		Subcommands: []*cli.Command{
			{
				Name:   "document",
				Usage:  "Summarize the snapshot document, screenshot and artifact",
				Flags:  WorkspaceReadOnlyFlags(),
				Action: inspectDocumentAction,
			},
			{
				Name:   "elements",
				Usage:  "List the snapshot's elements",
				Flags:  WorkspaceReadOnlyFlags(),
				Action: inspectElementsAction,
			},
			{
				Name:      "report",
				Usage:     "Show a run report written by --report",
				ArgsUsage: "<path>",
				Flags:     WorkspaceReadOnlyFlags(),
				Action:    inspectReportAction,
			},
		},
	}
}

func inspectDocumentAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	rd, err := newReader(c)
	if err != nil {
		return err
	}
	resp, err := rd.InspectDocument()
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewInspectDocument, resp)
	}
	return r.Render(resp)
}

func inspectElementsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	rd, err := newReader(c)
	if err != nil {
		return err
	}
	rows, err := rd.ListElements()
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewInspectElements, rows)
	}
	return r.Render(rows)
}

func inspectReportAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("report path required", 1)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	rd, err := newReader(c)
	if err != nil {
		return err
	}
	report, err := rd.InspectReport(c.Args().First())
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewInspectReport, report)
	}
	return r.Render(report)
}
