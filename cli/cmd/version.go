package cmd

import (
	goruntime "runtime"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/snapclone/cli/render"
	"github.com/pithecene-io/snapclone/generate"
	"github.com/pithecene-io/snapclone/types"
)

// VersionResponse is the payload of the version command.
type VersionResponse struct {
	Version       string `json:"version" yaml:"version"`
	ReportVersion string `json:"report_version" yaml:"report_version"`
	Commit        string `json:"commit" yaml:"commit"`
	GoVersion     string `json:"go_version" yaml:"go_version"`
	DefaultModel  string `json:"default_model" yaml:"default_model"`
}

// VersionCommand returns the version command. It never touches the
// workspace or the network.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			if c.Bool("tui") {
				return cli.Exit("--tui is not supported for version command", 1)
			}
			r, err := render.NewRenderer(c)
			if err != nil {
				return err
			}
			return r.Render(VersionResponse{
				Version:       types.Version,
				ReportVersion: types.ReportVersion,
				Commit:        commit,
				GoVersion:     goruntime.Version(),
				DefaultModel:  generate.DefaultModel,
			})
		},
	}
}
