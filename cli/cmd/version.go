package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/billingflatfile/cli/render"
	"github.com/justapithecus/billingflatfile/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version       string   `json:"version"`
	EventContract string   `json:"event_contract"`
	FileVersions  []string `json:"file_versions"`
	Commit        string   `json:"commit"`
}

// VersionCommand returns the version command.
// Version reports the binary version, the batch event contract version and
// the metadata file versions this build can write.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}

		// TUI not supported for version command
		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for version command", exitFailure)
		}

		resp := VersionResponse{
			Version:       types.Version,
			EventContract: types.EventContractVersion,
			FileVersions:  types.SupportedFileVersions,
			Commit:        commit,
		}

		return r.Render(resp)
	}
}
