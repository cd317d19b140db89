package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/billingflatfile/cli/render"
	"github.com/justapithecus/billingflatfile/cli/tui"
	"github.com/justapithecus/billingflatfile/record"
	"github.com/justapithecus/billingflatfile/types"
)

// InspectCommand returns the inspect command.
// Inspect decodes a metadata file back into its fields.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode a metadata (E) file",
		ArgsUsage: "<metadata-file>",
		Flags:     TUIReadOnlyFlags(),
		Action:    inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("metadata file required", exitFailure)
	}
	path := c.Args().First()

	md, err := readMetadataFile(path)
	if err != nil {
		return cli.Exit(err.Error(), exitCodeFor(types.KindOf(err)))
	}

	// Get renderer
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// Handle TUI mode
	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewInspectMetadata, md)
	}

	return r.Render(md)
}

// readMetadataFile reads and decodes one metadata record. The file holds
// the record verbatim; a trailing newline added by an editor is tolerated.
func readMetadataFile(path string) (*record.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.Errorf(types.KindInputNotFound, "metadata file not found: %s", path)
		}
		return nil, types.Wrap(types.KindInputNotFound, err, "cannot read metadata file %s", path)
	}
	rec := string(data)
	for len(rec) > record.MetadataLength && (rec[len(rec)-1] == '\n' || rec[len(rec)-1] == '\r') {
		rec = rec[:len(rec)-1]
	}
	return record.ParseMetadata(rec)
}
