// Package cmd provides CLI commands for the billingflatfile binary.
package cmd

import "github.com/urfave/cli/v2"

var (
	// FormatFlag selects json, table or yaml. Unset picks table on a
	// terminal and json otherwise.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag opens the Bubble Tea view. Only inspect and history honor it.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Interactive view (inspect, history only)",
	}
)

// ReadOnlyFlags are shared by every command that only reads state.
// --tui is registered everywhere so that commands without a view can
// reject it with a clear message instead of "flag provided but not defined".
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{FormatFlag, NoColorFlag, TUIFlag}
}

// TUIReadOnlyFlags is ReadOnlyFlags for commands that have a view.
func TUIReadOnlyFlags() []cli.Flag {
	return ReadOnlyFlags()
}
