package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/billingflatfile/cli/render"
	"github.com/justapithecus/billingflatfile/cli/tui"
	"github.com/justapithecus/billingflatfile/delivery"
	"github.com/justapithecus/billingflatfile/journal"
)

// historyWarningThreshold is the number of entries above which we warn about using --limit.
const historyWarningThreshold = 100

// isStderrTTY returns true if stderr is a TTY.
func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// HistoryCommand returns the history command.
// History lists past batches from the journal, or delivered files from
// the delivery manifest.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past batches (journal) or delivered files (delivery manifest)",
		Flags: append(TUIReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "journal",
				Usage: "Journal file written by run --journal",
			},
			&cli.StringFlag{Name: "delivery-dataset", Usage: "Manifest dataset ID", Value: delivery.DefaultDataset},
			&cli.StringFlag{Name: "delivery-backend", Usage: "Delivery backend: fs or s3"},
			&cli.StringFlag{Name: "delivery-path", Usage: "Delivery path (fs: directory, s3: bucket/prefix)"},
			&cli.StringFlag{Name: "delivery-s3-region", Usage: "AWS region for S3 backend"},
			&cli.StringFlag{
				Name:    "application-id",
				Aliases: []string{"a"},
				Usage:   "Only show this application",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of entries to return, newest kept (0 = no limit)",
				Value: 0,
			},
		),
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	journalPath := c.String("journal")
	appID := strings.ToUpper(c.String("application-id"))
	backend := c.String("delivery-backend")
	path := c.String("delivery-path")

	switch {
	case journalPath != "" && (backend != "" || path != ""):
		return cli.Exit("use either --journal or --delivery-backend/--delivery-path, not both", exitFailure)
	case journalPath == "" && backend == "" && path == "":
		return cli.Exit("--journal or --delivery-backend with --delivery-path is required", exitFailure)
	case journalPath == "" && (backend == "" || path == ""):
		return cli.Exit("both --delivery-backend and --delivery-path are required for manifest reads", exitFailure)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if journalPath != "" {
		entries, err := journal.ReadAll(journalPath)
		if err != nil {
			return fmt.Errorf("failed to read journal: %w", err)
		}
		entries = limitTail(filterEntries(entries, appID), c.Int("limit"))
		warnLarge(len(entries), c.Int("limit"))

		if c.Bool("tui") {
			return r.RenderTUI(tui.ViewHistoryBatches, entries)
		}
		return r.Render(batchHistory(entries))
	}

	factory, err := delivery.NewFactory(c.Context, delivery.BackendConfig{
		Backend: backend,
		Path:    path,
		Region:  c.String("delivery-s3-region"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage reader: %w", err)
	}
	ds, err := delivery.NewManifestDataset(c.String("delivery-dataset"), factory)
	if err != nil {
		return fmt.Errorf("failed to initialize storage reader: %w", err)
	}

	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	records, err := delivery.ReadManifest(ctx, ds, appID)
	if err != nil {
		return fmt.Errorf("failed to read delivery manifest: %w", err)
	}
	records = limitTail(records, c.Int("limit"))
	warnLarge(len(records), c.Int("limit"))

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewHistoryDeliveries, records)
	}
	return r.Render(deliveryHistory(records))
}

func filterEntries(entries []journal.Entry, applicationID string) []journal.Entry {
	if applicationID == "" {
		return entries
	}
	var out []journal.Entry
	for _, e := range entries {
		if e.ApplicationID == applicationID {
			out = append(out, e)
		}
	}
	return out
}

// limitTail keeps the last n items (the newest); n <= 0 keeps everything.
func limitTail[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

// warnLarge warns if output is large and --limit was not specified
// (TTY only to avoid noise in pipelines).
func warnLarge(n, limit int) {
	if n > historyWarningThreshold && limit == 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: returning %d entries. Consider using --limit to reduce output.\n\n", n)
	}
}

// batchHistory renders journal entries with a compact table layout.
// JSON and YAML output carry the full entries.
type batchHistory []journal.Entry

func (h batchHistory) TableHeaders() []string {
	return []string{"STARTED", "BATCH", "APP", "STATUS", "FILES", "ROWS", "RUN_IDS", "ERROR"}
}

func (h batchHistory) TableRows() [][]string {
	rows := make([][]string, 0, len(h))
	for _, e := range h {
		rows = append(rows, []string{
			e.StartedAt.Format(time.RFC3339),
			e.BatchID,
			e.ApplicationID,
			e.Status,
			strconv.Itoa(len(e.Files)),
			strconv.Itoa(e.RowCount),
			formatRunIDs(e.RunIDs),
			e.ErrorKind,
		})
	}
	return rows
}

// deliveryHistory renders manifest records with a compact table layout.
type deliveryHistory []delivery.ManifestRecord

func (h deliveryHistory) TableHeaders() []string {
	return []string{"DELIVERED", "APP", "RUN_ID", "ROWS", "INPUT", "METADATA_KEY", "DETAILED_KEY"}
}

func (h deliveryHistory) TableRows() [][]string {
	rows := make([][]string, 0, len(h))
	for _, r := range h {
		rows = append(rows, []string{
			r.DeliveredAt,
			r.ApplicationID,
			r.RunID,
			strconv.Itoa(r.RowCount),
			r.Input,
			r.MetadataKey,
			r.DetailedKey,
		})
	}
	return rows
}

func formatRunIDs(ids []int) string {
	switch len(ids) {
	case 0:
		return "-"
	case 1:
		return strconv.Itoa(ids[0])
	default:
		return fmt.Sprintf("%d-%d", ids[0], ids[len(ids)-1])
	}
}
