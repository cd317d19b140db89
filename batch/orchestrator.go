// Package batch converts a set of input files into metadata and detailed
// billing file pairs.
//
// A batch allocates every run id up front, checks that no output would be
// clobbered, then converts the inputs one at a time in name order. The run
// id counter is only advanced once every file is written.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/justapithecus/billingflatfile/convert"
	"github.com/justapithecus/billingflatfile/iox"
	"github.com/justapithecus/billingflatfile/log"
	"github.com/justapithecus/billingflatfile/metrics"
	"github.com/justapithecus/billingflatfile/record"
	"github.com/justapithecus/billingflatfile/runid"
	"github.com/justapithecus/billingflatfile/types"
)

// Sequencer abstracts run id allocation for testing.
type Sequencer interface {
	Allocate(n int) (runid.Assignment, error)
	Commit(a runid.Assignment) error
}

// Verify runid.Sequencer implements Sequencer.
var _ Sequencer = (*runid.Sequencer)(nil)

// Config configures a single batch.
type Config struct {
	// BatchID identifies the batch. If empty, a UUID is generated.
	BatchID string
	// Run is the validated run context shared by every metadata record.
	Run types.RunContext
	// Input is an input file or a directory of input files.
	Input string
	// OutputDir receives the file pairs. It is created if missing.
	OutputDir string
	// LayoutPath is the converter field layout.
	LayoutPath string
	// Delimiter and Quote control input parsing.
	Delimiter rune
	Quote     rune
	// SkipHeader and SkipFooter drop leading and trailing input rows.
	SkipHeader int
	SkipFooter int
	// DateReportColumn selects the reported date field. Nil disables it.
	DateReportColumn *int
	// Locale resolves month names in dates.
	Locale convert.DateLocale
	// Overwrite allows existing outputs and moved inputs to be replaced.
	Overwrite bool
	// TxtExtension appends .txt to output names.
	TxtExtension bool
	// MoveInput moves each consumed input into OutputDir.
	MoveInput bool
	// Sequencer allocates run ids. Required.
	Sequencer Sequencer
	// Converter produces detailed files. Required.
	Converter convert.Converter
	// Logger receives progress. If nil, nothing is logged.
	Logger *log.Logger
	// Collector records batch counters. If nil, no metrics are recorded
	// (all Collector methods are nil-safe).
	Collector *metrics.Collector
}

// Orchestrator runs one batch.
type Orchestrator struct {
	config *Config
	logger *log.Logger
	now    func() time.Time
}

// NewOrchestrator creates a batch orchestrator.
// Returns error if a required collaborator is missing.
func NewOrchestrator(config *Config) (*Orchestrator, error) {
	if config.Sequencer == nil {
		return nil, errors.New("batch: sequencer is required")
	}
	if config.Converter == nil {
		return nil, errors.New("batch: converter is required")
	}
	if config.Input == "" {
		return nil, errors.New("batch: input path is required")
	}
	if config.OutputDir == "" {
		return nil, errors.New("batch: output directory is required")
	}
	if config.BatchID == "" {
		config.BatchID = uuid.NewString()
	}

	logger := config.Logger
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.With(log.Context{BatchID: config.BatchID, ApplicationID: config.Run.ApplicationID})

	return &Orchestrator{config: config, logger: logger, now: time.Now}, nil
}

// plannedFile is one input with its resolved output locations.
type plannedFile struct {
	input    string
	runID    int
	metadata string
	detailed string
	moveTo   string
}

// Execute runs the batch end-to-end.
//
// Execution flow:
//  1. Resolve and sort input files
//  2. Allocate run ids
//  3. Check every output and move target for conflicts
//  4. Create the output directory
//  5. Convert, write metadata, move input, per file
//  6. Commit the run id counter
//
// Steps 1 to 3 touch nothing on disk, so an allocation or conflict failure
// leaves the filesystem as it was.
//
// The returned Result is non-nil whenever inputs were resolved, including
// on failure, and lists the files completed so far.
func (o *Orchestrator) Execute(ctx context.Context) (*Result, error) {
	cfg := o.config
	cfg.Collector.IncBatchStarted()

	result := &Result{
		BatchID:   cfg.BatchID,
		Run:       cfg.Run,
		OutputDir: cfg.OutputDir,
		StartedAt: o.now(),
	}

	fail := func(err error) (*Result, error) {
		cfg.Collector.IncBatchFailed()
		result.FinishedAt = o.now()
		result.Metrics = cfg.Collector.Snapshot()
		o.logger.Error("batch failed", map[string]any{
			"kind":  string(types.KindOf(err)),
			"error": err.Error(),
			"files": len(result.Files),
		})
		return result, err
	}

	inputs, err := ResolveInputs(cfg.Input)
	if err != nil {
		return fail(err)
	}
	o.logger.Info("starting batch", map[string]any{
		"input":      cfg.Input,
		"files":      len(inputs),
		"output_dir": cfg.OutputDir,
	})

	assignment, err := cfg.Sequencer.Allocate(len(inputs))
	if err != nil {
		return fail(err)
	}
	result.RunIDs = assignment.IDs
	result.NextRunID = assignment.Next()
	cfg.Collector.AddRunIDsAssigned(len(assignment.IDs))

	plan := o.plan(inputs, assignment)
	if err := o.preflight(plan); err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fail(fmt.Errorf("cannot create output directory %q: %w", cfg.OutputDir, err))
	}

	for _, pf := range plan {
		if err := ctx.Err(); err != nil {
			return fail(types.Wrap(types.KindCanceled, err, "batch canceled before %q", pf.input))
		}
		fr, err := o.processFile(ctx, pf)
		if err != nil {
			cfg.Collector.IncFileFailed()
			return fail(err)
		}
		cfg.Collector.IncFileConverted(fr.Conversion.RowCount)
		result.Files = append(result.Files, fr)
	}

	if err := cfg.Sequencer.Commit(assignment); err != nil {
		return fail(fmt.Errorf("files written but the run id file was not updated: %w", err))
	}

	cfg.Collector.IncBatchCompleted()
	result.FinishedAt = o.now()
	result.Metrics = cfg.Collector.Snapshot()
	o.logger.Info("batch completed", map[string]any{
		"files":       len(result.Files),
		"rows":        result.RowCount(),
		"next_run_id": result.NextRunID,
		"duration_ms": result.Duration().Milliseconds(),
	})
	return result, nil
}

func (o *Orchestrator) plan(inputs []string, a runid.Assignment) []plannedFile {
	cfg := o.config
	plan := make([]plannedFile, len(inputs))
	for i, in := range inputs {
		meta, det := OutputNames(cfg.Run.ApplicationID, a.IDs[i], cfg.TxtExtension)
		pf := plannedFile{
			input:    in,
			runID:    a.IDs[i],
			metadata: filepath.Join(cfg.OutputDir, meta),
			detailed: filepath.Join(cfg.OutputDir, det),
		}
		if cfg.MoveInput && !sameDir(in, cfg.OutputDir) {
			pf.moveTo = filepath.Join(cfg.OutputDir, filepath.Base(in))
		}
		plan[i] = pf
	}
	return plan
}

// preflight rejects the batch before anything is written when an output
// or move target already exists and overwriting is not allowed.
func (o *Orchestrator) preflight(plan []plannedFile) error {
	if o.config.Overwrite {
		return nil
	}
	for _, pf := range plan {
		checks := []struct {
			path string
			kind types.ErrorKind
			what string
		}{
			{pf.metadata, types.KindMetadataFileConflict, "metadata"},
			{pf.detailed, types.KindDetailedFileConflict, "detailed"},
			{pf.moveTo, types.KindMoveConflict, "moved input"},
		}
		for _, c := range checks {
			if c.path == "" {
				continue
			}
			found, err := exists(c.path)
			if err != nil {
				return types.Wrap(c.kind, err, "cannot check %s file %q", c.what, c.path)
			}
			if found {
				return types.Errorf(c.kind,
					"the %s file %q already exists, use `--overwrite-files` to replace it", c.what, c.path)
			}
		}
	}
	return nil
}

func (o *Orchestrator) processFile(ctx context.Context, pf plannedFile) (FileResult, error) {
	cfg := o.config
	logger := o.logger.With(log.Context{RunID: runid.FilenameID(pf.runID)})
	fr := FileResult{
		Input:        pf.input,
		RunID:        pf.runID,
		MetadataPath: pf.metadata,
		DetailedPath: pf.detailed,
	}

	logger.Debug("converting file", map[string]any{
		"input":    pf.input,
		"detailed": pf.detailed,
	})
	conv, err := cfg.Converter.Process(ctx, convert.Request{
		InputPath:        pf.input,
		OutputPath:       pf.detailed,
		LayoutPath:       cfg.LayoutPath,
		Delimiter:        cfg.Delimiter,
		QuoteChar:        cfg.Quote,
		SkipHeader:       cfg.SkipHeader,
		SkipFooter:       cfg.SkipFooter,
		DateReportColumn: cfg.DateReportColumn,
		Locale:           cfg.Locale,
	})
	if err != nil {
		if types.KindOf(err) == types.KindUnknown {
			err = types.Wrap(types.KindConverterFailure, err, "cannot convert %q", pf.input)
		}
		return fr, err
	}
	fr.Conversion = conv

	rec, err := record.BuildFor(cfg.Run, conv, pf.runID)
	if err != nil {
		return fr, err
	}
	if err := iox.WriteFileAtomic(pf.metadata, []byte(rec), 0o644); err != nil {
		return fr, fmt.Errorf("cannot write metadata file %q: %w", pf.metadata, err)
	}

	if pf.moveTo != "" {
		if err := moveFile(pf.input, pf.moveTo); err != nil {
			return fr, fmt.Errorf("cannot move %q to %q: %w", pf.input, pf.moveTo, err)
		}
		fr.MovedTo = pf.moveTo
	}

	logger.Info("file converted", map[string]any{
		"input":            pf.input,
		"rows":             conv.RowCount,
		"oldest_date":      conv.OldestDate,
		"most_recent_date": conv.MostRecentDate,
	})
	return fr, nil
}
