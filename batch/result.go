package batch

import (
	"time"

	"github.com/justapithecus/billingflatfile/metrics"
	"github.com/justapithecus/billingflatfile/types"
)

// FileResult describes one processed input file.
type FileResult struct {
	// Input is the input path as it was before any move.
	Input string `json:"input" yaml:"input" msgpack:"input"`
	// RunID is the run id assigned to this file.
	RunID int `json:"run_id" yaml:"run_id" msgpack:"run_id"`
	// MetadataPath is the written metadata (E) file.
	MetadataPath string `json:"metadata_path" yaml:"metadata_path" msgpack:"metadata_path"`
	// DetailedPath is the written detailed (D) file.
	DetailedPath string `json:"detailed_path" yaml:"detailed_path" msgpack:"detailed_path"`
	// Conversion is what the converter reported.
	Conversion types.ConversionResult `json:"conversion" yaml:"conversion" msgpack:"conversion"`
	// MovedTo is the new input location when the input was moved, else "".
	MovedTo string `json:"moved_to,omitempty" yaml:"moved_to,omitempty" msgpack:"moved_to,omitempty"`
}

// Result describes a batch. On failure it holds the files completed before
// the failing one; those are not rolled back.
type Result struct {
	// BatchID uniquely identifies this batch invocation.
	BatchID string `json:"batch_id" yaml:"batch_id" msgpack:"batch_id"`
	// Run is the run context shared by every file.
	Run types.RunContext `json:"run" yaml:"run" msgpack:"run"`
	// OutputDir is the directory the file pairs were written to.
	OutputDir string `json:"output_dir" yaml:"output_dir" msgpack:"output_dir"`
	// RunIDs holds the full assignment, one id per input file.
	RunIDs []int `json:"run_ids" yaml:"run_ids" msgpack:"run_ids"`
	// NextRunID is the first id not used by this batch.
	NextRunID int `json:"next_run_id" yaml:"next_run_id" msgpack:"next_run_id"`
	// Files lists the completed files in processing order.
	Files []FileResult `json:"files" yaml:"files" msgpack:"files"`
	// StartedAt and FinishedAt bound the batch.
	StartedAt  time.Time `json:"started_at" yaml:"started_at" msgpack:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at" msgpack:"finished_at"`
	// Metrics is the collector snapshot taken when the batch ended.
	Metrics metrics.Snapshot `json:"-" yaml:"-" msgpack:"-"`
}

// Duration returns how long the batch ran.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RowCount returns the total rows converted across all files.
func (r *Result) RowCount() int {
	n := 0
	for _, f := range r.Files {
		n += f.Conversion.RowCount
	}
	return n
}
