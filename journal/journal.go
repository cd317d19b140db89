// Package journal keeps an append-only log of batches.
//
// Each batch, successful or not, is appended as one length-prefixed msgpack
// frame. The history command reads the frames back in order.
package journal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/justapithecus/billingflatfile/batch"
	"github.com/justapithecus/billingflatfile/iox"
	"github.com/justapithecus/billingflatfile/runid"
	"github.com/justapithecus/billingflatfile/types"
)

// EntryVersion is the current entry layout version.
const EntryVersion = 1

// Entry statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// FileEntry summarizes one processed file.
type FileEntry struct {
	Input          string `msgpack:"input" json:"input" yaml:"input"`
	RunID          string `msgpack:"run_id" json:"run_id" yaml:"run_id"`
	MetadataFile   string `msgpack:"metadata_file" json:"metadata_file" yaml:"metadata_file"`
	DetailedFile   string `msgpack:"detailed_file" json:"detailed_file" yaml:"detailed_file"`
	RowCount       int    `msgpack:"row_count" json:"row_count" yaml:"row_count"`
	OldestDate     string `msgpack:"oldest_date" json:"oldest_date" yaml:"oldest_date"`
	MostRecentDate string `msgpack:"most_recent_date" json:"most_recent_date" yaml:"most_recent_date"`
}

// Entry is one journal record.
type Entry struct {
	Version        int         `msgpack:"version" json:"version" yaml:"version"`
	BatchID        string      `msgpack:"batch_id" json:"batch_id" yaml:"batch_id"`
	Status         string      `msgpack:"status" json:"status" yaml:"status"`
	ApplicationID  string      `msgpack:"application_id" json:"application_id" yaml:"application_id"`
	RunDescription string      `msgpack:"run_description" json:"run_description" yaml:"run_description"`
	BillingType    string      `msgpack:"billing_type" json:"billing_type" yaml:"billing_type"`
	FileVersion    string      `msgpack:"file_version" json:"file_version" yaml:"file_version"`
	OutputDir      string      `msgpack:"output_dir" json:"output_dir" yaml:"output_dir"`
	RunIDs         []int       `msgpack:"run_ids" json:"run_ids" yaml:"run_ids"`
	NextRunID      int         `msgpack:"next_run_id" json:"next_run_id" yaml:"next_run_id"`
	RowCount       int         `msgpack:"row_count" json:"row_count" yaml:"row_count"`
	Files          []FileEntry `msgpack:"files" json:"files" yaml:"files"`
	ErrorKind      string      `msgpack:"error_kind,omitempty" json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error          string      `msgpack:"error,omitempty" json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt      time.Time   `msgpack:"started_at" json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time   `msgpack:"finished_at" json:"finished_at" yaml:"finished_at"`
}

// FromResult builds the entry for a batch. batchErr is the error Execute
// returned, if any.
func FromResult(res *batch.Result, batchErr error) Entry {
	e := Entry{
		Version:        EntryVersion,
		BatchID:        res.BatchID,
		Status:         StatusCompleted,
		ApplicationID:  res.Run.ApplicationID,
		RunDescription: res.Run.RunDescription,
		BillingType:    string(res.Run.BillingType),
		FileVersion:    res.Run.FileVersion,
		OutputDir:      res.OutputDir,
		RunIDs:         res.RunIDs,
		NextRunID:      res.NextRunID,
		RowCount:       res.RowCount(),
		StartedAt:      res.StartedAt.UTC(),
		FinishedAt:     res.FinishedAt.UTC(),
	}
	for _, f := range res.Files {
		e.Files = append(e.Files, FileEntry{
			Input:          f.Input,
			RunID:          runid.FilenameID(f.RunID),
			MetadataFile:   filepath.Base(f.MetadataPath),
			DetailedFile:   filepath.Base(f.DetailedPath),
			RowCount:       f.Conversion.RowCount,
			OldestDate:     f.Conversion.OldestDate,
			MostRecentDate: f.Conversion.MostRecentDate,
		})
	}
	if batchErr != nil {
		e.Status = StatusFailed
		e.ErrorKind = string(types.KindOf(batchErr))
		e.Error = batchErr.Error()
	}
	return e
}

// Append adds e to the journal at path, creating the file and its parent
// directory if needed. The frame is written with a single write call.
func Append(path string, e Entry) error {
	frame, err := EncodeFrame(e)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create journal directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open journal %q: %w", path, err)
	}
	defer iox.DiscardClose(f)

	if _, err := f.Write(frame); err != nil {
		return fmt.Errorf("cannot append to journal %q: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("cannot sync journal %q: %w", path, err)
	}
	return f.Close()
}

// ReadAll returns every entry of the journal at path in append order.
// On a decoding error the entries read so far are returned with the error;
// a truncated final frame is reported with IsPartialFrame.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open journal %q: %w", path, err)
	}
	defer iox.DiscardClose(f)
	return Read(f)
}

// Read decodes entries from r until EOF.
func Read(r io.Reader) ([]Entry, error) {
	dec := NewFrameDecoder(r)
	var entries []Entry
	for {
		payload, err := dec.ReadFrame()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		e, err := DecodeEntry(payload)
		if err != nil {
			return entries, err
		}
		entries = append(entries, *e)
	}
}
