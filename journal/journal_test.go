package journal

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/justapithecus/billingflatfile/batch"
	"github.com/justapithecus/billingflatfile/types"
)

func sampleResult() *batch.Result {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &batch.Result{
		BatchID:   "batch-1",
		Run:       types.RunContext{ApplicationID: "SA", RunDescription: "march", BillingType: types.BillingInternal, FileVersion: "V1.11"},
		OutputDir: "/data/out",
		RunIDs:    []int{12, 13},
		NextRunID: 14,
		Files: []batch.FileResult{
			{
				Input:        "/data/in/a.csv",
				RunID:        12,
				MetadataPath: "/data/out/SSA0012E",
				DetailedPath: "/data/out/SSA0012D",
				Conversion:   types.ConversionResult{RowCount: 5, OldestDate: "20260201", MostRecentDate: "20260228"},
			},
		},
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
	}
}

func TestFromResult(t *testing.T) {
	e := FromResult(sampleResult(), nil)

	if e.Version != EntryVersion || e.Status != StatusCompleted {
		t.Errorf("version/status = %d/%s", e.Version, e.Status)
	}
	if e.ApplicationID != "SA" || e.BillingType != "H" || e.NextRunID != 14 || e.RowCount != 5 {
		t.Errorf("entry = %+v", e)
	}
	if len(e.Files) != 1 || e.Files[0].RunID != "0012" || e.Files[0].MetadataFile != "SSA0012E" {
		t.Errorf("files = %+v", e.Files)
	}
	if e.ErrorKind != "" || e.Error != "" {
		t.Error("successful batch must not carry an error")
	}
}

func TestFromResult_Failed(t *testing.T) {
	err := types.Errorf(types.KindDetailedFileConflict, "the detailed file exists")
	e := FromResult(sampleResult(), err)

	if e.Status != StatusFailed {
		t.Errorf("Status = %q, want %q", e.Status, StatusFailed)
	}
	if e.ErrorKind != string(types.KindDetailedFileConflict) {
		t.Errorf("ErrorKind = %q", e.ErrorKind)
	}
	if e.Error != err.Error() {
		t.Errorf("Error = %q", e.Error)
	}
}

func TestAppendReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.bin")

	first := FromResult(sampleResult(), nil)
	second := first
	second.BatchID = "batch-2"
	second.Status = StatusFailed

	for _, e := range []Entry{first, second} {
		if err := Append(path, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].BatchID != "batch-1" || entries[1].BatchID != "batch-2" {
		t.Errorf("order = %s, %s", entries[0].BatchID, entries[1].BatchID)
	}
	if !entries[0].StartedAt.Equal(first.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", entries[0].StartedAt, first.StartedAt)
	}
	if entries[0].Files[0].OldestDate != "20260201" {
		t.Errorf("file entry = %+v", entries[0].Files[0])
	}
}

func TestReadAll_Missing(t *testing.T) {
	if _, err := ReadAll(filepath.Join(t.TempDir(), "none")); err == nil {
		t.Fatal("expected error for missing journal")
	}
}

func TestRead_TruncatedTail(t *testing.T) {
	frame, err := EncodeFrame(FromResult(sampleResult(), nil))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	buf.Write(frame)
	buf.Write(frame[:len(frame)/2])

	entries, err := Read(&buf)
	if !IsPartialFrame(err) {
		t.Fatalf("expected partial frame error, got %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries before truncation = %d, want 1", len(entries))
	}
}

func TestRead_Empty(t *testing.T) {
	entries, err := Read(bytes.NewReader(nil))
	if err != nil || len(entries) != 0 {
		t.Errorf("Read(empty) = %v, %v", entries, err)
	}
}

func TestReadFrame_TooLarge(t *testing.T) {
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], MaxPayloadSize+1)

	_, err := NewFrameDecoder(bytes.NewReader(prefix[:])).ReadFrame()
	fe, ok := err.(*FrameError)
	if !ok || fe.Kind != FrameErrorTooLarge {
		t.Fatalf("expected too-large frame error, got %v", err)
	}
}

func TestReadFrame_TruncatedPrefix(t *testing.T) {
	_, err := NewFrameDecoder(bytes.NewReader([]byte{0, 0})).ReadFrame()
	if !IsPartialFrame(err) {
		t.Fatalf("expected partial frame error, got %v", err)
	}
}

func TestReadFrame_PrefixWithoutPayload(t *testing.T) {
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], 10)

	_, err := NewFrameDecoder(bytes.NewReader(prefix[:])).ReadFrame()
	if !IsPartialFrame(err) {
		t.Fatalf("expected partial frame error, got %v", err)
	}
}

func TestDecodeEntry_Malformed(t *testing.T) {
	_, err := DecodeEntry([]byte{0xc1})
	fe, ok := err.(*FrameError)
	if !ok || fe.Kind != FrameErrorDecode {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestFrameError_Message(t *testing.T) {
	e := &FrameError{Kind: FrameErrorDecode, Msg: "bad", Err: os.ErrClosed}
	if e.Error() != "bad: "+os.ErrClosed.Error() {
		t.Errorf("Error() = %q", e.Error())
	}
	if (&FrameError{Msg: "plain"}).Error() != "plain" {
		t.Error("message without cause should be the bare message")
	}
}
