package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/justapithecus/billingflatfile/delivery"
	"github.com/justapithecus/billingflatfile/journal"
	"github.com/justapithecus/billingflatfile/record"
)

// runFixtureBatch converts the fixture batch with a journal and fs delivery
// and returns the journal path and delivery directory.
func runFixtureBatch(t *testing.T, f batchFixture) (string, string) {
	t.Helper()
	journalPath := filepath.Join(f.dir, "journal.bin")
	deliveryDir := filepath.Join(f.dir, "delivered")
	err := newTestApp(io.Discard).Run(f.args(
		"--journal", journalPath,
		"--delivery-backend", "fs",
		"--delivery-path", deliveryDir,
	))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return journalPath, deliveryDir
}

func TestInspectCommand_JSON(t *testing.T) {
	f := newBatchFixture(t)
	runFixtureBatch(t, f)

	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"billingflatfile", "inspect", "--format", "json",
		filepath.Join(f.outputDir, "SSA0018E")})
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	var md record.Metadata
	if err := json.Unmarshal(out.Bytes(), &md); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if md.ApplicationID != "SA" || md.RunID != 18 || md.RowCount != 1 {
		t.Errorf("metadata = %+v", md)
	}
}

func TestInspectCommand_TrailingNewline(t *testing.T) {
	f := newBatchFixture(t)
	runFixtureBatch(t, f)

	src := filepath.Join(f.outputDir, "SSA0017E")
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	edited := filepath.Join(f.dir, "edited")
	mustWrite(t, edited, string(data)+"\n")

	if _, err := readMetadataFile(edited); err != nil {
		t.Errorf("trailing newline should be tolerated: %v", err)
	}
}

func TestInspectCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	short := filepath.Join(dir, "short")
	mustWrite(t, short, "SA")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing argument", nil, exitFailure},
		{"file not found", []string{filepath.Join(dir, "nope")}, exitInputNotFound},
		{"malformed record", []string{short}, exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"billingflatfile", "inspect"}, tt.args...)
			err := newTestApp(io.Discard).Run(args)
			if got := exitCodeOf(err); got != tt.want {
				t.Errorf("exit code = %d, want %d (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestHistoryCommand_Journal(t *testing.T) {
	f := newBatchFixture(t)
	journalPath, _ := runFixtureBatch(t, f)

	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"billingflatfile", "history", "--format", "json", "--journal", journalPath})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}

	var entries []journal.Entry
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Status != journal.StatusCompleted || entries[0].NextRunID != 19 {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestHistoryCommand_JournalFilterAndTable(t *testing.T) {
	f := newBatchFixture(t)
	journalPath, _ := runFixtureBatch(t, f)

	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"billingflatfile", "history", "--format", "table",
		"--journal", journalPath, "--application-id", "zz"})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if strings.Contains(out.String(), "completed") {
		t.Errorf("entry for SA should be filtered out:\n%s", out.String())
	}
}

func TestHistoryCommand_DeliveryManifest(t *testing.T) {
	f := newBatchFixture(t)
	_, deliveryDir := runFixtureBatch(t, f)

	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"billingflatfile", "history", "--format", "json",
		"--delivery-backend", "fs", "--delivery-path", deliveryDir})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}

	var records []delivery.ManifestRecord
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ApplicationID != "SA" || records[0].MetadataKey != "SA/0017/SSA0017E" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestHistoryCommand_SourceFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no source", nil},
		{"both sources", []string{"--journal", "j", "--delivery-backend", "fs", "--delivery-path", "d"}},
		{"backend without path", []string{"--delivery-backend", "fs"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"billingflatfile", "history"}, tt.args...)
			err := newTestApp(io.Discard).Run(args)
			if got := exitCodeOf(err); got != exitFailure {
				t.Errorf("exit code = %d, want %d (err: %v)", got, exitFailure, err)
			}
		})
	}
}

func TestLimitTail(t *testing.T) {
	items := []int{1, 2, 3, 4}
	tests := []struct {
		n    int
		want []int
	}{
		{0, []int{1, 2, 3, 4}},
		{2, []int{3, 4}},
		{10, []int{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		got := limitTail(items, tt.n)
		if len(got) != len(tt.want) || got[0] != tt.want[0] {
			t.Errorf("limitTail(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestFormatRunIDs(t *testing.T) {
	tests := []struct {
		ids  []int
		want string
	}{
		{nil, "-"},
		{[]int{7}, "7"},
		{[]int{17, 18, 19}, "17-19"},
	}
	for _, tt := range tests {
		if got := formatRunIDs(tt.ids); got != tt.want {
			t.Errorf("formatRunIDs(%v) = %q, want %q", tt.ids, got, tt.want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	if err := newTestApp(&out).Run([]string{"billingflatfile", "version", "--format", "json"}); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	var resp VersionResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if resp.Commit != "test" || len(resp.FileVersions) == 0 || resp.FileVersions[0] != "V1.11" {
		t.Errorf("version = %+v", resp)
	}
}

func TestVersionCommand_RejectsTUI(t *testing.T) {
	err := newTestApp(io.Discard).Run([]string{"billingflatfile", "version", "--tui"})
	if got := exitCodeOf(err); got != exitFailure {
		t.Errorf("exit code = %d, want %d", got, exitFailure)
	}
}
