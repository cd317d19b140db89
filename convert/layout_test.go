package convert

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/justapithecus/billingflatfile/types"
)

func TestLoadLayout_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "layout.yaml", sampleLayout)

	l, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if len(l.Fields) != 5 {
		t.Fatalf("fields = %d, want 5", len(l.Fields))
	}
	if got := l.RecordLength(); got != 31 {
		t.Errorf("RecordLength = %d, want 31", got)
	}
	if !l.Fields[3].Skip {
		t.Error("Internal note should be skipped")
	}
}

func TestLoadLayout_NotFound(t *testing.T) {
	_, err := LoadLayout(filepath.Join(t.TempDir(), "missing.yaml"))
	if !types.IsKind(err, types.KindLayoutNotFound) {
		t.Fatalf("expected layout not found, got %v", err)
	}
}

func TestLoadLayout_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"bad yaml", "fields: [", "invalid YAML"},
		{"no fields", "fields: []", "at least one field"},
		{"missing name", "fields:\n  - length: 3\n    format: text\n", "name is required"},
		{"duplicate", "fields:\n  - {name: A, length: 1, format: text}\n  - {name: A, length: 1, format: text}\n", "duplicate"},
		{"zero length", "fields:\n  - {name: A, length: 0, format: text}\n", "length must be > 0"},
		{"unknown format", "fields:\n  - {name: A, length: 3, format: money}\n", "unsupported format"},
		{"missing format", "fields:\n  - {name: A, length: 3}\n", "format is required"},
		{"bad date format", "fields:\n  - {name: A, length: 8, format: date, input_format: YYYY}\n", "unsupported date input_format"},
		{"bad time format", "fields:\n  - {name: A, length: 4, format: time, input_format: HH}\n", "unsupported time input_format"},
		{"negative decimals", "fields:\n  - {name: A, length: 4, format: decimal, decimals: -1}\n", "decimals must be >= 0"},
		{"divert unknown", "fields:\n  - {name: A, length: 4, format: text, divert: {match: x, to: B}}\n", "is not a field"},
		{"divert self", "fields:\n  - {name: A, length: 4, format: text, divert: {match: x, to: A}}\n", "another field"},
		{"divert skipped", "fields:\n  - {name: A, length: 4, format: text, divert: {match: x, to: B}}\n  - {name: B, skip: true}\n", "is skipped"},
		{"divert bad regex", "fields:\n  - {name: A, length: 4, format: text, divert: {match: '(', to: B}}\n  - {name: B, length: 4, format: text}\n", "invalid divert match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "layout.yaml", tt.yaml)
			_, err := LoadLayout(path)
			if !types.IsKind(err, types.KindLayoutInvalid) {
				t.Fatalf("expected layout invalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
