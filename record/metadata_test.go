package record

import (
	"strings"
	"testing"

	"github.com/justapithecus/billingflatfile/types"
)

func TestBuildMetadata(t *testing.T) {
	got, err := BuildMetadata("AA", "BB", "20200620", "20201129", "E", "17", "345", "V1.11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "SAABB" + strings.Repeat(" ", 28) + "2020062020201129E00001700345V1.11" + strings.Repeat(" ", 131)
	if got != want {
		t.Errorf("record mismatch\n got: %q\nwant: %q", got, want)
	}
	if len(got) != MetadataLength {
		t.Errorf("len = %d, want %d", len(got), MetadataLength)
	}
}

func TestBuildMetadata_UnsupportedVersion(t *testing.T) {
	// A too-long application id would fail encoding; the version check must win.
	_, err := BuildMetadata("TOOLONG", "BB", "20200620", "20201129", "E", "17", "345", "V1.10")
	if !types.IsKind(err, types.KindUnsupportedFileVersion) {
		t.Fatalf("expected unsupported file version, got %v", err)
	}
	if !strings.Contains(err.Error(), "'V1.10'") {
		t.Errorf("message should name the version, got %q", err.Error())
	}
}

func TestBuildMetadata_FieldErrorsPropagate(t *testing.T) {
	tests := []struct {
		name string
		desc string
		rows any
		want types.ErrorKind
	}{
		{"description too long", strings.Repeat("x", 31), 1, types.KindFieldTooLong},
		{"row count too long", "", 1234567, types.KindFieldTooLong},
		{"row count non-numeric", "", "12a", types.KindNonNumericField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildMetadata("AA", tt.desc, "20200620", "20201129", "E", tt.rows, 1, "V1.11")
			if !types.IsKind(err, tt.want) {
				t.Errorf("got %v, want kind %q", err, tt.want)
			}
		})
	}
}

func TestBuildMetadata_AlwaysFixedLength(t *testing.T) {
	descs := []string{"", "a", strings.Repeat("z", 30)}
	for _, d := range descs {
		for _, rows := range []int{0, 5, 999999} {
			got, err := BuildMetadata("X1", d, "00000000", "99991231", " ", rows, 99999, "V1.11")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != MetadataLength {
				t.Errorf("len = %d, want %d", len(got), MetadataLength)
			}
		}
	}
}

func TestBuildFor(t *testing.T) {
	rc := types.RunContext{
		ApplicationID:  "SE",
		RunDescription: "Monthly run",
		BillingType:    types.BillingInternal,
		FileVersion:    "V1.11",
	}
	res := types.ConversionResult{RowCount: 3, OldestDate: "20210101", MostRecentDate: "20210131"}

	got, err := BuildFor(rc, res, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "SSEMonthly run") {
		t.Errorf("unexpected prefix: %q", got[:20])
	}
	if got[50:61] != "00000300042" {
		t.Errorf("row count/run id slot = %q", got[50:61])
	}
}

func TestParseMetadata_RoundTrip(t *testing.T) {
	rec, err := BuildMetadata("AA", "Invoices Q1", "20200620", "20201129", "E", 17, 345, "V1.11")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	m, err := ParseMetadata(rec)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := Metadata{
		ApplicationID:  "AA",
		RunDescription: "Invoices Q1",
		OldestDate:     "20200620",
		MostRecentDate: "20201129",
		BillingType:    "E",
		RowCount:       17,
		RunID:          345,
		FileVersion:    "V1.11",
	}
	if *m != want {
		t.Errorf("got %+v, want %+v", *m, want)
	}
}

func TestParseMetadata_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rec  string
	}{
		{"short", "SAA"},
		{"long", strings.Repeat(" ", 201)},
		{"no marker", "X" + strings.Repeat(" ", 199)},
		{"bad row count", "SAA" + strings.Repeat(" ", 30) + "2020062020201129E" + "abcdef" + "00001" + "V1.11   " + strings.Repeat(" ", 131)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata(tt.rec)
			if !types.IsKind(err, types.KindInvalidMetadataRecord) {
				t.Errorf("got %v, want invalid metadata record", err)
			}
		})
	}
}
