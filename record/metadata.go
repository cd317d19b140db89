package record

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/justapithecus/billingflatfile/types"
)

// MetadataLength is the fixed length of a metadata record.
const MetadataLength = 200

// slot describes one field of the metadata layout.
type slot struct {
	name   string
	kind   Kind
	length int
}

// metadataLayout is the V1.11 layout, in record order.
var metadataLayout = []slot{
	{"application_id", Alphanumeric, 3},
	{"run_description", Alphanumeric, 30},
	{"oldest_date", Numeric, 8},
	{"most_recent_date", Numeric, 8},
	{"billing_type", Alphanumeric, 1},
	{"num_input_rows", Numeric, 6},
	{"run_id", Numeric, 5},
	{"file_version", Alphanumeric, 8},
	{"filler", Alphanumeric, 131},
}

// Metadata holds the decoded fields of a metadata record.
type Metadata struct {
	ApplicationID  string `json:"application_id" yaml:"application_id"`
	RunDescription string `json:"run_description" yaml:"run_description"`
	OldestDate     string `json:"oldest_date" yaml:"oldest_date"`
	MostRecentDate string `json:"most_recent_date" yaml:"most_recent_date"`
	BillingType    string `json:"billing_type" yaml:"billing_type"`
	RowCount       int    `json:"row_count" yaml:"row_count"`
	RunID          int    `json:"run_id" yaml:"run_id"`
	FileVersion    string `json:"file_version" yaml:"file_version"`
}

// BuildMetadata encodes the 200-character metadata record describing one
// detailed file. The file version is checked before any field is encoded.
func BuildMetadata(
	applicationID, runDescription, oldestDate, mostRecentDate, billingType string,
	rowCount any, runID any, fileVersion string,
) (string, error) {
	if !types.IsSupportedFileVersion(fileVersion) {
		return "", types.Errorf(types.KindUnsupportedFileVersion,
			"unsupported output file version '%s', must be one of '%s'",
			fileVersion, strings.Join(types.SupportedFileVersions, "', '"))
	}

	values := []any{
		"S" + applicationID,
		runDescription,
		oldestDate,
		mostRecentDate,
		billingType,
		rowCount,
		runID,
		fileVersion,
		"",
	}

	var b strings.Builder
	b.Grow(MetadataLength)
	for i, s := range metadataLayout {
		enc, err := Encode(values[i], s.kind, s.length, s.name)
		if err != nil {
			return "", err
		}
		b.WriteString(enc)
	}
	return b.String(), nil
}

// BuildFor encodes the metadata record for one converted file of a batch.
func BuildFor(rc types.RunContext, res types.ConversionResult, runID int) (string, error) {
	return BuildMetadata(
		rc.ApplicationID,
		rc.RunDescription,
		res.OldestDate,
		res.MostRecentDate,
		string(rc.BillingType),
		res.RowCount,
		runID,
		rc.FileVersion,
	)
}

// ParseMetadata decodes a metadata record produced by BuildMetadata.
func ParseMetadata(rec string) (*Metadata, error) {
	if n := utf8.RuneCountInString(rec); n != MetadataLength {
		return nil, types.Errorf(types.KindInvalidMetadataRecord,
			"metadata record must be %d characters, got %d", MetadataLength, n)
	}

	runes := []rune(rec)
	fields := make([]string, len(metadataLayout))
	pos := 0
	for i, s := range metadataLayout {
		fields[i] = string(runes[pos : pos+s.length])
		pos += s.length
	}

	if !strings.HasPrefix(fields[0], "S") {
		return nil, types.Errorf(types.KindInvalidMetadataRecord,
			"metadata record must start with 'S', got %q", fields[0][:1])
	}

	rowCount, err := strconv.Atoi(fields[5])
	if err != nil {
		return nil, types.Wrap(types.KindInvalidMetadataRecord, err, "invalid row count %q", fields[5])
	}
	runID, err := strconv.Atoi(fields[6])
	if err != nil {
		return nil, types.Wrap(types.KindInvalidMetadataRecord, err, "invalid run id %q", fields[6])
	}

	return &Metadata{
		ApplicationID:  strings.TrimRight(fields[0][1:], " "),
		RunDescription: strings.TrimRight(fields[1], " "),
		OldestDate:     fields[2],
		MostRecentDate: fields[3],
		BillingType:    fields[4],
		RowCount:       rowCount,
		RunID:          runID,
		FileVersion:    strings.TrimRight(fields[7], " "),
	}, nil
}
