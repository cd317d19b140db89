package types

import (
	"regexp"
	"strings"
)

// SupportedFileVersions lists the metadata layout versions the receiving
// application accepts.
var SupportedFileVersions = []string{"V1.11"}

// DefaultFileVersion is the metadata layout version used when none is given.
const DefaultFileVersion = "V1.11"

// MaxRunDescription is the maximum length of a run description.
const MaxRunDescription = 30

// BillingType distinguishes internal, external and unspecified billing.
type BillingType string

const (
	BillingInternal    BillingType = "H"
	BillingExternal    BillingType = "E"
	BillingUnspecified BillingType = " "
)

var applicationIDPattern = regexp.MustCompile(`^[A-Z0-9]{2}$`)

// RunContext holds the per-invocation values written into every metadata
// record of a batch. It is not modified once the batch starts.
type RunContext struct {
	// ApplicationID identifies the billing site/application pair (2 chars).
	ApplicationID string `json:"application_id" yaml:"application_id" msgpack:"application_id"`
	// RunDescription is free text, at most 30 characters.
	RunDescription string `json:"run_description" yaml:"run_description" msgpack:"run_description"`
	// BillingType is H, E or a single space.
	BillingType BillingType `json:"billing_type" yaml:"billing_type" msgpack:"billing_type"`
	// FileVersion is the declared metadata layout version.
	FileVersion string `json:"file_version" yaml:"file_version" msgpack:"file_version"`
}

// NormalizeApplicationID upper-cases id and checks it is two characters
// from A-Z or 0-9.
func NormalizeApplicationID(id string) (string, error) {
	id = strings.ToUpper(id)
	if !applicationIDPattern.MatchString(id) {
		return "", Errorf(KindInvalidApplicationID,
			"the `--application-id` argument must be two characters, from 'AA' to '99'")
	}
	return id, nil
}

// NormalizeBillingType upper-cases bt and checks it is H, E or a space.
func NormalizeBillingType(bt string) (BillingType, error) {
	switch b := BillingType(strings.ToUpper(bt)); b {
	case BillingInternal, BillingExternal, BillingUnspecified:
		return b, nil
	default:
		return "", Errorf(KindInvalidBillingType,
			"the `--billing-type` argument must be one character, 'H' (internal billing), "+
				"'E' (external billing) or ' ' (both external and internal billing, or undetermined)")
	}
}

// NormalizeFileVersion upper-cases v and checks it is a supported version.
func NormalizeFileVersion(v string) (string, error) {
	v = strings.ToUpper(v)
	if !IsSupportedFileVersion(v) {
		return "", Errorf(KindInvalidFileVersionArg,
			"incorrect `--file-version` argument value '%s', currently only 'V1.11' is supported", v)
	}
	return v, nil
}

// IsSupportedFileVersion reports whether v is one of SupportedFileVersions.
func IsSupportedFileVersion(v string) bool {
	for _, s := range SupportedFileVersions {
		if v == s {
			return true
		}
	}
	return false
}

// ConversionResult is what the converter reports for one input file.
type ConversionResult struct {
	// RowCount is the number of data rows written to the detailed file.
	RowCount int `json:"row_count" yaml:"row_count" msgpack:"row_count"`
	// OldestDate is the earliest reported date, YYYYMMDD.
	OldestDate string `json:"oldest_date" yaml:"oldest_date" msgpack:"oldest_date"`
	// MostRecentDate is the latest reported date, YYYYMMDD.
	MostRecentDate string `json:"most_recent_date" yaml:"most_recent_date" msgpack:"most_recent_date"`
}

// NoDate is reported when no date column was requested or no date was found.
const NoDate = "00000000"
