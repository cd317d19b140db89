// Package types defines the core domain types shared across billingflatfile
// packages: the run context, conversion results and classified errors.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal batch error. Each kind maps to exactly one
// process exit status; the mapping lives in the command layer only.
type ErrorKind string

// Error kinds raised while validating arguments, converting input files,
// sequencing run ids and orchestrating a batch.
const (
	KindUnknown ErrorKind = "unknown"

	// Argument validation.
	KindRunIDNotNumeric         ErrorKind = "run_id_not_numeric"
	KindRunIDOutOfRange         ErrorKind = "run_id_out_of_range"
	KindInvalidApplicationID    ErrorKind = "invalid_application_id"
	KindInvalidBillingType      ErrorKind = "invalid_billing_type"
	KindInvalidFileVersionArg   ErrorKind = "invalid_file_version_argument"
	KindDateReportNotNumeric    ErrorKind = "date_report_not_numeric"
	KindDateReportOutOfRange    ErrorKind = "date_report_out_of_range"
	KindSkipHeaderInvalid       ErrorKind = "skip_header_invalid"
	KindSkipFooterInvalid       ErrorKind = "skip_footer_invalid"
	KindDelimiterInvalid        ErrorKind = "delimiter_invalid"
	KindSettingsInvalid         ErrorKind = "settings_invalid"
	KindInvalidMetadataRecord   ErrorKind = "invalid_metadata_record"
	KindUnsupportedFileVersion  ErrorKind = "unsupported_file_version"
	KindFieldTooLong            ErrorKind = "field_too_long"
	KindNonNumericField         ErrorKind = "non_numeric_field"
	KindUnsupportedFieldFormat  ErrorKind = "unsupported_field_format"
	KindMissingRunIDSource      ErrorKind = "missing_run_id_source"
	KindInvalidRunIDStore       ErrorKind = "invalid_run_id_store_content"
	KindRunIDOverflow           ErrorKind = "run_id_overflow"
	KindInputNotFound           ErrorKind = "input_not_found"
	KindNoInputFiles            ErrorKind = "no_input_files"
	KindMetadataFileConflict    ErrorKind = "metadata_file_conflict"
	KindDetailedFileConflict    ErrorKind = "detailed_file_conflict"
	KindMoveConflict            ErrorKind = "move_conflict"
	KindLayoutNotFound          ErrorKind = "layout_not_found"
	KindLayoutInvalid           ErrorKind = "layout_invalid"
	KindConverterFailure        ErrorKind = "converter_failure"
	KindDeliveryFailed          ErrorKind = "delivery_failed"
	KindNotifyFailed            ErrorKind = "notify_failed"
	KindCanceled                ErrorKind = "canceled"
)

// Error is a classified, fatal error. Msg is the operator-facing diagnostic;
// Err optionally carries the underlying cause.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a classified error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a classified error around cause.
func Wrap(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err's chain carries an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
