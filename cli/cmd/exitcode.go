package cmd

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/billingflatfile/log"
	"github.com/justapithecus/billingflatfile/types"
)

// Exit codes. The 2xx range is a stable contract with the scripts that
// invoke billingflatfile; the low codes come from the converter.
const (
	exitSuccess = 0
	exitFailure = 1

	exitInputNotFound  = 10
	exitNoInputFiles   = 11
	exitLayoutNotFound = 12
	exitSkipHeader     = 21
	exitSkipFooter     = 22
	exitDelimiter      = 23
	exitLayoutInvalid  = 30
	exitConverter      = 40
	exitCanceled       = 130

	exitRunIDNotNumeric        = 210
	exitRunIDOutOfRange        = 211
	exitInvalidApplicationID   = 212
	exitUnsupportedFileVersion = 213
	exitFieldTooLong           = 214
	exitNonNumericField        = 215
	exitUnsupportedFieldFormat = 216
	exitInvalidBillingType     = 217
	exitInvalidFileVersionArg  = 218
	exitMetadataConflict       = 219
	exitDetailedConflict       = 220
	exitDateReportNotNumeric   = 221
	exitDateReportOutOfRange   = 222
	exitRunIDOverflow          = 223
	exitMissingRunIDSource     = 224
	exitInvalidRunIDStore      = 225
	exitMoveConflict           = 226
	exitSettingsInvalid        = 227
	exitDeliveryFailed         = 228
	exitNotifyFailed           = 229
)

var kindExitCodes = map[types.ErrorKind]int{
	types.KindInputNotFound:          exitInputNotFound,
	types.KindNoInputFiles:           exitNoInputFiles,
	types.KindLayoutNotFound:         exitLayoutNotFound,
	types.KindSkipHeaderInvalid:      exitSkipHeader,
	types.KindSkipFooterInvalid:      exitSkipFooter,
	types.KindDelimiterInvalid:       exitDelimiter,
	types.KindLayoutInvalid:          exitLayoutInvalid,
	types.KindConverterFailure:       exitConverter,
	types.KindCanceled:               exitCanceled,
	types.KindRunIDNotNumeric:        exitRunIDNotNumeric,
	types.KindRunIDOutOfRange:        exitRunIDOutOfRange,
	types.KindInvalidApplicationID:   exitInvalidApplicationID,
	types.KindUnsupportedFileVersion: exitUnsupportedFileVersion,
	types.KindFieldTooLong:           exitFieldTooLong,
	types.KindNonNumericField:        exitNonNumericField,
	types.KindUnsupportedFieldFormat: exitUnsupportedFieldFormat,
	types.KindInvalidBillingType:     exitInvalidBillingType,
	types.KindInvalidFileVersionArg:  exitInvalidFileVersionArg,
	types.KindMetadataFileConflict:   exitMetadataConflict,
	types.KindDetailedFileConflict:   exitDetailedConflict,
	types.KindDateReportNotNumeric:   exitDateReportNotNumeric,
	types.KindDateReportOutOfRange:   exitDateReportOutOfRange,
	types.KindRunIDOverflow:          exitRunIDOverflow,
	types.KindMissingRunIDSource:     exitMissingRunIDSource,
	types.KindInvalidRunIDStore:      exitInvalidRunIDStore,
	types.KindMoveConflict:           exitMoveConflict,
	types.KindSettingsInvalid:        exitSettingsInvalid,
	types.KindDeliveryFailed:         exitDeliveryFailed,
	types.KindNotifyFailed:           exitNotifyFailed,
}

// exitCodeFor maps an error kind to its process exit status.
// Unclassified errors exit 1.
func exitCodeFor(kind types.ErrorKind) int {
	if code, ok := kindExitCodes[kind]; ok {
		return code
	}
	return exitFailure
}

// exitError logs err at error level with its kind and converts it into a
// cli.Exit carrying the mapped status. Errors that already carry an exit
// code pass through unchanged.
func exitError(logger *log.Logger, err error) error {
	if err == nil {
		return nil
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return err
	}
	kind := types.KindOf(err)
	logger.Error(err.Error(), map[string]any{"kind": string(kind)})
	return cli.Exit(err.Error(), exitCodeFor(kind))
}
