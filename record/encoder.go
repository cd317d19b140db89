// Package record encodes the fixed-width metadata record read by the
// receiving billing application.
package record

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/justapithecus/billingflatfile/types"
)

// Kind selects how a value is padded into its slot.
type Kind string

const (
	// Numeric values must parse as base-10 integers and are left-padded with '0'.
	Numeric Kind = "numeric"
	// Alphanumeric values are right-padded with spaces.
	Alphanumeric Kind = "alphanumeric"
)

// Encode renders value into a slot of exactly length characters.
// Values longer than length are rejected, never truncated.
func Encode(value any, kind Kind, length int, field string) (string, error) {
	s := stringify(value)

	n := utf8.RuneCountInString(s)
	if n > length {
		return "", types.Errorf(types.KindFieldTooLong,
			"field %q for metadata file is too long: length %d, max length %d", field, n, length)
	}

	switch kind {
	case Numeric:
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			return "", types.Errorf(types.KindNonNumericField,
				"non-numeric value passed for numeric metadata file field %q", field)
		}
		return zeroPad(s, length), nil
	case Alphanumeric:
		return s + strings.Repeat(" ", length-n), nil
	default:
		return "", types.Errorf(types.KindUnsupportedFieldFormat,
			"unsupported output format '%s' for metadata file field %q", kind, field)
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// zeroPad left-pads s with '0' to length, keeping a leading sign in front.
func zeroPad(s string, length int) string {
	pad := length - len(s)
	if pad <= 0 {
		return s
	}
	if s[0] == '-' || s[0] == '+' {
		return s[:1] + strings.Repeat("0", pad) + s[1:]
	}
	return strings.Repeat("0", pad) + s
}
