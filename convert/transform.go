package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DateDDMMMYY is the month-abbreviation date format, resolved through the
// request's DateLocale rather than a Go time layout.
const DateDDMMMYY = "DD-MMM-YY"

// dateLayouts maps supported date input formats to Go time layouts.
// Day and month accept one or two digits.
var dateLayouts = map[string]string{
	"YYYYMMDD":   "20060102",
	"DD/MM/YYYY": "2/1/2006",
	"DD.MM.YYYY": "2.1.2006",
	"MM/DD/YYYY": "1/2/2006",
	"YYYY-MM-DD": "2006-1-2",
	"DD/MM/YY":   "2/1/06",
}

var timeLayouts = map[string]string{
	"HH:MM":    "15:04",
	"HH:MM:SS": "15:04:05",
	"HHMM":     "1504",
}

const (
	emptyDate = "00000000"
	emptyTime = "0000"
)

// render converts one raw value into its fixed-width slot.
func (f *Field) render(raw string, loc DateLocale) (string, error) {
	v := strings.TrimSpace(raw)

	var out string
	var err error
	switch f.Format {
	case FormatInteger:
		out, err = renderInteger(v)
	case FormatDecimal:
		out, err = renderDecimal(v, f.Decimals)
	case FormatDate:
		out, err = renderDate(v, f.InputFormat, loc)
	case FormatTime:
		out, err = renderTime(v, f.InputFormat)
	case FormatText:
		return f.fitText(raw)
	default:
		err = fmt.Errorf("unsupported format %q", f.Format)
	}
	if err != nil {
		return "", err
	}

	if len(out) > f.Length {
		return "", fmt.Errorf("value %q is %d characters, field length is %d", v, len(out), f.Length)
	}
	return zeroPad(out, f.Length), nil
}

func (f *Field) fitText(v string) (string, error) {
	n := utf8.RuneCountInString(v)
	if n > f.Length {
		if !f.Truncate {
			return "", fmt.Errorf("value %q is %d characters, field length is %d", v, n, f.Length)
		}
		return string([]rune(v)[:f.Length]), nil
	}
	return v + strings.Repeat(" ", f.Length-n), nil
}

func renderInteger(v string) (string, error) {
	if v == "" {
		return "0", nil
	}
	if _, err := strconv.ParseInt(v, 10, 64); err != nil {
		return "", fmt.Errorf("value %q is not an integer", v)
	}
	return strings.TrimPrefix(v, "+"), nil
}

// renderDecimal scales v by 10^decimals without floating point. Extra
// non-zero fractional digits are rejected instead of rounded.
func renderDecimal(v string, decimals int) (string, error) {
	if v == "" {
		return "0", nil
	}

	sign := ""
	s := v
	switch s[0] {
	case '-':
		sign, s = "-", s[1:]
	case '+':
		s = s[1:]
	}

	s = strings.Replace(s, ",", ".", 1)
	intPart, frac, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (frac != "" && !isDigits(frac)) {
		return "", fmt.Errorf("value %q is not a decimal number", v)
	}

	if len(frac) > decimals {
		if strings.Trim(frac[decimals:], "0") != "" {
			return "", fmt.Errorf("value %q has more than %d decimals", v, decimals)
		}
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	digits := strings.TrimLeft(intPart+frac, "0")
	if digits == "" {
		return "0", nil
	}
	return sign + digits, nil
}

func renderDate(v, inputFormat string, loc DateLocale) (string, error) {
	if v == "" {
		return emptyDate, nil
	}

	var t time.Time
	var err error
	if inputFormat == DateDDMMMYY {
		t, err = parseMonthAbbrevDate(v, loc)
	} else {
		t, err = time.Parse(dateLayouts[inputFormat], v)
	}
	if err != nil {
		return "", fmt.Errorf("value %q is not a %s date", v, inputFormat)
	}
	return t.Format("20060102"), nil
}

func parseMonthAbbrevDate(v string, loc DateLocale) (time.Time, error) {
	parts := strings.Split(v, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("expected DD-MMM-YY")
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, err
	}
	month, ok := loc.month(parts[1])
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month %q for locale %s", parts[1], loc.Name)
	}
	if len(parts[2]) != 2 {
		return time.Time{}, fmt.Errorf("expected a 2-digit year")
	}
	yy, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, err
	}
	// Same pivot as Go's "06" layout.
	year := 2000 + yy
	if yy >= 69 {
		year = 1900 + yy
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("day %d out of range", day)
	}
	return t, nil
}

func renderTime(v, inputFormat string) (string, error) {
	if v == "" {
		return emptyTime, nil
	}
	t, err := time.Parse(timeLayouts[inputFormat], v)
	if err != nil {
		return "", fmt.Errorf("value %q is not a %s time", v, inputFormat)
	}
	return t.Format("1504"), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// zeroPad left-pads s with '0' to length, keeping a leading minus sign first.
func zeroPad(s string, length int) string {
	pad := length - len(s)
	if pad <= 0 {
		return s
	}
	if strings.HasPrefix(s, "-") {
		return "-" + strings.Repeat("0", pad) + s[1:]
	}
	return strings.Repeat("0", pad) + s
}
