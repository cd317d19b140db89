package convert

import (
	"fmt"
	"sort"
	"strings"
)

// DateLocale names the twelve month abbreviations used by DD-MMM-YY dates.
// It is passed explicitly to the converter; the process locale is never
// consulted.
type DateLocale struct {
	Name   string
	Months [12]string
}

var builtinLocales = map[string]DateLocale{
	"en": {Name: "en", Months: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}},
	"fr": {Name: "fr", Months: [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."}},
	"de": {Name: "de", Months: [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"}},
	"nl": {Name: "nl", Months: [12]string{"jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"}},
}

// DefaultLocale is used when no locale is configured.
var DefaultLocale = builtinLocales["en"]

// LookupLocale returns a built-in locale by name. Region suffixes are
// ignored, so "fr_FR.UTF-8" resolves to "fr".
func LookupLocale(name string) (DateLocale, error) {
	if name == "" {
		return DefaultLocale, nil
	}
	key := strings.ToLower(name)
	if i := strings.IndexAny(key, "_-."); i > 0 {
		key = key[:i]
	}
	loc, ok := builtinLocales[key]
	if !ok {
		return DateLocale{}, fmt.Errorf("unknown locale %q (known: %s)", name, strings.Join(LocaleNames(), ", "))
	}
	return loc, nil
}

// CustomLocale builds a locale from an explicit month list.
func CustomLocale(name string, months []string) (DateLocale, error) {
	if len(months) != 12 {
		return DateLocale{}, fmt.Errorf("locale %q needs 12 month names, got %d", name, len(months))
	}
	loc := DateLocale{Name: name}
	copy(loc.Months[:], months)
	return loc, nil
}

// LocaleNames lists the built-in locale names, sorted.
func LocaleNames() []string {
	names := make([]string, 0, len(builtinLocales))
	for n := range builtinLocales {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// month returns the 1-based month for abbr, matching case-insensitively and
// ignoring a trailing period.
func (l DateLocale) month(abbr string) (int, bool) {
	abbr = strings.TrimSuffix(abbr, ".")
	for i, m := range l.Months {
		if strings.EqualFold(strings.TrimSuffix(m, "."), abbr) {
			return i + 1, true
		}
	}
	return 0, false
}
