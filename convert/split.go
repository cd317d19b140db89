package convert

import (
	"errors"
	"strings"
)

var errUnterminatedQuote = errors.New("unterminated quoted field")

// splitRecord splits one line on delim. A field starting with quote runs
// until the matching closing quote; a doubled quote inside it is a literal
// quote. A zero quote disables quoting.
func splitRecord(line string, delim, quote rune) ([]string, error) {
	var fields []string
	var b strings.Builder
	inQuotes := false
	atFieldStart := true

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if inQuotes {
			if r == quote {
				if i+1 < len(runes) && runes[i+1] == quote {
					b.WriteRune(quote)
					i++
					continue
				}
				inQuotes = false
				continue
			}
			b.WriteRune(r)
			continue
		}

		switch {
		case r == delim:
			fields = append(fields, b.String())
			b.Reset()
			atFieldStart = true
			continue
		case quote != 0 && r == quote && atFieldStart:
			inQuotes = true
		default:
			b.WriteRune(r)
		}
		atFieldStart = false
	}

	if inQuotes {
		return nil, errUnterminatedQuote
	}
	return append(fields, b.String()), nil
}

// dataLines splits content into non-blank lines and drops the header and
// footer rows. It returns the data lines with their 1-based line numbers.
func dataLines(content string, skipHeader, skipFooter int) ([]string, []int) {
	raw := strings.Split(content, "\n")
	lines := make([]string, 0, len(raw))
	numbers := make([]int, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
		numbers = append(numbers, i+1)
	}

	if skipHeader+skipFooter >= len(lines) {
		return nil, nil
	}
	end := len(lines) - skipFooter
	return lines[skipHeader:end], numbers[skipHeader:end]
}
