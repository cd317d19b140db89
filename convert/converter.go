// Package convert turns a delimited extract into a fixed-width detailed
// billing file, following a YAML field layout.
//
// Each input column maps to one layout field. Fields are rendered as
// zero-padded integers, scaled decimals, YYYYMMDD dates, HHMM times or
// space-padded text. The converter also reports the row count and the
// oldest and most recent value of one date column, which feed the
// metadata record.
package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/justapithecus/billingflatfile/iox"
	"github.com/justapithecus/billingflatfile/types"
)

// ctxCheckInterval is how many rows are converted between context checks.
const ctxCheckInterval = 1024

// Request describes one conversion.
type Request struct {
	// InputPath is the delimited input file.
	InputPath string
	// OutputPath is the detailed file to create.
	OutputPath string
	// LayoutPath is the YAML field layout.
	LayoutPath string
	// Delimiter separates columns.
	Delimiter rune
	// QuoteChar encloses columns containing the delimiter. Zero disables quoting.
	QuoteChar rune
	// SkipHeader is the number of leading rows to ignore.
	SkipHeader int
	// SkipFooter is the number of trailing rows to ignore.
	SkipFooter int
	// DateReportColumn is the 0-based index of the date field whose oldest
	// and most recent values are reported. Nil disables the report.
	DateReportColumn *int
	// Locale resolves month abbreviations in DD-MMM-YY dates.
	Locale DateLocale
}

// Converter converts one delimited file into one detailed file.
type Converter interface {
	Process(ctx context.Context, req Request) (types.ConversionResult, error)
}

// FileConverter is the filesystem Converter. Layouts are loaded once per
// path and reused across the files of a batch.
type FileConverter struct {
	mu      sync.Mutex
	layouts map[string]*Layout
}

// NewFileConverter creates a FileConverter.
func NewFileConverter() *FileConverter {
	return &FileConverter{layouts: make(map[string]*Layout)}
}

// Verify FileConverter implements Converter.
var _ Converter = (*FileConverter)(nil)

// Process converts req.InputPath into req.OutputPath. The output is written
// to a temp file and renamed into place, so a failed conversion leaves no
// detailed file behind.
func (c *FileConverter) Process(ctx context.Context, req Request) (types.ConversionResult, error) {
	var res types.ConversionResult

	if req.Delimiter == 0 {
		return res, types.Errorf(types.KindDelimiterInvalid, "the delimiter must be one character")
	}
	if req.SkipHeader < 0 || req.SkipFooter < 0 {
		return res, types.Errorf(types.KindConverterFailure, "skip counts must not be negative")
	}

	layout, err := c.layout(req.LayoutPath)
	if err != nil {
		return res, err
	}

	report := -1
	if req.DateReportColumn != nil {
		report = *req.DateReportColumn
		if report < 0 || report >= len(layout.Fields) {
			return res, types.Errorf(types.KindConverterFailure,
				"date report column %d is out of range, the layout has %d fields", report, len(layout.Fields))
		}
		if f := layout.Fields[report]; f.Skip || f.Format != FormatDate {
			return res, types.Errorf(types.KindConverterFailure,
				"date report column %d (%q) is not a date field", report, f.Name)
		}
	}

	data, err := os.ReadFile(req.InputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, types.Errorf(types.KindInputNotFound, "the input file %q does not exist", req.InputPath)
		}
		return res, types.Wrap(types.KindConverterFailure, err, "cannot read input file %q", req.InputPath)
	}
	if !utf8.Valid(data) {
		return res, types.Errorf(types.KindConverterFailure, "the input file %q is not valid UTF-8", req.InputPath)
	}
	content := strings.TrimPrefix(string(data), "\uFEFF")
	lines, numbers := dataLines(content, req.SkipHeader, req.SkipFooter)

	tmp, err := os.CreateTemp(filepath.Dir(req.OutputPath), "."+filepath.Base(req.OutputPath)+".*.tmp")
	if err != nil {
		return res, types.Wrap(types.KindConverterFailure, err, "cannot create detailed file")
	}
	committed := false
	defer func() {
		if !committed {
			iox.DiscardClose(tmp)
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	oldest, newest := "", ""
	for i, line := range lines {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, types.Wrap(types.KindCanceled, err, "conversion of %q canceled", req.InputPath)
			}
		}

		rec, reported, err := layout.convertLine(line, req)
		if err != nil {
			return res, types.Wrap(types.KindConverterFailure, err,
				"%s: line %d", filepath.Base(req.InputPath), numbers[i])
		}
		if _, err := w.WriteString(rec); err != nil {
			return res, types.Wrap(types.KindConverterFailure, err, "cannot write detailed file")
		}
		if _, err := w.WriteString("\n"); err != nil {
			return res, types.Wrap(types.KindConverterFailure, err, "cannot write detailed file")
		}

		if report >= 0 {
			// Date slots wider than 8 are zero-padded on the left.
			d := reported[report]
			d = d[len(d)-len(emptyDate):]
			if d != emptyDate {
				if oldest == "" || d < oldest {
					oldest = d
				}
				if newest == "" || d > newest {
					newest = d
				}
			}
		}
	}

	if err := w.Flush(); err != nil {
		return res, types.Wrap(types.KindConverterFailure, err, "cannot write detailed file")
	}
	if err := tmp.Close(); err != nil {
		return res, types.Wrap(types.KindConverterFailure, err, "cannot write detailed file")
	}
	if err := os.Rename(tmp.Name(), req.OutputPath); err != nil {
		_ = os.Remove(tmp.Name())
		committed = true
		return res, types.Wrap(types.KindConverterFailure, err, "cannot create detailed file %q", req.OutputPath)
	}
	committed = true

	res.RowCount = len(lines)
	res.OldestDate = orNoDate(oldest)
	res.MostRecentDate = orNoDate(newest)
	return res, nil
}

func (c *FileConverter) layout(path string) (*Layout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.layouts[path]; ok {
		return l, nil
	}
	l, err := LoadLayout(path)
	if err != nil {
		return nil, err
	}
	c.layouts[path] = l
	return l, nil
}

// convertLine renders one input line. It also returns the rendered value of
// every field, indexed like the layout, for date reporting.
func (l *Layout) convertLine(line string, req Request) (string, []string, error) {
	values, err := splitRecord(line, req.Delimiter, req.QuoteChar)
	if err != nil {
		return "", nil, err
	}
	if len(values) != len(l.Fields) {
		return "", nil, fmt.Errorf("expected %d columns, got %d", len(l.Fields), len(values))
	}

	for i := range l.Fields {
		d := l.Fields[i].Divert
		if d == nil || d.re == nil || l.Fields[i].Skip {
			continue
		}
		if values[i] != "" && d.re.MatchString(values[i]) {
			values[d.target] = values[i]
			values[i] = ""
		}
	}

	var b strings.Builder
	b.Grow(l.RecordLength())
	rendered := make([]string, len(l.Fields))
	for i := range l.Fields {
		f := &l.Fields[i]
		if f.Skip {
			continue
		}
		out, err := f.render(values[i], req.Locale)
		if err != nil {
			return "", nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		rendered[i] = out
		b.WriteString(out)
	}
	return b.String(), rendered, nil
}

func orNoDate(d string) string {
	if d == "" {
		return types.NoDate
	}
	return d
}
