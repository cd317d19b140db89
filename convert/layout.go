package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/justapithecus/billingflatfile/types"
)

// Format is the output format of one fixed-width field.
type Format string

const (
	FormatInteger Format = "integer"
	FormatDecimal Format = "decimal"
	FormatDate    Format = "date"
	FormatTime    Format = "time"
	FormatText    Format = "text"
)

// Divert moves a field's value into another field when it matches.
type Divert struct {
	// Match is a regular expression tested against the raw input value.
	Match string `yaml:"match"`
	// To names the field that receives the value.
	To string `yaml:"to"`

	re     *regexp.Regexp
	target int
}

// Field describes one input column and its fixed-width output slot.
type Field struct {
	Name        string  `yaml:"name"`
	Length      int     `yaml:"length"`
	Format      Format  `yaml:"format"`
	InputFormat string  `yaml:"input_format,omitempty"`
	Decimals    int     `yaml:"decimals,omitempty"`
	Skip        bool    `yaml:"skip,omitempty"`
	Truncate    bool    `yaml:"truncate,omitempty"`
	Divert      *Divert `yaml:"divert,omitempty"`
}

// Layout is the ordered field specification of an input file. There is one
// field per input column, skipped columns included.
type Layout struct {
	Fields []Field `yaml:"fields"`
}

// RecordLength returns the length of one output record, without the newline.
func (l *Layout) RecordLength() int {
	n := 0
	for _, f := range l.Fields {
		if !f.Skip {
			n += f.Length
		}
	}
	return n
}

// LoadLayout reads and validates a YAML field layout.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.Errorf(types.KindLayoutNotFound,
				"the field layout file %q does not exist", path)
		}
		return nil, types.Wrap(types.KindLayoutNotFound, err, "cannot read field layout %q", path)
	}

	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, types.Wrap(types.KindLayoutInvalid, err, "invalid YAML in field layout %q", path)
	}
	if err := l.Validate(); err != nil {
		return nil, types.Wrap(types.KindLayoutInvalid, err, "invalid field layout %q", path)
	}
	return &l, nil
}

// Validate checks the layout and compiles its diversion rules.
func (l *Layout) Validate() error {
	if len(l.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	index := make(map[string]int, len(l.Fields))
	for i, f := range l.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := index[f.Name]; dup {
			return fmt.Errorf("field %q: duplicate name", f.Name)
		}
		index[f.Name] = i
	}

	for i := range l.Fields {
		f := &l.Fields[i]
		if f.Skip {
			continue
		}
		if f.Length <= 0 {
			return fmt.Errorf("field %q: length must be > 0", f.Name)
		}
		if err := f.validateFormat(); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		if f.Divert != nil {
			if err := l.compileDivert(f, index); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
	}
	return nil
}

func (f *Field) validateFormat() error {
	switch f.Format {
	case FormatInteger, FormatText:
		return nil
	case FormatDecimal:
		if f.Decimals < 0 {
			return fmt.Errorf("decimals must be >= 0, got %d", f.Decimals)
		}
		return nil
	case FormatDate:
		if _, ok := dateLayouts[f.InputFormat]; !ok && f.InputFormat != DateDDMMMYY {
			return fmt.Errorf("unsupported date input_format %q", f.InputFormat)
		}
		return nil
	case FormatTime:
		if _, ok := timeLayouts[f.InputFormat]; !ok {
			return fmt.Errorf("unsupported time input_format %q", f.InputFormat)
		}
		return nil
	case "":
		return errors.New("format is required")
	default:
		return fmt.Errorf("unsupported format %q", f.Format)
	}
}

func (l *Layout) compileDivert(f *Field, index map[string]int) error {
	target, ok := index[f.Divert.To]
	if !ok {
		return fmt.Errorf("divert target %q is not a field", f.Divert.To)
	}
	if f.Divert.To == f.Name {
		return errors.New("divert target must be another field")
	}
	if l.Fields[target].Skip {
		return fmt.Errorf("divert target %q is skipped", f.Divert.To)
	}
	re, err := regexp.Compile(f.Divert.Match)
	if err != nil {
		return fmt.Errorf("invalid divert match: %w", err)
	}
	f.Divert.re = re
	f.Divert.target = target
	return nil
}
