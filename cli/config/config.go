package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents a billingflatfile settings file.
// All values are optional and act as defaults for run flags.
// CLI flags always override settings values.
type Config struct {
	Run       RunConfig       `yaml:"run"`
	Converter ConverterConfig `yaml:"converter"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Adapter   AdapterConfig   `yaml:"adapter"`
	Journal   string          `yaml:"journal"`
	LogLevel  string          `yaml:"log_level"`
}

// RunConfig holds the metadata record and output defaults.
type RunConfig struct {
	ApplicationID   string `yaml:"application_id"`
	RunDescription  string `yaml:"run_description"`
	BillingType     string `yaml:"billing_type"`
	FileVersion     string `yaml:"file_version"`
	OutputDirectory string `yaml:"output_directory"`
	RunIDFile       string `yaml:"run_id_file"`
	DateReport      *int   `yaml:"date_report,omitempty"`
	TxtExtension    bool   `yaml:"txt_extension"`
	MoveInput       bool   `yaml:"move_input"`
	OverwriteFiles  bool   `yaml:"overwrite_files"`
}

// ConverterConfig holds input parsing defaults.
type ConverterConfig struct {
	// Config is the field layout file.
	Config     string `yaml:"config"`
	Delimiter  string `yaml:"delimiter"`
	QuoteChar  string `yaml:"quotechar"`
	SkipHeader *int   `yaml:"skip_header,omitempty"`
	SkipFooter *int   `yaml:"skip_footer,omitempty"`
	Locale     string `yaml:"locale"`
	// Months overrides the locale's month abbreviations, January first.
	Months []string `yaml:"months,omitempty"`
}

// DeliveryConfig holds delivery store defaults.
type DeliveryConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Prefix      string `yaml:"prefix"`
	Dataset     string `yaml:"dataset"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// AdapterConfig holds adapter defaults from the settings file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks values whose shape the YAML types cannot express.
// Domain checks (application id, billing type, ...) happen after CLI
// precedence is applied, so a bad settings value overridden by a flag is
// never reported.
func (c *Config) Validate() error {
	var errs []error

	if n := len(c.Converter.Months); n != 0 && n != 12 {
		errs = append(errs, fmt.Errorf("converter.months must list 12 months, got %d", n))
	}
	for _, v := range []struct {
		name string
		val  *int
	}{
		{"converter.skip_header", c.Converter.SkipHeader},
		{"converter.skip_footer", c.Converter.SkipFooter},
		{"run.date_report", c.Run.DateReport},
	} {
		if v.val != nil && *v.val < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", v.name, *v.val))
		}
	}
	switch c.Delivery.Backend {
	case "", "fs", "s3":
	default:
		errs = append(errs, fmt.Errorf("delivery.backend must be fs or s3, got %q", c.Delivery.Backend))
	}
	switch c.Adapter.Type {
	case "", "webhook", "redis":
	default:
		errs = append(errs, fmt.Errorf("adapter.type must be webhook or redis, got %q", c.Adapter.Type))
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		errs = append(errs, fmt.Errorf("adapter.retries must be >= 0, got %d", *c.Adapter.Retries))
	}

	return errors.Join(errs...)
}
