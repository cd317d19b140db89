package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_FullConfig(t *testing.T) {
	yaml := `run:
  application_id: sa
  run_description: Monthly lab billing
  billing_type: E
  file_version: V1.11
  output_directory: ./out
  run_id_file: ./state/runid
  date_report: 2
  txt_extension: true
  move_input: true
  overwrite_files: false

converter:
  config: ./layouts/lab.yaml
  delimiter: ";"
  quotechar: "'"
  skip_header: 1
  skip_footer: 2
  locale: fr

delivery:
  backend: s3
  path: my-bucket/billing
  prefix: monthly
  dataset: billing
  region: eu-west-1
  endpoint: https://example.com
  s3_path_style: true

adapter:
  type: webhook
  url: https://hooks.example.com/billing
  headers:
    Authorization: Bearer token123
  timeout: 10s
  retries: 3

journal: ./state/journal.bin
log_level: debug
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Run
	assertEqual(t, "run.application_id", cfg.Run.ApplicationID, "sa")
	assertEqual(t, "run.run_description", cfg.Run.RunDescription, "Monthly lab billing")
	assertEqual(t, "run.billing_type", cfg.Run.BillingType, "E")
	assertEqual(t, "run.file_version", cfg.Run.FileVersion, "V1.11")
	assertEqual(t, "run.output_directory", cfg.Run.OutputDirectory, "./out")
	assertEqual(t, "run.run_id_file", cfg.Run.RunIDFile, "./state/runid")
	if cfg.Run.DateReport == nil || *cfg.Run.DateReport != 2 {
		t.Errorf("expected run.date_report=2, got %v", cfg.Run.DateReport)
	}
	if !cfg.Run.TxtExtension || !cfg.Run.MoveInput || cfg.Run.OverwriteFiles {
		t.Errorf("unexpected run flags: %+v", cfg.Run)
	}

	// Converter
	assertEqual(t, "converter.config", cfg.Converter.Config, "./layouts/lab.yaml")
	assertEqual(t, "converter.delimiter", cfg.Converter.Delimiter, ";")
	assertEqual(t, "converter.quotechar", cfg.Converter.QuoteChar, "'")
	assertEqual(t, "converter.locale", cfg.Converter.Locale, "fr")
	if cfg.Converter.SkipHeader == nil || *cfg.Converter.SkipHeader != 1 {
		t.Errorf("expected skip_header=1, got %v", cfg.Converter.SkipHeader)
	}
	if cfg.Converter.SkipFooter == nil || *cfg.Converter.SkipFooter != 2 {
		t.Errorf("expected skip_footer=2, got %v", cfg.Converter.SkipFooter)
	}

	// Delivery
	assertEqual(t, "delivery.backend", cfg.Delivery.Backend, "s3")
	assertEqual(t, "delivery.path", cfg.Delivery.Path, "my-bucket/billing")
	assertEqual(t, "delivery.prefix", cfg.Delivery.Prefix, "monthly")
	assertEqual(t, "delivery.dataset", cfg.Delivery.Dataset, "billing")
	assertEqual(t, "delivery.region", cfg.Delivery.Region, "eu-west-1")
	assertEqual(t, "delivery.endpoint", cfg.Delivery.Endpoint, "https://example.com")
	if !cfg.Delivery.S3PathStyle {
		t.Error("expected delivery.s3_path_style=true")
	}

	// Adapter
	assertEqual(t, "adapter.type", cfg.Adapter.Type, "webhook")
	assertEqual(t, "adapter.url", cfg.Adapter.URL, "https://hooks.example.com/billing")
	if cfg.Adapter.Timeout.Duration != 10*time.Second {
		t.Errorf("expected timeout=10s, got %v", cfg.Adapter.Timeout.Duration)
	}
	if cfg.Adapter.Retries == nil || *cfg.Adapter.Retries != 3 {
		t.Errorf("expected retries=3, got %v", cfg.Adapter.Retries)
	}
	if cfg.Adapter.Headers["Authorization"] != "Bearer token123" {
		t.Errorf("expected Authorization header")
	}

	assertEqual(t, "journal", cfg.Journal, "./state/journal.bin")
	assertEqual(t, "log_level", cfg.LogLevel, "debug")
}

func TestLoad_EmptyConfig(t *testing.T) {
	for name, content := range map[string]string{
		"empty":      "",
		"whitespace": "   \n  \n  \n",
		"comments":   "# This is a comment\n# Another comment\n",
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeTemp(t, content))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Run.ApplicationID != "" || cfg.Converter.SkipHeader != nil {
				t.Errorf("expected zero config, got %+v", cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/billingflatfile.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTemp(t, "{{invalid yaml")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_APP_ID", "XY")

	yaml := `run:
  application_id: ${TEST_APP_ID}
  run_description: ${TEST_UNSET_DESC:-nightly}
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "run.application_id", cfg.Run.ApplicationID, "XY")
	assertEqual(t, "run.run_description", cfg.Run.RunDescription, "nightly")
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	yaml := `journal: ./j.bin
bogus_key: should_fail
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
	if !strings.Contains(err.Error(), "bogus_key") {
		t.Errorf("error should mention the unknown key, got: %v", err)
	}
}

func TestLoad_UnknownNestedKeyRejected(t *testing.T) {
	yaml := `converter:
  delimiter: ","
  unknown_field: bad
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected error for unknown nested key, got nil")
	}
	if !strings.Contains(err.Error(), "unknown_field") {
		t.Errorf("error should mention the unknown key, got: %v", err)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"months", "converter:\n  months: [jan, feb]\n", "converter.months"},
		{"negative skip", "converter:\n  skip_header: -1\n", "converter.skip_header"},
		{"negative date report", "run:\n  date_report: -3\n", "run.date_report"},
		{"backend", "delivery:\n  backend: ftp\n", "delivery.backend"},
		{"adapter type", "adapter:\n  type: kafka\n", "adapter.type"},
		{"retries", "adapter:\n  type: redis\n  retries: -1\n", "adapter.retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error should mention %s, got: %v", tt.want, err)
			}
		})
	}
}

func TestLoad_CustomMonths(t *testing.T) {
	yaml := `converter:
  locale: pt
  months: [jan, fev, mar, abr, mai, jun, jul, ago, set, out, nov, dez]
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Converter.Months) != 12 || cfg.Converter.Months[1] != "fev" {
		t.Errorf("months = %v", cfg.Converter.Months)
	}
}

func TestLoad_RetriesZeroDistinctFromNil(t *testing.T) {
	// retries: 0 should parse as *int(0), not nil.
	yaml := `adapter:
  type: webhook
  url: https://example.com
  retries: 0
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Adapter.Retries == nil {
		t.Fatal("expected retries to be non-nil")
	}
	if *cfg.Adapter.Retries != 0 {
		t.Errorf("expected retries=0, got %d", *cfg.Adapter.Retries)
	}
}

func TestLoad_RetriesOmittedIsNil(t *testing.T) {
	yaml := `adapter:
  type: webhook
  url: https://example.com
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Adapter.Retries != nil {
		t.Errorf("expected retries=nil, got %d", *cfg.Adapter.Retries)
	}
}

func TestDuration_InvalidFormat(t *testing.T) {
	yaml := `adapter:
  type: webhook
  url: https://example.com
  timeout: not-a-duration
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoad_RedisAdapterConfig(t *testing.T) {
	yaml := `adapter:
  type: redis
  url: redis://localhost:6379/0
  channel: billing:done
  timeout: 3s
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "adapter.type", cfg.Adapter.Type, "redis")
	assertEqual(t, "adapter.channel", cfg.Adapter.Channel, "billing:done")
	if cfg.Adapter.Timeout.Duration != 3*time.Second {
		t.Errorf("expected timeout=3s, got %v", cfg.Adapter.Timeout.Duration)
	}
}

// writeTemp writes content to a temp file and returns the path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "billingflatfile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func assertEqual(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", field, got, want)
	}
}
