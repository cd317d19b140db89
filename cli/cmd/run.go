package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/justapithecus/billingflatfile/adapter"
	"github.com/justapithecus/billingflatfile/adapter/redis"
	"github.com/justapithecus/billingflatfile/adapter/webhook"
	"github.com/justapithecus/billingflatfile/batch"
	"github.com/justapithecus/billingflatfile/cli/config"
	"github.com/justapithecus/billingflatfile/convert"
	"github.com/justapithecus/billingflatfile/delivery"
	"github.com/justapithecus/billingflatfile/iox"
	"github.com/justapithecus/billingflatfile/journal"
	"github.com/justapithecus/billingflatfile/log"
	"github.com/justapithecus/billingflatfile/metrics"
	"github.com/justapithecus/billingflatfile/runid"
	"github.com/justapithecus/billingflatfile/types"
)

// Bounds accepted for --run-id and --date-report.
const (
	maxRunIDArg      = 99999
	maxDateReportArg = 99999
)

// RunCommand returns the run command.
// This is the only command that writes files.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Convert delimited files into metadata and detailed billing file pairs",
		Flags: []cli.Flag{
			// Input flags
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Input file, or directory of input files",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Field layout YAML file",
			},
			&cli.StringFlag{
				Name:    "delimiter",
				Aliases: []string{"dl"},
				Usage:   "Input column delimiter (one character, \\t for tab)",
				Value:   ",",
			},
			&cli.StringFlag{
				Name:    "quotechar",
				Aliases: []string{"q"},
				Usage:   "Input quote character (one character)",
				Value:   `"`,
			},
			&cli.StringFlag{
				Name:    "skip-header",
				Aliases: []string{"sh"},
				Usage:   "Number of leading rows to skip",
				Value:   "0",
			},
			&cli.StringFlag{
				Name:    "skip-footer",
				Aliases: []string{"sf"},
				Usage:   "Number of trailing rows to skip",
				Value:   "0",
			},
			&cli.StringFlag{
				Name:    "locale",
				Aliases: []string{"l"},
				Usage:   "Month names for DD-MMM-YY dates: " + strings.Join(convert.LocaleNames(), ", "),
				Value:   "en",
			},
			// Output flags
			&cli.StringFlag{
				Name:    "output-directory",
				Aliases: []string{"o"},
				Usage:   "Directory for the output files (default: data/<today>)",
			},
			&cli.BoolFlag{
				Name:    "overwrite-files",
				Aliases: []string{"x"},
				Usage:   "Allow overwriting existing output files",
			},
			&cli.BoolFlag{
				Name:    "txt-extension",
				Aliases: []string{"t"},
				Usage:   "Append .txt to output file names",
			},
			&cli.BoolFlag{
				Name:    "move-input",
				Aliases: []string{"m"},
				Usage:   "Move each consumed input file into the output directory",
			},
			// Metadata record flags
			&cli.StringFlag{
				Name:    "application-id",
				Aliases: []string{"a"},
				Usage:   "Application ID, two characters from AA to 99",
			},
			&cli.StringFlag{
				Name:    "run-description",
				Aliases: []string{"ds"},
				Usage:   "Free text description of the run, max 30 characters",
			},
			&cli.StringFlag{
				Name:    "billing-type",
				Aliases: []string{"b"},
				Usage:   "Billing type: H (internal), E (external) or ' ' (both or undetermined)",
				Value:   string(types.BillingUnspecified),
			},
			&cli.StringFlag{
				Name:    "file-version",
				Aliases: []string{"fv"},
				Usage:   "Metadata file version, only V1.11 is supported",
				Value:   types.DefaultFileVersion,
			},
			&cli.StringFlag{
				Name:    "date-report",
				Aliases: []string{"dr"},
				Usage:   "Column number (1-based) of the date field to report on, 0 disables",
			},
			// Run id flags
			&cli.StringFlag{
				Name:    "run-id",
				Aliases: []string{"r"},
				Usage:   "Run ID of the first file, 0 to 99999",
			},
			&cli.StringFlag{
				Name:    "run-id-file",
				Aliases: []string{"rf"},
				Usage:   "File holding the next run ID, advanced after each batch",
			},
			// Settings and side effects
			&cli.StringFlag{
				Name:    "settings",
				Aliases: []string{"s"},
				Usage:   "YAML settings file providing defaults for these flags",
			},
			&cli.StringFlag{
				Name:  "journal",
				Usage: "Journal file to append a record of the batch to",
			},
			&cli.StringFlag{
				Name:  "delivery-backend",
				Usage: "Delivery backend: fs or s3",
			},
			&cli.StringFlag{
				Name:  "delivery-path",
				Usage: "Delivery path (fs: directory, s3: bucket/prefix)",
			},
			&cli.StringFlag{
				Name:  "delivery-prefix",
				Usage: "Key prefix for delivered files",
			},
			&cli.StringFlag{
				Name:  "delivery-s3-region",
				Usage: "AWS region for S3 delivery (optional, uses default chain)",
			},
			&cli.StringFlag{
				Name:  "delivery-s3-endpoint",
				Usage: "Custom S3 endpoint URL for S3-compatible providers",
			},
			&cli.BoolFlag{
				Name:  "delivery-s3-path-style",
				Usage: "Force path-style S3 addressing",
			},
			&cli.StringFlag{
				Name:  "adapter",
				Usage: "Notify adapter: webhook or redis",
			},
			&cli.StringFlag{
				Name:  "adapter-url",
				Usage: "Adapter endpoint URL",
			},
			&cli.StringFlag{
				Name:  "adapter-channel",
				Usage: "Redis channel (default: " + redis.DefaultChannel + ")",
			},
			&cli.DurationFlag{
				Name:  "adapter-timeout",
				Usage: "Per-attempt adapter timeout",
				Value: webhook.DefaultTimeout,
			},
			&cli.IntFlag{
				Name:  "adapter-retries",
				Usage: "Adapter retry attempts",
				Value: webhook.DefaultRetries,
			},
			&cli.StringSliceFlag{
				Name:  "adapter-header",
				Usage: "Webhook header as key=value (repeatable)",
			},
			// Output control
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress the batch summary",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Print lots of debugging statements",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Be verbose",
			},
		},
		Action: runAction,
	}
}

// runOptions holds the validated run flags.
type runOptions struct {
	run        types.RunContext
	input      string
	layout     string
	outputDir  string
	runID      *int
	runIDFile  string
	dateReport *int
	skipHeader int
	skipFooter int
	delimiter  rune
	quote      rune
	locale     convert.DateLocale
	overwrite  bool
	txt        bool
	move       bool
	journal    string
}

// deliveryChoice holds parsed delivery configuration.
type deliveryChoice struct {
	backend   string // "fs" or "s3"
	path      string // fs: directory, s3: bucket/prefix
	prefix    string
	dataset   string
	region    string
	endpoint  string
	pathStyle bool
}

// adapterChoice holds parsed adapter configuration.
type adapterChoice struct {
	adapterType string
	url         string
	channel     string
	headers     map[string]string
	timeout     time.Duration
	retries     int
}

func runAction(c *cli.Context) error {
	bootLogger := log.NewLoggerWithWriter(log.Context{}, errWriter(c), zapcore.WarnLevel)

	cfg, err := loadSettings(c)
	if err != nil {
		return exitError(bootLogger, err)
	}

	level, err := resolveLogLevel(c, cfg)
	if err != nil {
		return exitError(bootLogger, err)
	}
	bootLogger.SetLevel(level)

	opts, err := resolveRunOptions(c, cfg)
	if err != nil {
		return exitError(bootLogger, err)
	}

	batchID := uuid.NewString()
	logger := bootLogger.With(log.Context{BatchID: batchID, ApplicationID: opts.run.ApplicationID})
	defer iox.DiscardErr(logger.Sync)

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	// Side effects are configured before any file is touched so a bad
	// delivery or adapter setting fails the invocation up front.
	dc, err := parseDeliveryConfigWithPrecedence(c, cfg)
	if err != nil {
		return exitError(logger, err)
	}
	collector := metrics.NewCollector(opts.run.ApplicationID, dc.backendName(), batchID)

	var deliverer *delivery.Deliverer
	if dc != nil {
		deliverer, err = buildDeliverer(ctx, dc, logger, collector)
		if err != nil {
			return exitError(logger, fmt.Errorf("invalid delivery config: %w", err))
		}
	}

	var notifier adapter.Adapter
	adapterType := resolveString(c, "adapter", configVal(cfg, func(c *config.Config) string { return c.Adapter.Type }))
	if adapterType != "" {
		ac, err := parseAdapterConfigWithPrecedence(c, cfg, adapterType)
		if err != nil {
			return exitError(logger, err)
		}
		notifier, err = buildAdapter(ac)
		if err != nil {
			return exitError(logger, fmt.Errorf("invalid adapter config: %w", err))
		}
		defer iox.DiscardClose(notifier)
	}

	orchestrator, err := batch.NewOrchestrator(&batch.Config{
		BatchID:          batchID,
		Run:              opts.run,
		Input:            opts.input,
		OutputDir:        opts.outputDir,
		LayoutPath:       opts.layout,
		Delimiter:        opts.delimiter,
		Quote:            opts.quote,
		SkipHeader:       opts.skipHeader,
		SkipFooter:       opts.skipFooter,
		DateReportColumn: opts.dateReport,
		Locale:           opts.locale,
		Overwrite:        opts.overwrite,
		TxtExtension:     opts.txt,
		MoveInput:        opts.move,
		Sequencer:        runid.NewSequencer(opts.runID, opts.runIDFile),
		Converter:        convert.NewFileConverter(),
		Logger:           logger,
		Collector:        collector,
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	res, err := orchestrator.Execute(ctx)

	// Side effects run in a fixed order after the run id commit:
	// delivery, then journal, then notify.
	var (
		receipt     *delivery.Receipt
		storagePath string
	)
	if err == nil && deliverer != nil {
		receipt, err = deliverer.Deliver(ctx, res)
		if err == nil {
			storagePath = buildStoragePath(dc)
		}
	}

	if opts.journal != "" && res != nil {
		if jerr := journal.Append(opts.journal, journal.FromResult(res, err)); jerr != nil {
			if err != nil {
				logger.Warn("journal append failed", map[string]any{"error": jerr.Error()})
			} else {
				err = jerr
			}
		}
	}
	if err != nil {
		return exitError(logger, err)
	}

	if notifier != nil {
		event := adapter.NewBatchCompletedEvent(res, storagePath)
		if perr := notifier.Publish(ctx, event); perr != nil {
			collector.IncNotifyFailure()
			return exitError(logger, types.Wrap(types.KindNotifyFailed, perr, "%s notification failed", adapterType))
		}
		collector.IncNotifySuccess()
		fields := map[string]any{"adapter": adapterType}
		if rc, ok := notifier.(receiverCounter); ok {
			fields["receivers"] = rc.Receivers()
		}
		logger.Info("batch notification published", fields)
	}

	if !c.Bool("quiet") {
		printBatchResult(c.App.Writer, res, receipt, collector.Snapshot())
	}
	return nil
}

// receiverCounter is implemented by adapters that learn how many
// subscribers received the last event.
type receiverCounter interface {
	Receivers() int64
}

// errWriter is where logs go: the app's error writer, or stderr.
func errWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// resolveLogLevel picks the log level: --debug, then --verbose, then the
// settings log_level, then warn.
func resolveLogLevel(c *cli.Context, cfg *config.Config) (zapcore.Level, error) {
	switch {
	case c.Bool("debug"):
		return zapcore.DebugLevel, nil
	case c.Bool("verbose"):
		return zapcore.InfoLevel, nil
	}
	name := configVal(cfg, func(c *config.Config) string { return c.LogLevel })
	if name == "" {
		return zapcore.WarnLevel, nil
	}
	level, ok := log.ParseLevel(name)
	if !ok {
		return zapcore.WarnLevel, types.Errorf(types.KindSettingsInvalid,
			"invalid log_level %q in settings (must be debug, info, warn or error)", name)
	}
	return level, nil
}

// resolveRunOptions applies settings precedence and validates the run
// flags. Checks run in a fixed order so the first failing argument decides
// the exit status: application id, billing type, file version, run id,
// date report, skip header, skip footer, delimiter and quote.
func resolveRunOptions(c *cli.Context, cfg *config.Config) (*runOptions, error) {
	opts := &runOptions{
		input:     c.String("input"),
		layout:    resolveString(c, "config", configVal(cfg, func(c *config.Config) string { return c.Converter.Config })),
		outputDir: resolveString(c, "output-directory", configVal(cfg, func(c *config.Config) string { return c.Run.OutputDirectory })),
		runIDFile: resolveString(c, "run-id-file", configVal(cfg, func(c *config.Config) string { return c.Run.RunIDFile })),
		journal:   resolveString(c, "journal", configVal(cfg, func(c *config.Config) string { return c.Journal })),
		overwrite: resolveBool(c, "overwrite-files", configVal(cfg, func(c *config.Config) bool { return c.Run.OverwriteFiles })),
		txt:       resolveBool(c, "txt-extension", configVal(cfg, func(c *config.Config) bool { return c.Run.TxtExtension })),
		move:      resolveBool(c, "move-input", configVal(cfg, func(c *config.Config) bool { return c.Run.MoveInput })),
	}

	appID := resolveString(c, "application-id", configVal(cfg, func(c *config.Config) string { return c.Run.ApplicationID }))
	if appID == "" {
		return nil, fmt.Errorf("--application-id is required (flag or settings run.application_id)")
	}
	if opts.layout == "" {
		return nil, fmt.Errorf("--config is required (flag or settings converter.config)")
	}
	if opts.outputDir == "" {
		opts.outputDir = filepath.Join("data", time.Now().Format(time.DateOnly))
	}

	var err error
	if opts.run.ApplicationID, err = types.NormalizeApplicationID(appID); err != nil {
		return nil, err
	}
	billingType := resolveString(c, "billing-type", configVal(cfg, func(c *config.Config) string { return c.Run.BillingType }))
	if opts.run.BillingType, err = types.NormalizeBillingType(billingType); err != nil {
		return nil, err
	}
	fileVersion := resolveString(c, "file-version", configVal(cfg, func(c *config.Config) string { return c.Run.FileVersion }))
	if opts.run.FileVersion, err = types.NormalizeFileVersion(fileVersion); err != nil {
		return nil, err
	}
	opts.run.RunDescription = resolveString(c, "run-description", configVal(cfg, func(c *config.Config) string { return c.Run.RunDescription }))

	if opts.runID, err = parseRunID(c.String("run-id")); err != nil {
		return nil, err
	}
	if opts.dateReport, err = parseDateReport(c, configVal(cfg, func(c *config.Config) *int { return c.Run.DateReport })); err != nil {
		return nil, err
	}
	if opts.skipHeader, err = parseSkip(c, "skip-header", types.KindSkipHeaderInvalid,
		configVal(cfg, func(c *config.Config) *int { return c.Converter.SkipHeader })); err != nil {
		return nil, err
	}
	if opts.skipFooter, err = parseSkip(c, "skip-footer", types.KindSkipFooterInvalid,
		configVal(cfg, func(c *config.Config) *int { return c.Converter.SkipFooter })); err != nil {
		return nil, err
	}
	if opts.delimiter, err = parseChar("delimiter",
		resolveString(c, "delimiter", configVal(cfg, func(c *config.Config) string { return c.Converter.Delimiter }))); err != nil {
		return nil, err
	}
	if opts.quote, err = parseChar("quotechar",
		resolveString(c, "quotechar", configVal(cfg, func(c *config.Config) string { return c.Converter.QuoteChar }))); err != nil {
		return nil, err
	}
	if opts.delimiter == opts.quote {
		return nil, types.Errorf(types.KindDelimiterInvalid, "the `--delimiter` and `--quotechar` arguments must differ")
	}

	localeName := resolveString(c, "locale", configVal(cfg, func(c *config.Config) string { return c.Converter.Locale }))
	if months := configVal(cfg, func(c *config.Config) []string { return c.Converter.Months }); len(months) > 0 {
		opts.locale, err = convert.CustomLocale(localeName, months)
	} else {
		opts.locale, err = convert.LookupLocale(localeName)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid --locale: %w", err)
	}

	return opts, nil
}

// parseRunID validates --run-id. An empty value means the run id comes
// from the run id file.
func parseRunID(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, types.Errorf(types.KindRunIDNotNumeric, "the `--run-id` argument must be numeric")
	}
	if id < 0 || id > maxRunIDArg {
		return nil, types.Errorf(types.KindRunIDOutOfRange,
			"the `--run-id` argument must be comprised between 0 and %d", maxRunIDArg)
	}
	return &id, nil
}

// parseDateReport validates --date-report and converts the 1-based column
// number into the converter's 0-based field index. Zero disables the report.
func parseDateReport(c *cli.Context, cfgVal *int) (*int, error) {
	var column int
	switch raw := strings.TrimSpace(c.String("date-report")); {
	case c.IsSet("date-report") && raw != "":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, types.Errorf(types.KindDateReportNotNumeric, "the `--date-report` argument must be numeric")
		}
		column = n
	case cfgVal != nil:
		column = *cfgVal
	default:
		return nil, nil
	}
	if column < 0 || column > maxDateReportArg {
		return nil, types.Errorf(types.KindDateReportOutOfRange,
			"the `--date-report` argument must be comprised between 0 and %d", maxDateReportArg)
	}
	if column == 0 {
		return nil, nil
	}
	index := column - 1
	return &index, nil
}

// parseSkip validates a row skip count. The flag is a string so that a
// non-numeric value reaches validation instead of failing flag parsing.
func parseSkip(c *cli.Context, name string, kind types.ErrorKind, cfgVal *int) (int, error) {
	raw := c.String(name)
	if !c.IsSet(name) && cfgVal != nil {
		raw = strconv.Itoa(*cfgVal)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, types.Errorf(kind, "the `--%s` argument must be a non-negative integer, got %q", name, raw)
	}
	return n, nil
}

// parseChar validates a one-character delimiter or quote argument.
// The two-character sequence \t stands for a tab.
func parseChar(name, raw string) (rune, error) {
	if raw == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(raw) != 1 {
		return 0, types.Errorf(types.KindDelimiterInvalid, "the `--%s` argument must be exactly one character, got %q", name, raw)
	}
	r, _ := utf8.DecodeRuneInString(raw)
	return r, nil
}

// parseDeliveryConfigWithPrecedence resolves the delivery flags against
// the settings file. Returns nil when delivery is not configured.
func parseDeliveryConfigWithPrecedence(c *cli.Context, cfg *config.Config) (*deliveryChoice, error) {
	dc := &deliveryChoice{
		backend:   resolveString(c, "delivery-backend", configVal(cfg, func(c *config.Config) string { return c.Delivery.Backend })),
		path:      resolveString(c, "delivery-path", configVal(cfg, func(c *config.Config) string { return c.Delivery.Path })),
		prefix:    resolveString(c, "delivery-prefix", configVal(cfg, func(c *config.Config) string { return c.Delivery.Prefix })),
		dataset:   configVal(cfg, func(c *config.Config) string { return c.Delivery.Dataset }),
		region:    resolveString(c, "delivery-s3-region", configVal(cfg, func(c *config.Config) string { return c.Delivery.Region })),
		endpoint:  resolveString(c, "delivery-s3-endpoint", configVal(cfg, func(c *config.Config) string { return c.Delivery.Endpoint })),
		pathStyle: resolveBool(c, "delivery-s3-path-style", configVal(cfg, func(c *config.Config) bool { return c.Delivery.S3PathStyle })),
	}

	switch {
	case dc.backend == "" && dc.path == "":
		return nil, nil
	case dc.backend == "":
		return nil, fmt.Errorf("--delivery-backend is required when --delivery-path is set")
	case dc.path == "":
		return nil, fmt.Errorf("--delivery-path is required when --delivery-backend is set")
	}
	switch dc.backend {
	case delivery.BackendFS, delivery.BackendS3:
	default:
		return nil, fmt.Errorf("invalid --delivery-backend: %q (must be fs or s3)", dc.backend)
	}
	return dc, nil
}

// backendName labels metrics; "none" when delivery is off.
func (dc *deliveryChoice) backendName() string {
	if dc == nil {
		return "none"
	}
	return dc.backend
}

func buildDeliverer(ctx context.Context, dc *deliveryChoice, logger *log.Logger, collector *metrics.Collector) (*delivery.Deliverer, error) {
	factory, err := delivery.NewFactory(ctx, delivery.BackendConfig{
		Backend:      dc.backend,
		Path:         dc.path,
		Region:       dc.region,
		Endpoint:     dc.endpoint,
		UsePathStyle: dc.pathStyle,
	})
	if err != nil {
		return nil, err
	}
	return delivery.New(factory, delivery.Config{
		Dataset:   dc.dataset,
		Prefix:    dc.prefix,
		Backend:   dc.backend,
		Logger:    logger,
		Collector: collector,
	})
}

// buildStoragePath renders the delivery root as a URL for the batch
// completed event: file:///abs/dir[/prefix] or s3://bucket[/prefix].
func buildStoragePath(dc *deliveryChoice) string {
	switch dc.backend {
	case delivery.BackendFS:
		abs, err := filepath.Abs(dc.path)
		if err != nil {
			abs = dc.path
		}
		return "file://" + filepath.ToSlash(filepath.Join(abs, dc.prefix))
	case delivery.BackendS3:
		bucket, prefix := delivery.ParseS3Path(dc.path)
		parts := []string{bucket}
		for _, p := range []string{prefix, strings.Trim(dc.prefix, "/")} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		return "s3://" + strings.Join(parts, "/")
	default:
		return dc.path
	}
}

// parseAdapterConfigWithPrecedence resolves the adapter flags for
// adapterType against the settings file.
func parseAdapterConfigWithPrecedence(c *cli.Context, cfg *config.Config, adapterType string) (*adapterChoice, error) {
	ac := &adapterChoice{
		adapterType: adapterType,
		url:         resolveString(c, "adapter-url", configVal(cfg, func(c *config.Config) string { return c.Adapter.URL })),
		channel:     resolveString(c, "adapter-channel", configVal(cfg, func(c *config.Config) string { return c.Adapter.Channel })),
		timeout:     resolveDuration(c, "adapter-timeout", configVal(cfg, func(c *config.Config) time.Duration { return c.Adapter.Timeout.Duration })),
		retries:     resolveIntPtr(c, "adapter-retries", configVal(cfg, func(c *config.Config) *int { return c.Adapter.Retries })),
		headers:     make(map[string]string),
	}

	switch adapterType {
	case adapter.TypeWebhook, adapter.TypeRedis:
	default:
		return nil, fmt.Errorf("unknown adapter type %q (must be %s or %s)", adapterType, adapter.TypeWebhook, adapter.TypeRedis)
	}
	if ac.url == "" {
		return nil, fmt.Errorf("--adapter-url is required when --adapter=%s", adapterType)
	}
	if ac.retries < 0 {
		return nil, fmt.Errorf("--adapter-retries must be >= 0, got %d", ac.retries)
	}

	// Settings headers first, then CLI headers override per key.
	for k, v := range configVal(cfg, func(c *config.Config) map[string]string { return c.Adapter.Headers }) {
		ac.headers[k] = v
	}
	for _, h := range c.StringSlice("adapter-header") {
		k, v, ok := strings.Cut(h, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --adapter-header %q (expected key=value)", h)
		}
		ac.headers[strings.TrimSpace(k)] = v
	}
	return ac, nil
}

func buildAdapter(ac *adapterChoice) (adapter.Adapter, error) {
	switch ac.adapterType {
	case adapter.TypeWebhook:
		return webhook.New(webhook.Config{
			URL:     ac.url,
			Headers: ac.headers,
			Timeout: ac.timeout,
			Retries: ac.retries,
		})
	case adapter.TypeRedis:
		return redis.New(redis.Config{
			URL:     ac.url,
			Channel: ac.channel,
			Timeout: ac.timeout,
			Retries: ac.retries,
		})
	default:
		return nil, fmt.Errorf("unknown adapter type %q", ac.adapterType)
	}
}

func printBatchResult(w io.Writer, res *batch.Result, receipt *delivery.Receipt, snap metrics.Snapshot) {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "\nbatch_id=%s, files=%d, rows=%d, duration=%s\n",
		res.BatchID,
		len(res.Files),
		res.RowCount(),
		res.Duration().Round(time.Millisecond),
	)

	fmt.Fprintf(w, "\n=== Batch Result ===\n")
	fmt.Fprintf(w, "Application:  %s\n", res.Run.ApplicationID)
	if res.Run.RunDescription != "" {
		fmt.Fprintf(w, "Description:  %s\n", res.Run.RunDescription)
	}
	fmt.Fprintf(w, "Output Dir:   %s\n", res.OutputDir)
	fmt.Fprintf(w, "Next Run ID:  %d\n", res.NextRunID)

	fmt.Fprintf(w, "\n=== Files ===\n")
	for _, f := range res.Files {
		fmt.Fprintf(w, "  %s  %s -> %s, %s (%d rows, %s..%s)\n",
			runid.FilenameID(f.RunID),
			filepath.Base(f.Input),
			filepath.Base(f.MetadataPath),
			filepath.Base(f.DetailedPath),
			f.Conversion.RowCount,
			f.Conversion.OldestDate,
			f.Conversion.MostRecentDate,
		)
		if f.MovedTo != "" {
			fmt.Fprintf(w, "        moved to %s\n", f.MovedTo)
		}
	}

	if receipt != nil {
		fmt.Fprintf(w, "\n=== Delivery ===\n")
		fmt.Fprintf(w, "Objects:      %d\n", len(receipt.Keys))
		fmt.Fprintf(w, "Manifest:     %d records\n", receipt.ManifestRecords)
	}

	fmt.Fprintf(w, "\n=== Metrics ===\n")
	fmt.Fprintf(w, "Files Converted:  %d\n", snap.FilesConverted)
	fmt.Fprintf(w, "Rows Converted:   %d\n", snap.RowsConverted)
	fmt.Fprintf(w, "Run IDs Assigned: %d\n", snap.RunIDsAssigned)
	if snap.StorageBackend != "none" {
		fmt.Fprintf(w, "Delivery Puts:    %d ok, %d failed\n", snap.DeliveryPutSuccess, snap.DeliveryPutFailure)
	}
	if snap.NotifySuccess+snap.NotifyFailure > 0 {
		fmt.Fprintf(w, "Notifications:    %d ok, %d failed\n", snap.NotifySuccess, snap.NotifyFailure)
	}
}
