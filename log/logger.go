// Package log provides structured logging with batch context.
//
// Two logger variants are available:
//   - Logger: Non-sugared zap.Logger for the batch core (structured fields)
//   - SugaredLogger: Printf-style logging for CLI surfaces
//
// Use Logger.Sugar() to obtain a SugaredLogger when needed.
package log

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Context identifies the batch a logger reports on.
// Empty fields are omitted from log entries.
type Context struct {
	BatchID       string
	ApplicationID string
	RunID         string
}

// Logger provides structured logging with batch context.
//
// Use this for the batch core. For CLI output, use Sugar().
type Logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel
}

// SugaredLogger provides printf-style logging for CLI surfaces.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a logger with batch context writing to os.Stderr at info level.
func NewLogger(ctx Context) *Logger {
	return NewLoggerWithWriter(ctx, os.Stderr, zapcore.InfoLevel)
}

// NewLoggerWithWriter creates a logger writing to w at the given level.
func NewLoggerWithWriter(ctx Context, w io.Writer, level zapcore.Level) *Logger {
	atom := zap.NewAtomicLevelAt(level)
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(w),
		atom,
	)
	return &Logger{zap: zap.New(core).With(contextFields(ctx)...), level: atom}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
}

// ParseLevel maps a level name (debug, info, warn, error) to a zap level.
// Unknown names return false.
func ParseLevel(name string) (zapcore.Level, bool) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return zapcore.InfoLevel, false
	}
	return lvl, true
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
}

func contextFields(ctx Context) []zap.Field {
	var fields []zap.Field
	if ctx.BatchID != "" {
		fields = append(fields, zap.String("batch_id", ctx.BatchID))
	}
	if ctx.ApplicationID != "" {
		fields = append(fields, zap.String("application_id", ctx.ApplicationID))
	}
	if ctx.RunID != "" {
		fields = append(fields, zap.String("run_id", ctx.RunID))
	}
	return fields
}

// With returns a logger carrying additional batch context.
// The level is shared with the parent.
func (l *Logger) With(ctx Context) *Logger {
	return &Logger{zap: l.zap.With(contextFields(ctx)...), level: l.level}
}

// SetLevel changes the minimum level of this logger and its children.
func (l *Logger) SetLevel(level zapcore.Level) {
	l.level.SetLevel(level)
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Sugar returns a SugaredLogger for printf-style logging.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Debugf logs a debug message with printf-style formatting.
func (s *SugaredLogger) Debugf(template string, args ...any) {
	s.sugar.Debugf(template, args...)
}

// Infof logs an info message with printf-style formatting.
func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (s *SugaredLogger) Warnf(template string, args ...any) {
	s.sugar.Warnf(template, args...)
}

// Errorf logs an error message with printf-style formatting.
func (s *SugaredLogger) Errorf(template string, args ...any) {
	s.sugar.Errorf(template, args...)
}

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
