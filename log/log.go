package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger wraps a [slog.Logger] with its configuration.
//
// The zero value is a valid Logger that discards everything, so components
// may embed one without checking whether logging was configured.
type Logger struct {
	*slog.Logger
	config
}

// Make creates a new [Logger] that writes to w.
// The default configuration is [DefaultFormat], [DefaultLevel],
// [DefaultTimeLayout], [DefaultCaller] and [DefaultPretty].
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// Wrap returns a new [Logger] using the configuration of l modified by opts.
// Attributes added to l with [Logger.With] are not carried over.
func (l Logger) Wrap(opts ...Option) Logger {
	if l.Logger == nil {
		return Make(nil, opts...)
	}

	cfg := l.with(opts...)

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// With returns a new [Logger] that includes attrs in each message.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil || len(attrs) == 0 {
		return l
	}

	return Logger{
		config: l.config,
		Logger: slog.New(l.Handler().WithAttrs(attrs)),
	}
}

// WithGroup returns a new [Logger] that qualifies attributes added after it
// with the given group name.
func (l Logger) WithGroup(name string) Logger {
	if l.Logger == nil || name == "" {
		return l
	}

	return Logger{
		config: l.config,
		Logger: slog.New(l.Handler().WithGroup(name)),
	}
}

// Level returns the minimum log level.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	return l.level
}

// Format returns the log output format.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	return l.format
}

// Enabled reports whether l writes messages at the given level.
func (l Logger) Enabled(ctx context.Context, level Level) bool {
	if l.Logger == nil {
		return false
	}

	return l.Logger.Enabled(ctx, slog.Level(level))
}

// TraceContext logs a message at Trace level with the provided context.
func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelTrace, msg, attrs...)
}

// Trace logs a message at Trace level.
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelTrace, msg, attrs...)
}

// DebugContext logs a message at Debug level with the provided context.
func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelDebug, msg, attrs...)
}

// Debug logs a message at Debug level.
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelDebug, msg, attrs...)
}

// InfoContext logs a message at Info level with the provided context.
func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelInfo, msg, attrs...)
}

// Info logs a message at Info level.
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelInfo, msg, attrs...)
}

// WarnContext logs a message at Warn level with the provided context.
func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelWarn, msg, attrs...)
}

// Warn logs a message at Warn level.
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelWarn, msg, attrs...)
}

// ErrorContext logs a message at Error level with the provided context.
func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelError, msg, attrs...)
}

// Error logs a message at Error level.
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.logContext(DefaultContextProvider(), LevelError, msg, attrs...)
}

// logContext must be called directly from an exported method of Logger or
// from a package-level function; the caller frame depth depends on it.
func (l Logger) logContext(
	ctx context.Context,
	level Level,
	msg string,
	attrs ...slog.Attr,
) {
	if l.Logger == nil {
		return
	}

	if ctx == nil {
		ctx = DefaultContextProvider()
	}

	if !l.Logger.Enabled(ctx, slog.Level(level)) {
		return
	}

	var pc uintptr

	if l.caller {
		var pcs [1]uintptr
		// runtime.Callers, logContext, the exported method.
		runtime.Callers(3, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pc)
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
