package log

//go:generate go tool stringer --linecomment --type Level,Format --output config_string.go

import (
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4) // trace
	LevelDebug Level = Level(slog.LevelDebug)     // debug
	LevelInfo  Level = Level(slog.LevelInfo)      // info
	LevelWarn  Level = Level(slog.LevelWarn)      // warn
	LevelError Level = Level(slog.LevelError)     // error
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

// Levels returns an iterator over the names of all defined log levels.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, level := range []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError} {
			if !yield(level.String()) {
				return
			}
		}
	}
}

// ParseLevel parses the name of a log level, optionally followed by a "+" or
// "-" and an integer offset as accepted by [slog.Level.UnmarshalText].
// Unknown names yield [DefaultLevel].
func ParseLevel(s string) Level {
	// slog does not know about trace.
	if strings.EqualFold(strings.TrimSpace(s), "trace") {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

// Formats returns an iterator over the names of all defined log formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, format := range []Format{FormatText, FormatJSON} {
			if !yield(format.String()) {
				return
			}
		}
	}
}

// ParseFormat parses "text" or "json". Anything else yields [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	}

	return DefaultFormat
}

// DefaultTimeLayout is the default timestamp layout.
const DefaultTimeLayout = time.RFC3339

// DefaultCaller is the default setting for including caller information.
const DefaultCaller = false

// DefaultPretty is the default setting for colorized output.
const DefaultPretty = false

// config holds the settings of a Logger. It is copied, never shared, so it
// needs no locking.
type config struct {
	output     io.Writer
	formatTime func(time.Time) string
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option modifies a Logger configuration.
type Option func(*config)

func makeConfig(w io.Writer, opts ...Option) config {
	c := config{
		output:     w,
		formatTime: makeFormatTime(DefaultTimeLayout),
		level:      DefaultLevel,
		format:     DefaultFormat,
		caller:     DefaultCaller,
		pretty:     DefaultPretty,
	}

	if c.output == nil {
		c.output = io.Discard
	}

	return c.with(opts...)
}

func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// WithOutput sets the destination of log messages.
// A nil writer discards them.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	}
}

// WithLevel sets the minimum level of messages written.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithTimeLayout sets the timestamp layout.
//
// The layout may name a layout of the [time] package, case-insensitively and
// ignoring punctuation ("RFC3339", "rfc-3339-nano", "kitchen"), or one of the
// shorthands "ms", "us" and "ns". Any other layout is passed verbatim to
// [time.Time.Format]. An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c *config) { c.formatTime = makeFormatTime(layout) }
}

// WithCaller sets whether the source location of the caller is included.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty sets whether output is colorized for a terminal.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}

// handlerOptions returns the slog options implied by c.
func (c config) handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}
}

func (c config) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			s := c.formatTime(t)
			if s == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(s)
		}

	case slog.LevelKey:
		// Print "TRACE" rather than "DEBUG-4".
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
		}
	}

	return a
}

func (c config) handler() slog.Handler {
	opts := c.handlerOptions()

	switch {
	case c.pretty:
		return newPrettyHandler(c.output, opts, c.format == FormatJSON)
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	case c.format == FormatText:
		return slog.NewTextHandler(c.output, opts)
	}

	return slog.DiscardHandler
}

var timeLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"ms":          time.StampMilli,
	"stampmicro":  time.StampMicro,
	"us":          time.StampMicro,
	"stampnano":   time.StampNano,
	"ns":          time.StampNano,
	"none":        "",
}

func makeFormatTime(layout string) func(time.Time) string {
	key := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if std, ok := timeLayout[key]; ok {
		layout = std
	}

	if key == "" || layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
