package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/windeq/log"
)

// logFormat configures the logger format as a side effect of parsing via
// encoding.TextUnmarshaler, so that parse errors are logged in that format.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing via
// encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"${logLevelDefault}"  enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"${logFormatDefault}" enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                                     help:"Set timestamp format (Go layout or name such as RFC3339, ms, none)."`
	Caller     bool      `default:"false"                                       help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"false"                                       help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelDefault":  log.DefaultLevel.String(),
		"logLevelEnum":     strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatDefault": log.DefaultFormat.String(),
		"logFormatEnum":    strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

// start applies every parsed logger option.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan performs an early pass over command-line arguments to apply logger
// flags before kong begins parsing, regardless of their position. Boolean
// flags never reach an encoding.TextUnmarshaler, so this is the only way
// they take effect during parsing.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg, negated := args[i], false

		name, ok := strings.CutPrefix(arg, "--log-")
		if !ok {
			if name, ok = strings.CutPrefix(arg, "--no-log-"); !ok {
				continue
			}

			negated = true
		}

		name, value, assigned := strings.Cut(name, "=")

		// Non-boolean flags consume the next argument if not assigned.
		next := func() string {
			if !assigned && i+1 < len(args) && args[i+1] != "" && args[i+1][0] != '-' {
				i++

				return args[i]
			}

			return value
		}

		// Boolean flags only take a value if explicitly assigned.
		flag := func() (bool, bool) {
			v := true

			if assigned {
				var err error
				if v, err = strconv.ParseBool(value); err != nil {
					return false, false
				}
			}

			return v != negated, true
		}

		switch name {
		case "level":
			if !negated {
				_ = f.Level.UnmarshalText([]byte(next()))
			}

		case "format":
			if !negated {
				_ = f.Format.UnmarshalText([]byte(next()))
			}

		case "pretty":
			if v, ok := flag(); ok {
				f.Pretty = v
				log.Config(log.WithPretty(v))
			}

		case "caller":
			if v, ok := flag(); ok {
				f.Caller = v
				log.Config(log.WithCaller(v))
			}
		}
	}
}
