// Package log is a small structured logging layer over [log/slog].
//
// A [Logger] is created with [Make] and configured with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("rfc3339nano"),
//		log.WithCaller(true))
//
//	logger.Info("directory loaded", slog.String("root", root))
//
// Attributes are typed [slog.Attr] values only; there is no key/value pair
// variant. [Logger.With] and [Logger.WithGroup] derive loggers that add
// attributes to every message.
//
// Five levels are defined, from [LevelTrace] to [LevelError]. Trace is used
// for per-entry detail of parsing and solving that is too noisy for Debug.
//
// With [WithPretty] enabled, text output is a single colorized line per
// message and JSON output becomes an indented colorized block, meant for a
// terminal rather than a log collector.
//
// The zero [Logger] discards everything. The package-level functions write
// to a default logger on [os.Stderr], adjusted with [Config] or replaced
// with [SetDefault].
package log
