package cmd

import "github.com/ardnew/windeq/lang"

// Command errors. Like the library errors, each carries slog attributes and
// matches its sentinel with [errors.Is] through Wrap and With.
var (
	ErrNoLibrary   = lang.NewError("no equation library (use -L or $WINDEQ_PATH)")
	ErrBinding     = lang.NewError("invalid binding")
	ErrMarshal     = lang.NewError("marshal output")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
)
