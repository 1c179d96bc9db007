package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/windeq/log"
	"github.com/ardnew/windeq/profile"
)

// configDirMode is the permission mode of a created configuration directory.
const configDirMode os.FileMode = 0o700

// Init writes the configuration file from the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	path, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	if _, err := os.Stat(path); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", path), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(ctx, flagValues(ktx), yaml.Indent(outputIndent))
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)

	return nil
}

// ignoredFlags are flag name prefixes never written to the configuration.
var ignoredFlags = []string{"help", "version", profile.Tag}

// flagValues returns the set values of the application's global flags in
// declaration order.
func flagValues(ktx *kong.Context) yaml.MapSlice {
	var ms yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignoredFlags, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := configValue(ktx.FlagValue(flag)); v != nil {
			ms = append(ms, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return ms
}

// configValue returns v as written to the configuration file, or nil if v
// is unset.
func configValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
	case []string:
		if len(t) == 0 {
			return nil
		}
	case kong.VersionFlag:
		return nil
	}

	return v
}
