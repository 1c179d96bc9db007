package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/windeq/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML configuration files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// The document is converted as follows:
//   - Nested mappings are flattened, joining keys with "-", so
//     "log: {level: debug}" sets --log-level
//   - Keys may use "_" in place of "-"
//   - Numbers and booleans are passed as text for kong to parse
//   - Sequences are joined with "," for slice flags
//
// A file that cannot be parsed is logged and ignored. Command-line flags
// override configuration values.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		if err := yaml.NewDecoder(r).DecodeContext(ctx, &doc); err != nil && err != io.EOF {
			log.WarnContext(ctx, "ignoring configuration file", slog.Any("error", err))

			return config{}, nil
		}

		cfg := make(config)
		cfg.flatten("", doc)

		return cfg, nil
	}
}

// config implements [kong.Resolver] over a flattened configuration map.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	if v, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return v, nil
	}

	return nil, nil
}

func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		if prefix != "" {
			k = prefix + "-" + k
		}

		if sub, ok := v.(map[string]any); ok {
			c.flatten(k, sub)

			continue
		}

		c[k] = scalar(v)
	}
}

// scalar returns v in the form kong parses flag values from.
func scalar(v any) any {
	switch t := v.(type) {
	case nil, string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case uint64:
		return strconv.FormatUint(t, 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case []any:
		part := make([]string, len(t))
		for i, e := range t {
			part[i] = fmt.Sprint(scalar(e))
		}

		return strings.Join(part, ",")
	}

	return fmt.Sprint(v)
}
