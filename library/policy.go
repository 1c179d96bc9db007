package library

import (
	"log/slog"

	"github.com/ardnew/windeq/log"
)

// Policy selects how a lookup of an absent power- or year-suffixed key is
// resolved from its siblings. Interpolation takes priority over nearest
// match on each axis.
type Policy struct {
	NearestPower bool `yaml:"use_nearest_power"   toml:"use_nearest_power"`
	InterpPower  bool `yaml:"interp_extrap_power" toml:"interp_extrap_power"`
	NearestYear  bool `yaml:"use_nearest_year"    toml:"use_nearest_year"`
	InterpYear   bool `yaml:"interp_extrap_year"  toml:"interp_extrap_year"`
}

// LogValue implements [slog.LogValuer].
func (p Policy) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("nearest_power", p.NearestPower),
		slog.Bool("interp_power", p.InterpPower),
		slog.Bool("nearest_year", p.NearestYear),
		slog.Bool("interp_year", p.InterpYear),
	)
}

// Option configures loading and lookup.
type Option func(*options)

type options struct {
	policy Policy
	logger log.Logger
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithPolicy sets the variant resolution policy.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the logger used for trace output.
// The zero Logger discards everything.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}
