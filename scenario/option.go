package scenario

import (
	"github.com/ardnew/windeq/library"
	"github.com/ardnew/windeq/log"
)

// Option configures a [Config].
type Option func(*options)

type options struct {
	dir    *library.Directory
	policy *library.Policy
	inputs any
	logger log.Logger
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithDirectory sets the equation library used when the configuration does
// not name an equation_directory.
func WithDirectory(d *library.Directory) Option {
	return func(o *options) { o.dir = d }
}

// WithPolicy sets the variant resolution policy. Policy keys present in the
// configuration override the corresponding fields of p.
func WithPolicy(p library.Policy) Option {
	return func(o *options) { o.policy = &p }
}

// WithInputs sets the initial inputs. See [Config.SetInputs] for the
// accepted types.
func WithInputs(inputs any) Option {
	return func(o *options) { o.inputs = inputs }
}

// WithLogger sets the logger used for trace output.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}
