package cmd

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/windeq/lang"
	"github.com/ardnew/windeq/library"
	"github.com/ardnew/windeq/log"
	"github.com/ardnew/windeq/scenario"
)

// Eval solves a scenario configuration and prints its outputs.
type Eval struct {
	Config string   `arg:""                         help:"Scenario configuration file"                   type:"existingfile"`
	Keys   []string `arg:""                         help:"Entries to print (default: all solved entries)" optional:""`
	Input  []string `help:"Input file (CSV, YAML, JSON or TOML)"  placeholder:"FILE"      short:"i"   type:"existingfile"`
	Set    []string `help:"Bind an input variable (comma-separated values make a vector)" placeholder:"NAME=VALUE" short:"s"`
	Output string   `default:"text" enum:"text,json,yaml" help:"Output format"           short:"o"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	c, err := openConfig(ctx, e.Config)
	if err != nil {
		return err
	}

	for _, name := range e.Input {
		b, err := scenario.ReadInputs(ctx, name)
		if err != nil {
			return err
		}

		if err := c.SetInputs(b); err != nil {
			return err
		}
	}

	set, err := parseBindings(e.Set)
	if err != nil {
		return err
	}

	if len(set) > 0 {
		if err := c.SetInputs(set); err != nil {
			return err
		}
	}

	out, err := c.Evaluate(ctx, nil)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "eval"),
			slog.String("config", e.Config),
		)
	}

	keys := e.Keys
	if len(keys) == 0 {
		keys = slices.DeleteFunc(c.Keys(), func(k string) bool {
			_, ok := out[k]

			return !ok
		})
	}

	recs := make(records, 0, len(keys))

	for _, k := range keys {
		v, ok := out[k]
		if !ok {
			res, err := c.Get(k)
			if err != nil {
				return lang.WrapError(err).With(slog.String("command", "eval"))
			}

			recs = append(recs, record{Key: k, Value: res.String()})

			continue
		}

		recs = append(recs, record{Key: k, Value: v})
	}

	return recs.write(ctx, outputFrom(ctx), e.Output)
}

// openConfig opens the scenario at path over the library from ctx.
func openConfig(ctx context.Context, path string) (*scenario.Config, error) {
	lib := libraryFrom(ctx)

	dir, err := lib.Load(ctx)
	if err != nil {
		return nil, err
	}

	opts := []scenario.Option{
		scenario.WithPolicy(lib.Policy),
		scenario.WithLogger(log.Default()),
	}

	if dir != nil {
		opts = append(opts, scenario.WithDirectory(dir))
	}

	return scenario.Open(ctx, path, opts...)
}

// parseBindings parses "name=value" arguments. A value is a number or a
// comma-separated list of numbers.
func parseBindings(args []string) (lang.Bindings, error) {
	if len(args) == 0 {
		return nil, nil
	}

	b := make(lang.Bindings, len(args))

	for _, arg := range args {
		name, text, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)

		if !ok || !lang.IsIdentifier(name) {
			return nil, ErrBinding.With(slog.String("binding", arg))
		}

		fields := strings.Split(text, ",")
		vals := make([]float64, len(fields))

		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, ErrBinding.Wrap(err).With(slog.String("binding", arg))
			}

			vals[i] = v
		}

		if len(vals) == 1 {
			b[name] = lang.Scalar(vals[0])
		} else {
			b[name] = lang.Vector(vals)
		}
	}

	return b, nil
}

// policyRecords describes p for printing.
func policyRecords(p library.Policy) records {
	return records{
		{Key: scenario.KeyNearestPower, Value: p.NearestPower},
		{Key: scenario.KeyInterpPower, Value: p.InterpPower},
		{Key: scenario.KeyNearestYear, Value: p.NearestYear},
		{Key: scenario.KeyInterpYear, Value: p.InterpYear},
	}
}
