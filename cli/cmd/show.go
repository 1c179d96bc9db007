package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/windeq/lang"
	"github.com/ardnew/windeq/library"
)

// Show prints the equation library, or one item of it.
type Show struct {
	Key    string `arg:"" help:"Path or expression to resolve, such as turbine::capex_12MW" optional:""`
	Output string `default:"text" enum:"text,json,yaml" help:"Output format for a single formula" short:"o"`
}

// Run executes the show command.
func (s *Show) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	dir, err := libraryFrom(ctx).require(ctx)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	if s.Key == "" {
		_, err = fmt.Fprintln(w, dir.String())

		return err
	}

	it, err := dir.Get(s.Key)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "show"),
			slog.String("key", s.Key),
		)
	}

	f, ok := it.Formula()
	if !ok {
		_, err = fmt.Fprintln(w, it.String())

		return err
	}

	return formulaRecords(s.Key, f).write(ctx, w, s.Output)
}

// formulaRecords describes f for printing.
func formulaRecords(key string, f *lang.Formula) records {
	defaults := f.Defaults()
	drecs := make(records, 0, len(defaults))

	for _, k := range defaults.Keys() {
		drecs = append(drecs, record{Key: k, Value: defaults[k]})
	}

	return records{
		{Key: "key", Value: key},
		{Key: "kind", Value: library.ItemFormula.String()},
		{Key: "signature", Value: f.String()},
		{Key: "expression", Value: f.Text()},
		{Key: "variables", Value: nonNil(f.Variables())},
		{Key: "required", Value: nonNil(f.Required())},
		{Key: "defaults", Value: drecs},
	}
}
