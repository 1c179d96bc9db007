package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/windeq/lang"
	"github.com/ardnew/windeq/scenario"
)

// Inputs lists the variables a scenario needs before it can be solved.
type Inputs struct {
	Config string   `arg:""                                      help:"Scenario configuration file"  type:"existingfile"`
	Input  []string `help:"Input file already available"         placeholder:"FILE"                  short:"i"           type:"existingfile"`
	Output string   `default:"text" enum:"text,json,yaml" help:"Output format" short:"o"`
}

// Run executes the inputs command.
func (in *Inputs) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	c, err := openConfig(ctx, in.Config)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "inputs"))
	}

	for _, name := range in.Input {
		b, err := scenario.ReadInputs(ctx, name)
		if err != nil {
			return err
		}

		if err := c.SetInputs(b); err != nil {
			return err
		}
	}

	globals := c.GlobalVariables()
	grecs := make(records, 0, len(globals))

	for _, k := range globals.Keys() {
		grecs = append(grecs, record{Key: k, Value: globals[k]})
	}

	recs := records{
		{Key: "required", Value: nonNil(c.RequiredInputs())},
		{Key: "missing", Value: nonNil(c.MissingInputs())},
		{Key: "unsolved", Value: nonNil(c.ToBeSolved())},
		{Key: "solvable", Value: c.Solvable()},
		{Key: "globals", Value: grecs},
		{Key: "policy", Value: policyRecords(c.Directory().Policy())},
	}

	return recs.write(ctx, outputFrom(ctx), in.Output)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
