package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/windeq/lang"
	"github.com/ardnew/windeq/library"
)

// SetInputs merges x into the inputs. A nil x clears them.
//
// x may be [lang.Bindings], a [Columns] table, or a map from names to
// numbers, numeric slices or numeric strings. Integers become floats.
func (c *Config) SetInputs(x any) error {
	var (
		b   lang.Bindings
		err error
	)

	switch v := x.(type) {
	case nil:
		c.inputs = nil

		return nil
	case lang.Bindings:
		b = maps.Clone(v)
	case map[string]lang.Value:
		b = maps.Clone(v)
	case Columns:
		b = columnBindings(v)
	case map[string]float64:
		b, err = lang.BindingsOf(v)
	case map[string][]float64:
		b, err = lang.BindingsOf(v)
	case map[string]int:
		b, err = lang.BindingsOf(v)
	case map[string][]int:
		b, err = lang.BindingsOf(v)
	case map[string]any:
		b, err = lang.BindingsOf(v)
	default:
		return lang.ErrType.With(slog.String("inputs", fmt.Sprintf("%T", x)))
	}

	if err != nil {
		return lang.WrapError(err).With(slog.String("config", c.source()))
	}

	c.inputs = c.inputs.Merge(b)

	return nil
}

// Evaluate solves every Formula entry not yet solved and returns all
// outputs. Non-nil inputs are merged first, as by [Config.SetInputs].
//
// Entries are evaluated in dependency order, each seeing the inputs and the
// outputs computed before it, with globals as defaults. Outputs are
// committed only when every entry succeeds. Call [Config.ResetOutput] to
// recompute entries after changing inputs.
func (c *Config) Evaluate(ctx context.Context, inputs any) (lang.Bindings, error) {
	if inputs != nil {
		if err := c.SetInputs(inputs); err != nil {
			return nil, err
		}
	}

	if missing := c.MissingInputs(); len(missing) > 0 {
		return nil, lang.ErrMissingInput.With(
			slog.String("config", c.source()),
			lang.Strings("missing", missing),
		)
	}

	order, unresolved := c.graph().sort()
	if len(unresolved) > 0 {
		return nil, lang.ErrNonConvergence.With(
			slog.String("config", c.source()),
			lang.Strings("unresolved", unresolved),
		)
	}

	staged := maps.Clone(c.outputs)
	if staged == nil {
		staged = make(lang.Bindings, len(order))
	}

	for _, k := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, done := staged[k]; done {
			continue
		}

		f, _ := c.entries[k].Formula()

		v, err := f.Evaluate(c.inputs.Merge(staged))
		if err != nil {
			return nil, lang.WrapError(err).With(slog.String("key", k))
		}

		c.logger.TraceContext(ctx, "solve entry",
			slog.String("key", k),
			slog.String("value", v.String()),
		)

		staged[k] = v
	}

	c.outputs = staged

	c.logger.DebugContext(ctx, "scenario solved",
		slog.String("config", c.source()),
		slog.Int("outputs", len(staged)),
	)

	return maps.Clone(staged), nil
}

// graph links each Formula entry to the Formula entries whose outputs it
// references.
func (c *Config) graph() *graph {
	g := newGraph()

	keys := c.formulaKeys()
	for _, k := range keys {
		g.addNode(k)
	}

	for _, k := range keys {
		f, _ := c.entries[k].Formula()
		for _, v := range f.Variables() {
			g.addEdge(v, k)
		}
	}

	return g
}

func (c *Config) formulaKeys() []string {
	var keys []string

	for _, k := range c.keys {
		if c.entries[k].Kind() == library.ItemFormula {
			keys = append(keys, k)
		}
	}

	return keys
}

// ResetOutput discards the outputs of the given keys, or all outputs when no
// key is given.
func (c *Config) ResetOutput(keys ...string) {
	if len(keys) == 0 {
		c.outputs = nil

		return
	}

	for _, k := range keys {
		delete(c.outputs, k)
	}
}

// Path returns the configuration file path, or "" for an in-memory
// configuration.
func (c *Config) Path() string { return c.path }

// Directory returns the equation library.
func (c *Config) Directory() *library.Directory { return c.dir }

// Keys returns the entry keys in declaration order.
func (c *Config) Keys() []string { return slices.Clone(c.keys) }

// Entry returns the parsed entry for key.
func (c *Config) Entry(key string) (library.Item, bool) {
	it, ok := c.entries[key]

	return it, ok
}

// Inputs returns a copy of the bound inputs.
func (c *Config) Inputs() lang.Bindings { return maps.Clone(c.inputs) }

// Outputs returns a copy of the solved outputs.
func (c *Config) Outputs() lang.Bindings { return maps.Clone(c.outputs) }

// GlobalVariables returns a copy of the constant entries, including those
// folded from constant Formulas.
func (c *Config) GlobalVariables() lang.Scope { return c.globals.Clone() }

// AllVariables returns the sorted union of the globals and every variable of
// every Formula entry.
func (c *Config) AllVariables() []string {
	names := c.globals.Keys()

	for _, k := range c.formulaKeys() {
		f, _ := c.entries[k].Formula()
		names = append(names, f.Variables()...)
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// RequiredInputs returns the sorted variables of the Formula entries that
// are neither globals, entry keys nor defaults of their Formula.
func (c *Config) RequiredInputs() []string {
	var names []string

	for _, k := range c.formulaKeys() {
		f, _ := c.entries[k].Formula()
		defaults := f.Defaults()

		for _, v := range f.Variables() {
			_, global := c.globals[v]
			_, def := defaults[v]

			if !global && !def && !c.has(v) {
				names = append(names, v)
			}
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// MissingInputs returns the required inputs not yet bound.
func (c *Config) MissingInputs() []string {
	var names []string

	for _, v := range c.RequiredInputs() {
		_, global := c.globals[v]
		_, bound := c.inputs[v]

		if !global && !bound {
			names = append(names, v)
		}
	}

	return names
}

// Solvable reports whether every required input is bound.
func (c *Config) Solvable() bool { return len(c.MissingInputs()) == 0 }

// ToBeSolved returns the Formula entries that have no output and are not
// globals.
func (c *Config) ToBeSolved() []string {
	var keys []string

	for _, k := range c.formulaKeys() {
		_, solved := c.outputs[k]
		_, global := c.globals[k]

		if !solved && !global {
			keys = append(keys, k)
		}
	}

	return keys
}

// Solved reports whether every non-global Formula entry has an output.
func (c *Config) Solved() bool { return len(c.ToBeSolved()) == 0 }

// Result is a value retrieved from a Config: a solved output, or an Item
// when the key has not been solved.
type Result struct {
	Key    string
	Output lang.Value
	Solved bool
	Item   library.Item
}

func (r Result) String() string {
	if r.Solved {
		return r.Output.String()
	}

	return r.Item.String()
}

// Get returns the output of key if it has been solved. Otherwise it returns
// the entry named key, or the result of resolving key as an expression over
// the entries and the equation library.
func (c *Config) Get(key string) (Result, error) {
	key = strings.TrimSpace(key)

	if v, ok := c.outputs[key]; ok {
		return Result{Key: key, Output: v, Solved: true}, nil
	}

	if it, ok := c.entries[key]; ok {
		return Result{Key: key, Item: it}, nil
	}

	it, err := library.Expand(c, key)
	if err != nil {
		return Result{}, err
	}

	return Result{Key: key, Item: it}, nil
}

// Resolve implements [library.Resolver] over the entries and the equation
// library, as operands of configuration expressions are resolved.
func (c *Config) Resolve(operand string) (library.Item, error) {
	p := parser{c: c, active: make(map[string]bool)}

	return p.Resolve(operand)
}

// String renders each entry key followed by its indented item.
func (c *Config) String() string {
	var sb strings.Builder

	sb.WriteString("scenario " + c.source() + " with library " + c.dir.Name())

	for _, k := range c.keys {
		sb.WriteString("\n" + k)

		for line := range strings.SplitSeq(c.entries[k].String(), "\n") {
			sb.WriteString("\n\t" + line)
		}
	}

	return sb.String()
}
