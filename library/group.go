package library

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"strings"

	"github.com/ardnew/windeq/lang"
)

// MaxSubstitutionPasses is the least number of passes intra-group
// substitution makes before it reports a reference cycle. Groups with more
// keys get one pass per key plus one, as a chain of siblings inlines one
// level per pass.
const MaxSubstitutionPasses = 64

// Group is an ordered collection of Formulas and sub-Groups decoded from one
// document. A Group is immutable once built.
type Group struct {
	name     string
	source   string
	keys     []string
	items    map[string]Item // formulas and groups only
	defaults lang.Scope
	opts     options
}

// NewGroup builds a Group from a decoded document.
//
// String leaves become Formulas named by their key, numeric leaves become
// constants and nested mappings become sub-Groups. Lists, booleans, nulls and
// numeric keys are rejected with [lang.ErrSchema].
//
// Formulas referring to a sibling Formula by name have the sibling's
// expression substituted in place, repeatedly, until no such reference
// remains.
func NewGroup(name string, doc Document, opts ...Option) (*Group, error) {
	return newGroup(context.Background(), name, "", doc, makeOptions(opts...))
}

func newGroup(
	ctx context.Context,
	name, source string,
	doc Document,
	o options,
) (*Group, error) {
	g := &Group{
		name:   name,
		source: source,
		items:  make(map[string]Item, len(doc)),
		opts:   o,
	}

	for _, entry := range doc {
		key := KeyString(entry.Key)

		if IsNumericKey(entry.Key) {
			return nil, g.schemaError(key, "numeric key")
		}

		var it Item

		switch v := entry.Value.(type) {
		case string:
			f, err := lang.NewNamed(key, v)
			if err != nil {
				return nil, lang.WrapError(err).With(g.documentAttr())
			}

			it = FormulaItem(f)

		case Document:
			sub, err := newGroup(ctx, key, source, v, o)
			if err != nil {
				return nil, err
			}

			it = GroupItem(sub)

		default:
			n, ok := Number(v)
			if !ok {
				return nil, g.schemaError(key, "unsupported value type "+typeName(v))
			}

			it = FormulaItem(lang.Constant(n).Named(key))
		}

		if _, dup := g.items[key]; !dup {
			g.keys = append(g.keys, key)
		}

		g.items[key] = it
	}

	if err := g.substitute(ctx); err != nil {
		return nil, err
	}

	return g, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case []any:
		return "list"
	}

	return fmt.Sprintf("%T", v)
}

func (g *Group) documentAttr() slog.Attr {
	if g.source != "" {
		return slog.String("document", g.source)
	}

	return slog.String("group", g.name)
}

func (g *Group) schemaError(key, reason string) error {
	return lang.ErrSchema.With(
		g.documentAttr(),
		slog.String("key", key),
		slog.String("reason", reason),
	)
}

// substitute inlines sibling Formulas until no Formula references one.
func (g *Group) substitute(ctx context.Context) error {
	passes := max(MaxSubstitutionPasses, len(g.keys)+1)

	for pass := range passes {
		changed := false

		for _, key := range g.keys {
			f, ok := g.items[key].Formula()
			if !ok {
				continue
			}

			out := f

			for _, v := range f.Variables() {
				if sib, ok := g.items[v].Formula(); ok && v != key {
					out = out.Substitute(v, sib)
					changed = true
				}
			}

			if out.References(key) {
				return lang.ErrCircularReference.With(
					g.documentAttr(),
					lang.NameAttr(key),
					slog.String("expression", out.Text()),
				)
			}

			g.items[key] = FormulaItem(out)
		}

		if !changed {
			g.opts.logger.TraceContext(ctx, "group substitution settled",
				slog.String("group", g.name),
				slog.Int("passes", pass+1),
			)

			return nil
		}
	}

	return lang.ErrCircularReference.With(
		g.documentAttr(),
		slog.Int("passes", passes),
		lang.Strings("keys", g.formulaKeysWithSiblingRefs()),
	)
}

func (g *Group) formulaKeysWithSiblingRefs() []string {
	var keys []string

	for _, key := range g.keys {
		f, ok := g.items[key].Formula()
		if !ok {
			continue
		}

		for _, v := range f.Variables() {
			if _, ok := g.items[v].Formula(); ok {
				keys = append(keys, key)

				break
			}
		}
	}

	return keys
}

// Name returns the Group's key in its parent, or its document stem.
func (g *Group) Name() string { return g.name }

// Source returns the path of the document the Group was loaded from.
func (g *Group) Source() string { return g.source }

// Keys returns the entry keys in document order.
func (g *Group) Keys() []string { return append([]string(nil), g.keys...) }

// Len returns the number of entries.
func (g *Group) Len() int { return len(g.keys) }

// Item returns the entry with the given key, without path or variant
// resolution.
func (g *Group) Item(key string) (Item, bool) {
	it, ok := g.items[key]

	return it, ok
}

// All iterates the entries in document order.
func (g *Group) All() iter.Seq2[string, Item] {
	return func(yield func(string, Item) bool) {
		for _, k := range g.keys {
			if !yield(k, g.items[k]) {
				return
			}
		}
	}
}

// Formulas iterates every Formula in g and its sub-Groups, keyed by its
// "::"-joined path relative to g.
func (g *Group) Formulas() iter.Seq2[string, *lang.Formula] {
	return func(yield func(string, *lang.Formula) bool) {
		g.formulas("", yield)
	}
}

func (g *Group) formulas(prefix string, yield func(string, *lang.Formula) bool) bool {
	for _, k := range g.keys {
		it := g.items[k]

		switch it.Kind() {
		case ItemFormula:
			if !yield(prefix+k, it.formula) {
				return false
			}
		case ItemGroup:
			if !it.group.formulas(prefix+k+PathSep, yield) {
				return false
			}
		}
	}

	return true
}

// Defaults returns a copy of the default variables pushed into g.
func (g *Group) Defaults() lang.Scope { return g.defaults.Clone() }

// Policy returns the variant resolution policy of g.
func (g *Group) Policy() Policy { return g.opts.policy }

// WithPolicy returns a copy of g and its sub-Groups resolving variants
// under p.
func (g *Group) WithPolicy(p Policy) *Group {
	out := g.shallow()
	out.opts.policy = p

	for k, it := range out.items {
		if sub, ok := it.Group(); ok {
			out.items[k] = GroupItem(sub.WithPolicy(p))
		}
	}

	return out
}

// PushDefaults returns a copy of g with scope merged into the defaults of
// every Formula it contains. Values in scope win.
func (g *Group) PushDefaults(scope lang.Scope) *Group {
	out := g.shallow()
	out.defaults = g.defaults.Merge(scope)

	for k, it := range out.items {
		out.items[k] = it.pushDefaults(scope, false)
	}

	return out
}

// Merge returns the union of g and other. Entries of other win, and the
// defaults of other are pushed over the result.
func (g *Group) Merge(other *Group) *Group {
	out := g.shallow()

	for _, k := range other.keys {
		if _, ok := out.items[k]; !ok {
			out.keys = append(out.keys, k)
		}

		out.items[k] = other.items[k]
	}

	return out.PushDefaults(other.defaults)
}

func (g *Group) shallow() *Group {
	c := *g
	c.keys = append([]string(nil), g.keys...)
	c.items = maps.Clone(g.items)
	c.defaults = g.defaults.Clone()

	return &c
}

// Get resolves key within g. See [Expand] for the accepted syntax.
func (g *Group) Get(key string) (Item, error) { return Expand(g, key) }

// Resolve looks up a single "::"-separated path within g. The last segment
// is subject to variant resolution.
func (g *Group) Resolve(key string) (Item, error) {
	return g.resolvePath(key, SplitPath(key))
}

func (g *Group) resolvePath(key string, segs []string) (Item, error) {
	cur := g

	for i, seg := range segs {
		last := i == len(segs)-1

		it, ok := cur.items[seg]
		if !ok {
			if last {
				return cur.variant(key, seg)
			}

			return Item{}, cur.lookupError(key, seg)
		}

		if last {
			return it, nil
		}

		sub, ok := it.Group()
		if !ok {
			return Item{}, cur.lookupError(key, segs[i+1]).
				With(slog.String("reason", seg+" is a formula"))
		}

		cur = sub
	}

	return GroupItem(g), nil
}

func (g *Group) lookupError(key, seg string) *lang.Error {
	return lang.ErrLookup.With(
		slog.String("key", key),
		slog.String("segment", seg),
		lang.Strings("available", g.keys),
	)
}

// String renders g as an indented tree.
func (g *Group) String() string {
	var sb strings.Builder

	g.write(&sb, "")

	return strings.TrimSuffix(sb.String(), "\n")
}

func (g *Group) write(sb *strings.Builder, indent string) {
	for _, k := range g.keys {
		it := g.items[k]

		switch it.Kind() {
		case ItemFormula:
			sb.WriteString(indent + it.formula.String() + "\n")
		case ItemGroup:
			sb.WriteString(indent + k + "\n")
			it.group.write(sb, indent+"  ")
		}
	}
}
