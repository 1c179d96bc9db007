package library

import (
	"context"
	"io/fs"
	"iter"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardnew/windeq/lang"
)

// Directory is a tree of Groups and sub-Directories mirroring a folder, with
// the default variables in effect at its level.
type Directory struct {
	name      string
	keys      []string
	items     map[string]Item // groups and directories only
	variables *VariableDocument
	defaults  lang.Scope
	opts      options
}

// Load builds a Directory from the folder root of fsys and installs the
// default variables of every level.
//
// Entries are visited in lexical order. Names starting with "." or "__" are
// skipped, as are files without a supported extension and folders with
// nothing loadable. A document named "variables" becomes the folder's
// [VariableDocument]; every other document becomes a [Group] keyed by its
// name without extension. When a document and a folder share a key, the
// entry visited last wins.
func Load(ctx context.Context, fsys fs.FS, root string, opts ...Option) (*Directory, error) {
	o := makeOptions(opts...)

	o.logger.DebugContext(ctx, "load library",
		slog.String("root", root),
		slog.Any("policy", o.policy),
	)

	d, err := build(ctx, fsys, root, o)
	if err != nil {
		return nil, err
	}

	return d.PushDefaults(nil, false), nil
}

// LoadDir builds a Directory from an operating system folder.
func LoadDir(ctx context.Context, root string, opts ...Option) (*Directory, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, lang.ErrDocument.Wrap(err).With(slog.String("root", root))
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, lang.ErrDocument.Wrap(err).With(slog.String("root", root))
	}

	if !info.IsDir() {
		return nil, lang.ErrDocument.With(
			slog.String("root", root),
			slog.String("reason", "not a directory"),
		)
	}

	d, err := Load(ctx, os.DirFS(abs), ".", opts...)
	if err != nil {
		return nil, err
	}

	d.name = filepath.Base(abs)

	return d, nil
}

// Empty returns a Directory with no entries.
func Empty(opts ...Option) *Directory {
	return &Directory{items: map[string]Item{}, opts: makeOptions(opts...)}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "__")
}

func build(ctx context.Context, fsys fs.FS, dir string, o options) (*Directory, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, lang.ErrDocument.Wrap(err).With(slog.String("directory", dir))
	}

	d := &Directory{
		name:  path.Base(dir),
		items: make(map[string]Item, len(entries)),
		opts:  o,
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := e.Name()
		if isHidden(name) {
			continue
		}

		p := path.Join(dir, name)

		if e.IsDir() {
			sub, err := build(ctx, fsys, p, o)
			if err != nil {
				return nil, err
			}

			if sub.Len() > 0 || sub.variables != nil {
				d.set(name, DirectoryItem(sub))
			}

			continue
		}

		if _, ok := FormatOf(name); !ok {
			o.logger.TraceContext(ctx, "skip unsupported file", slog.String("path", p))

			continue
		}

		doc, err := ReadDocument(ctx, fsys, p, WithLogger(o.logger))
		if err != nil {
			return nil, err
		}

		stem := Stem(name)

		if stem == VariablesName {
			v, err := NewVariableDocument(p, doc)
			if err != nil {
				return nil, err
			}

			d.variables = v

			continue
		}

		g, err := newGroup(ctx, stem, p, doc, o)
		if err != nil {
			return nil, err
		}

		d.set(stem, GroupItem(g))
	}

	return d, nil
}

func (d *Directory) set(key string, it Item) {
	if _, ok := d.items[key]; !ok {
		d.keys = append(d.keys, key)
	}

	d.items[key] = it
}

// Name returns the folder name.
func (d *Directory) Name() string { return d.name }

// Keys returns the entry keys in load order.
func (d *Directory) Keys() []string { return append([]string(nil), d.keys...) }

// Len returns the number of entries.
func (d *Directory) Len() int { return len(d.keys) }

// Item returns the entry with the given key.
func (d *Directory) Item(key string) (Item, bool) {
	it, ok := d.items[key]

	return it, ok
}

// All iterates the entries in load order.
func (d *Directory) All() iter.Seq2[string, Item] {
	return func(yield func(string, Item) bool) {
		for _, k := range d.keys {
			if !yield(k, d.items[k]) {
				return
			}
		}
	}
}

// Variables returns the folder's own variable document, or nil.
func (d *Directory) Variables() *VariableDocument { return d.variables }

// Defaults returns a copy of the default variables in effect at d.
func (d *Directory) Defaults() lang.Scope { return d.defaults.Clone() }

// Policy returns the variant resolution policy of d.
func (d *Directory) Policy() Policy { return d.opts.policy }

// Formulas iterates every Formula in the tree, keyed by its full path.
func (d *Directory) Formulas() iter.Seq2[string, *lang.Formula] {
	return func(yield func(string, *lang.Formula) bool) {
		d.formulas("", yield)
	}
}

func (d *Directory) formulas(prefix string, yield func(string, *lang.Formula) bool) bool {
	for _, k := range d.keys {
		it := d.items[k]

		switch it.Kind() {
		case ItemGroup:
			if !it.group.formulas(prefix+k+PathSep, yield) {
				return false
			}
		case ItemDirectory:
			if !it.dir.formulas(prefix+k+PathSep, yield) {
				return false
			}
		}
	}

	return true
}

// WithPolicy returns a copy of d whose every Group resolves variants under p.
func (d *Directory) WithPolicy(p Policy) *Directory {
	out := d.shallow()
	out.opts.policy = p

	for k, it := range out.items {
		switch it.Kind() {
		case ItemGroup:
			out.items[k] = GroupItem(it.group.WithPolicy(p))
		case ItemDirectory:
			out.items[k] = DirectoryItem(it.dir.WithPolicy(p))
		}
	}

	return out
}

// PushDefaults returns a copy of d with scope merged into its defaults and
// propagated to every entry below it.
//
// Where a level owns a variable document, its values shadow those of scope
// unless force is set. A forced push overrides variable documents at every
// level below d as well.
func (d *Directory) PushDefaults(scope lang.Scope, force bool) *Directory {
	eff := scope.Clone()
	if d.variables != nil && !force {
		eff = eff.Merge(d.variables.Scope())
	}

	out := d.shallow()
	out.defaults = d.defaults.Merge(eff)

	for k, it := range out.items {
		out.items[k] = it.pushDefaults(eff, force)
	}

	return out
}

// Merge returns the union of d and other. Entries of other win on
// collision, its variable document replaces that of d, and its defaults are
// pushed over the result.
func (d *Directory) Merge(other *Directory) *Directory {
	out := d.shallow()

	for _, k := range other.keys {
		out.set(k, other.items[k])
	}

	if other.variables != nil {
		out.variables = other.variables
	}

	return out.PushDefaults(other.defaults, false)
}

func (d *Directory) shallow() *Directory {
	c := *d
	c.keys = append([]string(nil), d.keys...)
	c.items = maps.Clone(d.items)
	c.defaults = d.defaults.Clone()

	if c.items == nil {
		c.items = map[string]Item{}
	}

	return &c
}

// Get resolves key within d. See [Expand] for the accepted syntax.
func (d *Directory) Get(key string) (Item, error) { return Expand(d, key) }

// Resolve looks up a single "::"-separated path within d. Segments may carry
// a document extension. Variant resolution applies to the last segment when
// it falls inside a Group.
func (d *Directory) Resolve(key string) (Item, error) {
	segs := SplitPath(key)
	for i, s := range segs {
		segs[i] = Stem(s)
	}

	cur := d

	for i, seg := range segs {
		it, ok := cur.items[seg]
		if !ok {
			return Item{}, lang.ErrLookup.With(
				slog.String("key", key),
				slog.String("segment", seg),
				lang.Strings("available", cur.keys),
			)
		}

		if i == len(segs)-1 {
			return it, nil
		}

		switch it.Kind() {
		case ItemGroup:
			return it.group.resolvePath(key, segs[i+1:])
		case ItemDirectory:
			cur = it.dir
		}
	}

	return DirectoryItem(d), nil
}

// String renders d as an indented tree.
func (d *Directory) String() string {
	var sb strings.Builder

	d.write(&sb, "")

	return strings.TrimSuffix(sb.String(), "\n")
}

func (d *Directory) write(sb *strings.Builder, indent string) {
	if d.variables != nil {
		sb.WriteString(indent + VariablesName + ": " + d.variables.Scope().String() + "\n")
	}

	for _, k := range d.keys {
		it := d.items[k]

		sb.WriteString(indent + k + "\n")

		switch it.Kind() {
		case ItemGroup:
			it.group.write(sb, indent+"  ")
		case ItemDirectory:
			it.dir.write(sb, indent+"  ")
		}
	}
}
