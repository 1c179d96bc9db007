package scenario

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/windeq/lang"
	"github.com/ardnew/windeq/library"
	"github.com/ardnew/windeq/log"
)

// Reserved configuration keys. They are removed before entries are parsed.
const (
	KeyDirectory    = "equation_directory"
	KeyNearestPower = "use_nearest_power"
	KeyInterpPower  = "interp_extrap_power"
	KeyNearestYear  = "use_nearest_year"
	KeyInterpYear   = "interp_extrap_year"
)

// maxPointerDepth bounds chains of pointers into other configurations.
const maxPointerDepth = 16

// pointerMarkers mark a string value as a pointer into another document.
var pointerMarkers = []string{".json", ".yaml", ".yml", ".toml"}

// Config is a parsed scenario: named entries over an equation library, with
// the inputs bound so far and the outputs of the last solve.
type Config struct {
	path    string
	dir     *library.Directory
	keys    []string
	raw     map[string]any
	entries map[string]library.Item
	globals lang.Scope
	inputs  lang.Bindings
	outputs lang.Bindings
	logger  log.Logger
}

// Open reads and parses the configuration document at path.
// Pointers and a relative equation_directory resolve against the folder
// holding the document.
func Open(ctx context.Context, path string, opts ...Option) (*Config, error) {
	o := makeOptions(opts...)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, lang.ErrDocument.Wrap(err).With(slog.String("config", path))
	}

	doc, err := library.ReadFile(ctx, abs, library.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	return build(ctx, doc, abs, o)
}

// New parses an in-memory configuration document. Pointers into other
// documents are not allowed, and a relative equation_directory resolves
// against the working directory.
func New(ctx context.Context, doc library.Document, opts ...Option) (*Config, error) {
	return build(ctx, doc, "", makeOptions(opts...))
}

func build(ctx context.Context, doc library.Document, path string, o options) (*Config, error) {
	c := &Config{
		path:    path,
		raw:     make(map[string]any, len(doc)),
		entries: make(map[string]library.Item, len(doc)),
		globals: make(lang.Scope),
		logger:  o.logger,
	}

	c.logger.DebugContext(ctx, "open scenario",
		slog.String("config", c.source()),
		slog.Int("entries", len(doc)),
	)

	for _, item := range doc {
		k := library.KeyString(item.Key)
		if _, dup := c.raw[k]; !dup {
			c.keys = append(c.keys, k)
		}

		c.raw[k] = item.Value
	}

	reserved, err := c.extractReserved()
	if err != nil {
		return nil, err
	}

	if err := c.splicePointers(ctx, 0); err != nil {
		return nil, err
	}

	if err := c.mount(ctx, reserved, o); err != nil {
		return nil, err
	}

	c.extractGlobals()

	for _, k := range c.keys {
		if err := c.checkCircular(k, k, []string{k}, map[string]bool{}); err != nil {
			return nil, err
		}
	}

	p := parser{c: c, active: make(map[string]bool)}

	for _, k := range c.keys {
		if _, err := p.entry(k); err != nil {
			return nil, err
		}
	}

	if err := c.foldGlobals(ctx); err != nil {
		return nil, err
	}

	if o.inputs != nil {
		if err := c.SetInputs(o.inputs); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Config) source() string {
	if c.path == "" {
		return "<memory>"
	}

	return c.path
}

func (c *Config) has(key string) bool {
	_, ok := c.raw[key]

	return ok
}

// reserved holds the values of the reserved keys found in a configuration.
type reserved struct {
	directory string
	policy    map[string]bool
}

func (c *Config) extractReserved() (reserved, error) {
	r := reserved{policy: make(map[string]bool)}

	for _, k := range []string{KeyDirectory, KeyNearestPower, KeyInterpPower, KeyNearestYear, KeyInterpYear} {
		v, ok := c.raw[k]
		if !ok {
			continue
		}

		delete(c.raw, k)
		c.keys = slices.DeleteFunc(c.keys, func(s string) bool { return s == k })

		if k == KeyDirectory {
			s, ok := v.(string)
			if !ok {
				return r, c.schemaError(k, "equation directory is not a path")
			}

			r.directory = s

			continue
		}

		switch b := v.(type) {
		case bool:
			r.policy[k] = b
		default:
			n, ok := library.Number(v)
			if !ok {
				return r, c.schemaError(k, "policy flag is not a boolean")
			}

			r.policy[k] = n != 0
		}
	}

	return r, nil
}

func (c *Config) schemaError(key, reason string) error {
	return lang.ErrSchema.With(
		slog.String("config", c.source()),
		slog.String("key", key),
		slog.String("reason", reason),
	)
}

// isPointer reports whether v names a value in another document.
func isPointer(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}

	for _, m := range pointerMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}

	return false
}

// splicePointers replaces each "<document>::<key>" value with the value of
// key in that document.
func (c *Config) splicePointers(ctx context.Context, depth int) error {
	for _, k := range c.keys {
		v := c.raw[k]
		if !isPointer(v) {
			continue
		}

		spliced, err := c.resolvePointer(ctx, k, v.(string), depth)
		if err != nil {
			return err
		}

		c.raw[k] = spliced
	}

	return nil
}

func (c *Config) resolvePointer(ctx context.Context, key, ptr string, depth int) (any, error) {
	fail := func(reason string) error {
		return lang.ErrDocument.With(
			slog.String("config", c.source()),
			slog.String("key", key),
			slog.String("pointer", ptr),
			slog.String("reason", reason),
		)
	}

	switch {
	case c.path == "":
		return nil, fail("pointers require a configuration loaded from a file")
	case strings.Count(ptr, library.PathSep) != 1:
		return nil, fail(`pointer must have the form "<document>::<key>"`)
	case strings.ContainsAny(ptr, "*+()"):
		return nil, fail("pointer cannot contain an expression")
	case depth >= maxPointerDepth:
		return nil, fail("pointer chain too deep")
	}

	file, target, _ := strings.Cut(ptr, library.PathSep)
	file, target = strings.TrimSpace(file), strings.TrimSpace(target)

	if !filepath.IsAbs(file) {
		file = filepath.Join(filepath.Dir(c.path), file)
	}

	c.logger.TraceContext(ctx, "resolve config pointer",
		slog.String("key", key),
		slog.String("document", file),
		slog.String("target", target),
	)

	doc, err := library.ReadFile(ctx, file, library.WithLogger(c.logger))
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("pointer", ptr))
	}

	v, ok := library.Lookup(doc, target)
	if !ok {
		return nil, fail("key not found in " + file)
	}

	if !isPointer(v) {
		return v, nil
	}

	other := &Config{path: file, logger: c.logger}

	return other.resolvePointer(ctx, target, v.(string), depth+1)
}

// mount selects the equation library and applies the variant policy.
func (c *Config) mount(ctx context.Context, r reserved, o options) error {
	var policy library.Policy

	switch {
	case o.policy != nil:
		policy = *o.policy
	case o.dir != nil && r.directory == "":
		policy = o.dir.Policy()
	}

	for k, set := range r.policy {
		switch k {
		case KeyNearestPower:
			policy.NearestPower = set
		case KeyInterpPower:
			policy.InterpPower = set
		case KeyNearestYear:
			policy.NearestYear = set
		case KeyInterpYear:
			policy.InterpYear = set
		}
	}

	libOpts := []library.Option{library.WithPolicy(policy), library.WithLogger(c.logger)}

	switch {
	case r.directory != "":
		root := r.directory
		if !filepath.IsAbs(root) && c.path != "" {
			root = filepath.Join(filepath.Dir(c.path), root)
		}

		d, err := library.LoadDir(ctx, root, libOpts...)
		if err != nil {
			return lang.WrapError(err).With(slog.String("config", c.source()))
		}

		c.dir = d

	case o.dir != nil:
		c.dir = o.dir
		if c.dir.Policy() != policy {
			c.dir = c.dir.WithPolicy(policy)
		}

	default:
		c.dir = library.Empty(libOpts...)
	}

	c.logger.DebugContext(ctx, "mount equation library",
		slog.String("directory", c.dir.Name()),
		slog.Any("policy", policy),
	)

	return nil
}

// numeric returns the value of a number or numeric string.
func numeric(v any) (float64, bool) {
	if n, ok := library.Number(v); ok {
		return n, true
	}

	s, ok := v.(string)
	if !ok || !lang.IsNumber(s) {
		return 0, false
	}

	f, err := lang.ValueOf(s)

	return f.Float(), err == nil
}

func (c *Config) extractGlobals() {
	for _, k := range c.keys {
		if n, ok := numeric(c.raw[k]); ok {
			c.globals[k] = n
		}
	}
}

// references returns the names expr refers to: its free variables plus the
// head of every "head::tail" operand whose head is a configuration key.
func (c *Config) references(expr string) []string {
	vars := lang.FreeVariables(expr)
	refs := slices.Clone(vars)

	for _, v := range vars {
		if head, _, ok := strings.Cut(v, library.PathSep); ok && c.has(head) {
			refs = append(refs, head)
		}
	}

	return refs
}

// checkCircular walks the references reachable from cur and fails if start
// reappears.
func (c *Config) checkCircular(start, cur string, chain []string, seen map[string]bool) error {
	expr, ok := c.raw[cur].(string)
	if !ok {
		return nil
	}

	refs := c.references(expr)

	if slices.Contains(refs, start) {
		return lang.ErrCircularReference.With(
			lang.NameAttr(start),
			slog.String("chain", strings.Join(chain, " -> ")),
			slog.String("closing", cur),
			slog.String("expression", expr),
		)
	}

	for _, r := range refs {
		if !c.has(r) || seen[r] {
			continue
		}

		seen[r] = true

		if err := c.checkCircular(start, r, append(slices.Clip(chain), r), seen); err != nil {
			return err
		}
	}

	return nil
}

// foldGlobals evaluates every Formula whose variables are all globals into
// the global table, repeating until nothing changes, then pushes the globals
// into every entry.
func (c *Config) foldGlobals(ctx context.Context) error {
	for changed := true; changed; {
		changed = false

		for _, k := range c.keys {
			if _, ok := c.globals[k]; ok {
				continue
			}

			f, ok := c.entries[k].Formula()
			if !ok || !c.fixed(f) {
				continue
			}

			v, err := f.Evaluate(c.globals.Bind(nil))
			if err != nil {
				return lang.WrapError(err).With(slog.String("key", k))
			}

			if !v.IsScalar() {
				continue
			}

			c.globals[k] = v.Float()
			changed = true

			c.logger.TraceContext(ctx, "fold global",
				slog.String("key", k),
				slog.Float64("value", v.Float()),
			)
		}
	}

	for _, k := range c.keys {
		c.entries[k] = c.withGlobals(c.entries[k])
	}

	return nil
}

// fixed reports whether every variable of f is a global.
func (c *Config) fixed(f *lang.Formula) bool {
	for _, v := range f.Variables() {
		if _, ok := c.globals[v]; !ok {
			return false
		}
	}

	return true
}

func (c *Config) withGlobals(it library.Item) library.Item {
	switch it.Kind() {
	case library.ItemFormula:
		f, _ := it.Formula()

		return library.FormulaItem(f.WithDefaults(c.globals))
	case library.ItemGroup:
		g, _ := it.Group()

		return library.GroupItem(g.PushDefaults(c.globals))
	case library.ItemDirectory:
		d, _ := it.Directory()

		return library.DirectoryItem(d.PushDefaults(c.globals, true))
	}

	return it
}

// parser turns raw configuration values into Items, parsing referenced
// entries on demand.
type parser struct {
	c      *Config
	active map[string]bool
}

func (p *parser) entry(key string) (library.Item, error) {
	if it, ok := p.c.entries[key]; ok {
		return it, nil
	}

	if p.active[key] {
		return library.Item{}, lang.ErrCircularReference.With(lang.NameAttr(key))
	}

	p.active[key] = true
	defer delete(p.active, key)

	it, err := p.parse(key, p.c.raw[key])
	if err != nil {
		return library.Item{}, err
	}

	p.c.logger.Trace("parse entry",
		slog.String("key", key),
		slog.String("kind", it.Kind().String()),
	)

	p.c.entries[key] = it

	return it, nil
}

func (p *parser) parse(key string, raw any) (library.Item, error) {
	if library.IsNumericKey(key) {
		return library.Item{}, p.c.schemaError(key, "numeric key")
	}

	var it library.Item

	switch v := raw.(type) {
	case string:
		r, err := library.Expand(p, v)
		if err != nil {
			return library.Item{}, lang.WrapError(err).With(slog.String("key", key))
		}

		it = r

	case []any:
		return library.Item{}, p.c.schemaError(key, "list values are not supported")

	default:
		n, ok := library.Number(v)
		if !ok {
			return library.Item{}, p.c.schemaError(key, "value must be a number or an expression")
		}

		it = library.FormulaItem(lang.Constant(n))
	}

	if f, ok := it.Formula(); ok {
		it = library.FormulaItem(f.Named(key))
	}

	return p.c.withGlobals(it), nil
}

// Resolve resolves a single operand of a configuration expression.
//
// A configuration key resolves to its entry, with Formula entries standing
// in as a variable bound to their output. A "key::path" operand looks up path
// inside the Group or Directory entry key. Anything else is looked up in the
// equation library, and a plain identifier the library lacks becomes a free
// input variable.
func (p *parser) Resolve(operand string) (library.Item, error) {
	operand = strings.TrimSpace(operand)

	if p.c.has(operand) {
		it, err := p.entry(operand)
		if err != nil {
			return library.Item{}, err
		}

		if _, ok := it.Formula(); ok {
			return library.FormulaItem(lang.Variable(operand)), nil
		}

		return it, nil
	}

	if head, tail, ok := strings.Cut(operand, library.PathSep); ok && p.c.has(strings.TrimSpace(head)) {
		head = strings.TrimSpace(head)

		it, err := p.entry(head)
		if err != nil {
			return library.Item{}, err
		}

		switch it.Kind() {
		case library.ItemGroup:
			g, _ := it.Group()

			return g.Resolve(tail)
		case library.ItemDirectory:
			d, _ := it.Directory()

			return d.Resolve(tail)
		}

		return library.Item{}, lang.ErrLookup.With(
			slog.String("key", operand),
			slog.String("segment", head),
			slog.String("reason", head+" is a formula"),
		)
	}

	it, err := p.c.dir.Resolve(operand)
	if err != nil {
		if errors.Is(err, lang.ErrLookup) && lang.IsIdentifier(operand) &&
			!strings.Contains(operand, library.PathSep) {
			return library.FormulaItem(lang.Variable(operand)), nil
		}

		return library.Item{}, err
	}

	return it, nil
}
