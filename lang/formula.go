package lang

import (
	"log/slog"
	"slices"
	"strings"
)

// Formula is an immutable parsed arithmetic expression over named variables,
// optionally carrying a display name and a table of default variable values.
//
// Methods that appear to modify a Formula return a new one.
type Formula struct {
	root     *Node
	text     string
	name     string
	display  string // set on synthesized combinations
	vars     []string
	defaults Scope
}

// New parses text into an unnamed Formula.
func New(text string) (*Formula, error) {
	root, err := Parse(text)
	if err != nil {
		return nil, err
	}

	return newFormula(root, strings.TrimSpace(text)), nil
}

// NewNamed parses text into a Formula with the given display name.
// A Formula may not reference its own name.
func NewNamed(name, text string) (*Formula, error) {
	f, err := New(text)
	if err != nil {
		return nil, WrapError(err).With(NameAttr(name))
	}

	if _, found := slices.BinarySearch(f.vars, name); found {
		return nil, ErrSelfReference.With(
			NameAttr(name),
			slog.String("expression", f.text),
		)
	}

	f.name = name

	return f, nil
}

// Constant returns a Formula that evaluates to v.
func Constant(v float64) *Formula {
	return newFormula(Literal(v), formatFloat(v))
}

// Variable returns a Formula that evaluates to the binding of name.
func Variable(name string) *Formula {
	return newFormula(Var(name), name)
}

// FromNode returns an unnamed Formula over a copy of root.
func FromNode(root *Node) *Formula {
	root = root.Clone()

	return newFormula(root, root.String())
}

func newFormula(root *Node, text string) *Formula {
	return &Formula{root: root, text: text, vars: root.Variables()}
}

func (f *Formula) clone() *Formula {
	c := *f
	c.defaults = f.defaults.Clone()

	return &c
}

// Combine returns the Formula (a op b). Its text is "(a) op (b)" and its
// defaults are the union of both operands' defaults, b winning.
func Combine(op Op, a, b *Formula) *Formula {
	f := newFormula(
		Binary(op, a.root.Clone(), b.root.Clone()),
		a.operandText()+" "+op.String()+" "+b.operandText(),
	)

	f.display = "(" + a.operandDisplay() + " " + op.String() + " " + b.operandDisplay() + ")"
	f.defaults = a.defaults.Merge(b.defaults)

	return f
}

// Add returns a + b.
func Add(a, b *Formula) *Formula { return Combine(OpAdd, a, b) }

// Sub returns a - b.
func Sub(a, b *Formula) *Formula { return Combine(OpSub, a, b) }

// Mul returns a * b.
func Mul(a, b *Formula) *Formula { return Combine(OpMul, a, b) }

// Div returns a / b.
func Div(a, b *Formula) *Formula { return Combine(OpDiv, a, b) }

// Pow returns a ** b.
func Pow(a, b *Formula) *Formula { return Combine(OpPow, a, b) }

// Neg returns -a.
func Neg(a *Formula) *Formula {
	f := newFormula(Negate(a.root.Clone()), "-"+a.operandText())
	f.display = "-" + a.operandDisplay()
	f.defaults = a.defaults.Clone()

	return f
}

// Call returns the Formula fn(args...). The function must be whitelisted.
func Call(fn string, args ...*Formula) (*Formula, error) {
	canon, ok := CanonicalFunction(fn)
	if !ok {
		return nil, ErrIllegalExpression.With(slog.String("function", fn))
	}

	var (
		nodes = make([]*Node, len(args))
		text  = make([]string, len(args))
		defs  Scope
	)

	for i, a := range args {
		nodes[i] = a.root.Clone()
		text[i] = a.text
		defs = defs.Merge(a.defaults)
	}

	f := newFormula(CallNode(canon, nodes...), canon+"("+strings.Join(text, ", ")+")")
	f.defaults = defs

	return f, nil
}

func (f *Formula) operandText() string {
	if f.root.isAtom() {
		return f.text
	}

	return "(" + f.text + ")"
}

func (f *Formula) operandDisplay() string {
	if f.name != "" || f.display != "" || f.root.isAtom() {
		return f.String()
	}

	return "(" + f.text + ")"
}

// Named returns a copy of f with the given display name. Unlike [NewNamed]
// it does not check for self reference.
func (f *Formula) Named(name string) *Formula {
	c := f.clone()
	c.name = name

	return c
}

// WithDefaults returns a copy of f whose defaults are merged with scope.
// Values in scope win.
func (f *Formula) WithDefaults(scope Scope) *Formula {
	c := f.clone()
	c.defaults = f.defaults.Merge(scope)

	return c
}

// Substitute returns a copy of f with every reference to name replaced by
// the expression of g. Defaults of g are merged underneath those of f.
func (f *Formula) Substitute(name string, g *Formula) *Formula {
	if _, found := slices.BinarySearch(f.vars, name); !found {
		return f
	}

	c := newFormula(f.root.Replace(name, g.root), "")
	c.text = c.root.String()
	c.name = f.name
	c.defaults = g.defaults.Merge(f.defaults)

	return c
}

// Name returns the display name, if any.
func (f *Formula) Name() string { return f.name }

// Text returns the expression text.
func (f *Formula) Text() string { return f.text }

// Root returns a copy of the expression tree.
func (f *Formula) Root() *Node { return f.root.Clone() }

// Variables returns the sorted free variables of f.
func (f *Formula) Variables() []string { return slices.Clone(f.vars) }

// Defaults returns a copy of the default variable table.
func (f *Formula) Defaults() Scope { return f.defaults.Clone() }

// Required returns the free variables of f that have no default.
func (f *Formula) Required() []string {
	var req []string

	for _, v := range f.vars {
		if _, ok := f.defaults[v]; !ok {
			req = append(req, v)
		}
	}

	return req
}

// References reports whether name is a free variable of f.
func (f *Formula) References(name string) bool {
	_, found := slices.BinarySearch(f.vars, name)

	return found
}

// IsConstant reports whether f has no free variables.
func (f *Formula) IsConstant() bool { return len(f.vars) == 0 }

// String returns the display form of f.
func (f *Formula) String() string {
	switch {
	case f.name != "":
		// Required parameters first, then those with defaults.
		part := f.Required()
		for _, v := range f.vars {
			if d, ok := f.defaults[v]; ok {
				part = append(part, v+"="+formatFloat(d))
			}
		}

		return f.name + "(" + strings.Join(part, ", ") + ")"

	case f.display != "":
		return f.display

	default:
		return f.text
	}
}

// MarshalText implements [encoding.TextMarshaler] with the expression text.
func (f *Formula) MarshalText() ([]byte, error) { return []byte(f.text), nil }

// Evaluate computes f with the given bindings merged over its defaults.
// Every free variable must be bound.
func (f *Formula) Evaluate(b Bindings) (Value, error) {
	env := f.defaults.Bind(b)

	var missing []string

	for _, v := range f.vars {
		if _, ok := env[v]; !ok {
			missing = append(missing, v)
		}
	}

	if len(missing) > 0 {
		return Value{}, ErrMissingInput.With(
			Strings("missing", missing),
			slog.String("formula", f.String()),
		)
	}

	v, err := f.root.Eval(env)
	if err != nil {
		return Value{}, ErrEvaluate.Wrap(err).
			With(slog.String("formula", f.String()))
	}

	return v, nil
}

// Fold returns f reduced to a constant when it has no free variables, or f
// itself otherwise.
func (f *Formula) Fold() (*Formula, error) {
	if !f.IsConstant() || f.root.Kind == KindLiteral {
		return f, nil
	}

	v, err := f.Evaluate(nil)
	if err != nil {
		return nil, err
	}

	c := Constant(v.Float())
	c.name = f.name
	c.defaults = f.defaults.Clone()

	return c, nil
}
