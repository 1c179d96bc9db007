package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestFreeVariables_ScientificNotation(t *testing.T) {
	t.Parallel()

	const text = "1e-4 + x - e*y*43.5E23/z - 4.54e6"

	want := []string{"e", "x", "y", "z"}

	if got := FreeVariables(text); !slices.Equal(got, want) {
		t.Errorf("FreeVariables(%q) = %v, want %v", text, got, want)
	}

	f, err := New(text)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if got := f.Variables(); !slices.Equal(got, want) {
		t.Errorf("Variables() = %v, want %v", got, want)
	}
}

func TestNewNamed_SelfReference(t *testing.T) {
	t.Parallel()

	_, err := NewNamed("x", "x + 1")
	if !errors.Is(err, ErrSelfReference) {
		t.Fatalf("expected ErrSelfReference, got %v", err)
	}

	f, err := NewNamed("y", "x + 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.Name() != "y" {
		t.Errorf("expected name y, got %q", f.Name())
	}
}

func TestFormula_ConstantInvariance(t *testing.T) {
	t.Parallel()

	f, err := New("2 * 3 + 1")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if !f.IsConstant() {
		t.Fatalf("expected constant formula, variables %v", f.Variables())
	}

	tests := []struct {
		name     string
		bindings Bindings
	}{
		{"nil", nil},
		{"scalar", Bindings{"x": Scalar(5)}},
		{"vector", Bindings{"x": Vector([]float64{1, 2, 3})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := f.Evaluate(tt.bindings)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if !v.Equal(Scalar(7)) {
				t.Errorf("expected 7, got %v", v)
			}
		})
	}
}

func TestCombine_Linearity(t *testing.T) {
	t.Parallel()

	a, err := New("x * 2 + y")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	b, err := New("x - 3")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	bindings := Bindings{
		"x": Ints([]int{1, 2, 3}),
		"y": Scalar(2.5),
	}

	va, err := a.Evaluate(bindings)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	vb, err := b.Evaluate(bindings)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	for _, op := range []Op{OpAdd, OpSub, OpMul, OpDiv, OpPow} {
		t.Run(op.String(), func(t *testing.T) {
			t.Parallel()

			got, err := Combine(op, a, b).Evaluate(bindings)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			want, err := arith(op, va, vb)
			if err != nil {
				t.Fatalf("arith error: %v", err)
			}

			if !got.EqualApprox(want, 1e-12) {
				t.Errorf("eval(a %v b) = %v, want %v", op, got, want)
			}
		})
	}
}

func TestCombine_Text(t *testing.T) {
	t.Parallel()

	ab, err := New("a + b")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	tests := []struct {
		name    string
		formula *Formula
		text    string
		display string
	}{
		{
			name:    "atoms",
			formula: Add(Variable("a"), Constant(2)),
			text:    "a + 2",
			display: "(a + 2)",
		},
		{
			name:    "compound",
			formula: Mul(ab, Variable("c")),
			text:    "(a + b) * c",
			display: "((a + b) * c)",
		},
		{
			name:    "negative literal",
			formula: Div(Variable("a"), Constant(-2)),
			text:    "a / (-2)",
			display: "(a / (-2))",
		},
		{
			name:    "negate",
			formula: Neg(ab),
			text:    "-(a + b)",
			display: "-(a + b)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.formula.Text(); got != tt.text {
				t.Errorf("Text() = %q, want %q", got, tt.text)
			}

			if got := tt.formula.String(); got != tt.display {
				t.Errorf("String() = %q, want %q", got, tt.display)
			}

			if _, err := New(tt.formula.Text()); err != nil {
				t.Errorf("text does not parse back: %v", err)
			}
		})
	}
}

func TestCombine_DefaultsRightWins(t *testing.T) {
	t.Parallel()

	a := Variable("c").WithDefaults(Scope{"c": 1, "d": 4})
	b := Variable("d").WithDefaults(Scope{"d": 10})

	f := Add(a, b)

	if got := f.Defaults(); got["c"] != 1 || got["d"] != 10 {
		t.Errorf("unexpected defaults %v", got)
	}

	v, err := f.Evaluate(nil)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	if !v.Equal(Scalar(11)) {
		t.Errorf("expected 11, got %v", v)
	}

	if a.Defaults()["d"] != 4 {
		t.Error("operand defaults were modified")
	}
}

func TestEvaluate_MissingInputs(t *testing.T) {
	t.Parallel()

	f, err := New("a + b * c")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	_, err = f.Evaluate(Bindings{"a": Scalar(1)})
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}

	v, ok := e.Attr("missing")
	if !ok {
		t.Fatal("missing attribute not set")
	}

	if got, _ := v.Any().([]string); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("missing = %v, want [b c]", got)
	}
}

func TestEvaluate_DefaultsCallerWins(t *testing.T) {
	t.Parallel()

	f, err := New("a + c")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	f = f.WithDefaults(Scope{"c": 100})

	tests := []struct {
		name     string
		bindings Bindings
		want     float64
	}{
		{"default", Bindings{"a": Scalar(1)}, 101},
		{"override", Bindings{"a": Scalar(1), "c": Scalar(5)}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := f.Evaluate(tt.bindings)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if !v.Equal(Scalar(tt.want)) {
				t.Errorf("expected %v, got %v", tt.want, v)
			}
		})
	}

	if req := f.Required(); !slices.Equal(req, []string{"a"}) {
		t.Errorf("Required() = %v, want [a]", req)
	}
}

func TestEvaluate_ShapeMismatch(t *testing.T) {
	t.Parallel()

	f, err := New("x + y")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	_, err = f.Evaluate(Bindings{
		"x": Vector([]float64{1, 2}),
		"y": Vector([]float64{1, 2, 3}),
	})

	if !errors.Is(err, ErrEvaluate) {
		t.Errorf("expected ErrEvaluate, got %v", err)
	}

	if !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape in chain, got %v", err)
	}
}

func TestSubstitute(t *testing.T) {
	t.Parallel()

	f, err := New("a * 2")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	g, err := New("b + 1")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	h := f.Substitute("a", g.WithDefaults(Scope{"b": 1}))

	if got := h.Variables(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Variables() = %v, want [b]", got)
	}

	if got := h.Text(); got != "(b + 1) * 2" {
		t.Errorf("Text() = %q", got)
	}

	v, err := h.Evaluate(nil)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	if !v.Equal(Scalar(4)) {
		t.Errorf("expected 4, got %v", v)
	}

	if f.Text() != "a * 2" {
		t.Error("receiver was modified")
	}
}

func TestFormula_String(t *testing.T) {
	t.Parallel()

	f, err := NewNamed("capex", "a * b")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	f = f.WithDefaults(Scope{"b": 2})

	if got := f.String(); got != "capex(a, b=2)" {
		t.Errorf("String() = %q", got)
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	f, err := New("(3 - 1) * 4")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	c, err := f.Fold()
	if err != nil {
		t.Fatalf("fold error: %v", err)
	}

	if c.Text() != "8" {
		t.Errorf("expected folded text 8, got %q", c.Text())
	}

	g := Variable("x")
	if h, _ := g.Fold(); h != g {
		t.Error("non-constant formula should fold to itself")
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want error
	}{
		{"import os", ErrIllegalExpression},
		{"x[0]", ErrIllegalExpression},
		{"{a}", ErrIllegalExpression},
		{"os.system(1)", ErrIllegalExpression},
		{"eval(x)", ErrIllegalExpression},
		{"a.__class__", ErrIllegalExpression},
		{"x > 1", ErrIllegalExpression},
		{"x && y", ErrIllegalExpression},
		{`"text"`, ErrIllegalExpression},
		{"foo(x)", ErrIllegalExpression},
		{"a.b", ErrIllegalExpression},
		{"exp + 1", ErrIllegalExpression},
		{"1 +", ErrSyntax},
		{"(x", ErrSyntax},
		{"  ", ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("New(%q) error = %v, want %v", tt.text, err, tt.want)
			}
		})
	}
}
