package library

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/windeq/lang"
)

// PathSep separates the segments of an item path.
const PathSep = "::"

// SplitPath splits a path into its trimmed segments.
func SplitPath(key string) []string {
	segs := strings.Split(key, PathSep)
	for i, s := range segs {
		segs[i] = strings.TrimSpace(s)
	}

	return segs
}

// JoinPath joins path segments.
func JoinPath(segs ...string) string { return strings.Join(segs, PathSep) }

// Resolver resolves a single operand, a path with no operators or
// parentheses, to an Item.
type Resolver interface {
	Resolve(path string) (Item, error)
}

// workspacePrefix names the placeholders that stand in for parenthesized
// sub-expressions while an expression is expanded. It cannot begin a key,
// so placeholders never shadow an operand.
const workspacePrefix = "\x00ws"

// Expand resolves an expression over the operands known to r.
//
// The expression may combine operands with + - * / and ** (or ^), group
// them with parentheses and wrap them in calls to whitelisted functions.
// Operands are handed to r. A numeric operand r does not know becomes a
// constant, so a folder named 2015 is still reachable.
//
//	turbine::capex_8MW * (1 + contingency) - np.exp(decay)
//
// Parenthesized sub-expressions are expanded first, each into a workspace
// entry private to this call.
func Expand(r Resolver, expr string) (Item, error) {
	e := expander{r: r, ws: make(map[string]Item)}

	it, err := e.expand(expr)
	if err != nil {
		return Item{}, lang.WrapError(err).With(slog.String("expression", expr))
	}

	return it, nil
}

type expander struct {
	r  Resolver
	ws map[string]Item
}

func (e *expander) expand(expr string) (Item, error) {
	expr = strings.TrimSpace(expr)

	if i := strings.IndexAny(expr, "[]{}"); i >= 0 {
		return Item{}, lang.ErrIllegalExpression.With(
			slog.String("character", expr[i:i+1]),
		)
	}

	spans, err := lang.ParenSpans(expr)
	if err != nil {
		return Item{}, err
	}

	// Replace right to left so earlier offsets stay valid.
	for i := len(spans) - 1; i >= 0; i-- {
		sp := spans[i]
		inner := expr[sp.Start+1 : sp.End-1]

		var it Item

		fn, start := lang.CallPrefix(expr, sp.Start)
		if fn != "" {
			it, err = e.call(fn, inner)
		} else {
			it, err = e.expand(inner)
		}

		if err != nil {
			return Item{}, err
		}

		w := workspacePrefix + strconv.Itoa(len(e.ws)+1)
		e.ws[w] = it
		expr = expr[:start] + w + expr[sp.End:]
	}

	return e.operate(expr)
}

// call expands each argument and applies the whitelisted function fn.
func (e *expander) call(fn, args string) (Item, error) {
	var forms []*lang.Formula

	if strings.TrimSpace(args) != "" {
		for _, a := range lang.SplitTopLevel(args, ',') {
			it, err := e.expand(a)
			if err != nil {
				return Item{}, err
			}

			f, ok := it.Formula()
			if !ok {
				return Item{}, lang.ErrType.With(
					slog.String("function", fn),
					slog.String("argument", strings.TrimSpace(a)),
					slog.String("kind", it.Kind().String()),
				)
			}

			forms = append(forms, f)
		}
	}

	f, err := lang.Call(fn, forms...)
	if err != nil {
		return Item{}, err
	}

	return FormulaItem(f), nil
}

// operate splits expr at its loosest binary operator and combines the
// halves, or resolves expr as a single operand.
func (e *expander) operate(expr string) (Item, error) {
	expr = strings.TrimSpace(expr)

	if it, ok := e.ws[expr]; ok {
		return it, nil
	}

	if left, op, right, ok := lang.SplitBinary(expr); ok {
		a, err := e.operate(left)
		if err != nil {
			return Item{}, err
		}

		b, err := e.operate(right)
		if err != nil {
			return Item{}, err
		}

		return Combine(op, a, b)
	}

	switch {
	case expr == "":
		return Item{}, lang.ErrSyntax.With(slog.String("reason", "missing operand"))

	case lang.IsNumber(expr):
		it, err := e.r.Resolve(expr)
		if err == nil {
			return it, nil
		}

		if !errors.Is(err, lang.ErrLookup) {
			return Item{}, err
		}

		f, _ := strconv.ParseFloat(expr, 64)

		return FormulaItem(lang.Constant(f)), nil

	case strings.HasPrefix(expr, "-"):
		it, err := e.operate(expr[1:])
		if err != nil {
			return Item{}, err
		}

		f, ok := it.Formula()
		if !ok {
			return Item{}, lang.ErrType.With(
				slog.String("operator", "unary -"),
				slog.String("kind", it.Kind().String()),
			)
		}

		return FormulaItem(lang.Neg(f)), nil

	case strings.HasPrefix(expr, "+"):
		return e.operate(expr[1:])
	}

	return e.r.Resolve(expr)
}
