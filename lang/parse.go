package lang

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// denylist holds substrings that never appear in arithmetic and are refused
// before parsing.
var denylist = []string{"import ", "os.", "sys.", ".__", "__.", "eval", "exec"}

// Parse parses arithmetic expression text into a [Node] tree.
//
// The accepted grammar is numeric literals, identifiers, unary sign, the
// binary operators + - * / ** ^ and calls to whitelisted functions (bare or
// prefixed with [NumericPrefix]). Anything else fails with
// [ErrIllegalExpression].
func Parse(text string) (*Node, error) {
	err := screen(text)
	if err != nil {
		return nil, err
	}

	tree, err := parser.Parse(text)
	if err != nil {
		return nil, ErrSyntax.Wrap(err).
			With(slog.String("expression", text))
	}

	var conv converter

	node := conv.convert(tree.Node)
	if conv.err != nil {
		return nil, conv.err.With(slog.String("expression", text))
	}

	return node, nil
}

// screen rejects text containing bracket characters or denylisted
// substrings.
func screen(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrSyntax.With(slog.String("reason", "empty expression"))
	}

	if i := strings.IndexAny(text, "[]{}"); i >= 0 {
		return ErrIllegalExpression.With(
			slog.String("expression", text),
			slog.String("character", text[i:i+1]),
		)
	}

	for _, s := range denylist {
		if strings.Contains(text, s) {
			return ErrIllegalExpression.With(
				slog.String("expression", text),
				slog.String("substring", s),
			)
		}
	}

	return nil
}

// converter translates an expr-lang syntax tree into an owned [Node] tree.
// The first failure is kept and conversion of the remainder is skipped.
type converter struct {
	err *Error
}

func (c *converter) fail(node ast.Node, reason string) *Node {
	if c.err == nil {
		c.err = ErrIllegalExpression.With(
			slog.String("node", node.String()),
			slog.String("reason", reason),
		)
	}

	return nil
}

func (c *converter) convert(node ast.Node) *Node {
	if c.err != nil {
		return nil
	}

	switch n := node.(type) {
	case *ast.IntegerNode:
		return Literal(float64(n.Value))

	case *ast.FloatNode:
		return Literal(n.Value)

	case *ast.IdentifierNode:
		if IsFunction(n.Value) {
			return c.fail(node, "function used as a value")
		}

		return Var(n.Value)

	case *ast.ChainNode:
		return c.convert(n.Node)

	case *ast.UnaryNode:
		x := c.convert(n.Node)

		switch n.Operator {
		case "-":
			if x != nil && x.Kind == KindLiteral {
				return Literal(-x.Value)
			}

			return Negate(x)
		case "+":
			return x
		}

		return c.fail(node, "unsupported unary operator "+n.Operator)

	case *ast.BinaryNode:
		op, ok := ParseOp(n.Operator)
		if !ok {
			return c.fail(node, "unsupported operator "+n.Operator)
		}

		return Binary(op, c.convert(n.Left), c.convert(n.Right))

	case *ast.BuiltinNode:
		return c.call(node, n.Name, n.Arguments)

	case *ast.CallNode:
		name, ok := calleeName(n.Callee)
		if !ok {
			return c.fail(node, "unsupported callee")
		}

		return c.call(node, name, n.Arguments)

	case *ast.MemberNode:
		name, ok := calleeName(n)
		if !ok {
			return c.fail(node, "unsupported member access")
		}

		v, ok := constants[strings.TrimPrefix(name, NumericPrefix)]
		if !ok || !strings.HasPrefix(name, NumericPrefix) {
			return c.fail(node, "unknown constant "+name)
		}

		return Literal(v)

	default:
		return c.fail(node, fmt.Sprintf("unsupported syntax %T", node))
	}
}

func (c *converter) call(node ast.Node, name string, args []ast.Node) *Node {
	fn, ok := CanonicalFunction(name)
	if !ok {
		return c.fail(node, "function "+name+" is not allowed")
	}

	conv := make([]*Node, len(args))
	for i, a := range args {
		conv[i] = c.convert(a)
	}

	return CallNode(fn, conv...)
}

// calleeName returns "name" for an identifier and "np.name" for a member
// access on the numeric namespace.
func calleeName(node ast.Node) (string, bool) {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return n.Value, true

	case *ast.MemberNode:
		base, ok := n.Node.(*ast.IdentifierNode)
		if !ok || base.Value+"." != NumericPrefix {
			return "", false
		}

		prop, ok := n.Property.(*ast.StringNode)
		if !ok {
			return "", false
		}

		return NumericPrefix + prop.Value, true
	}

	return "", false
}
