package lang

//go:generate go tool stringer --linecomment --type Kind,Op --output ast_string.go

import (
	"math"
	"slices"
	"strings"
)

// Kind identifies the variant held by a [Node].
type Kind uint8

const (
	KindLiteral  Kind = iota // literal
	KindVariable             // variable
	KindNegate               // negate
	KindBinary               // binary
	KindCall                 // call
)

// Op is a binary arithmetic operator.
type Op uint8

const (
	OpAdd Op = iota // +
	OpSub           // -
	OpMul           // *
	OpDiv           // /
	OpPow           // **
)

// ParseOp returns the operator spelled by s. Both "**" and "^" are power.
func ParseOp(s string) (Op, bool) {
	switch s {
	case "+":
		return OpAdd, true
	case "-":
		return OpSub, true
	case "*":
		return OpMul, true
	case "/":
		return OpDiv, true
	case "**", "^":
		return OpPow, true
	}

	return 0, false
}

func (op Op) apply(x, y float64) float64 {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	case OpDiv:
		return x / y
	case OpPow:
		return math.Pow(x, y)
	}

	return math.NaN()
}

// precedence orders operators for rendering without redundant parentheses.
func (op Op) precedence() int {
	switch op {
	case OpAdd, OpSub:
		return 1
	case OpMul, OpDiv:
		return 2
	default:
		return 3
	}
}

// Node is one vertex of a parsed formula.
//
// The fields in use depend on Kind:
//
//	KindLiteral   Value
//	KindVariable  Name
//	KindNegate    Args[0]
//	KindBinary    Op, Args[0], Args[1]
//	KindCall      Name (canonical function name), Args
type Node struct {
	Name  string
	Args  []*Node
	Value float64
	Kind  Kind
	Op    Op
}

// Literal returns a literal node.
func Literal(v float64) *Node { return &Node{Kind: KindLiteral, Value: v} }

// Var returns a variable reference node.
func Var(name string) *Node { return &Node{Kind: KindVariable, Name: name} }

// Negate returns the negation of x.
func Negate(x *Node) *Node { return &Node{Kind: KindNegate, Args: []*Node{x}} }

// Binary returns the node (x op y).
func Binary(op Op, x, y *Node) *Node {
	return &Node{Kind: KindBinary, Op: op, Args: []*Node{x, y}}
}

// CallNode returns a call of the whitelisted function fn.
func CallNode(fn string, args ...*Node) *Node {
	return &Node{Kind: KindCall, Name: fn, Args: args}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	c := *n
	if n.Args != nil {
		c.Args = make([]*Node, len(n.Args))
		for i, a := range n.Args {
			c.Args[i] = a.Clone()
		}
	}

	return &c
}

// Walk calls fn for n and each descendant in depth-first order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}

	fn(n)

	for _, a := range n.Args {
		a.Walk(fn)
	}
}

// Variables returns the sorted, unique variable names referenced by n.
func (n *Node) Variables() []string {
	var names []string

	n.Walk(func(m *Node) {
		if m.Kind == KindVariable {
			names = append(names, m.Name)
		}
	})

	slices.Sort(names)

	return slices.Compact(names)
}

// Replace returns a copy of n with every reference to name replaced by a
// copy of with.
func (n *Node) Replace(name string, with *Node) *Node {
	if n == nil {
		return nil
	}

	if n.Kind == KindVariable && n.Name == name {
		return with.Clone()
	}

	c := *n
	if n.Args != nil {
		c.Args = make([]*Node, len(n.Args))
		for i, a := range n.Args {
			c.Args[i] = a.Replace(name, with)
		}
	}

	return &c
}

// String renders n as expression text that parses back to an equal tree.
func (n *Node) String() string {
	var sb strings.Builder

	n.write(&sb)

	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Kind {
	case KindLiteral:
		if n.Value < 0 {
			sb.WriteString("(" + formatFloat(n.Value) + ")")
		} else {
			sb.WriteString(formatFloat(n.Value))
		}

	case KindVariable:
		sb.WriteString(n.Name)

	case KindNegate:
		sb.WriteString("-")
		n.Args[0].writeOperand(sb, 4, false)

	case KindBinary:
		p := n.Op.precedence()
		// Power is right associative, the others left associative.
		n.Args[0].writeOperand(sb, p, n.Op == OpPow)
		sb.WriteString(" " + n.Op.String() + " ")
		n.Args[1].writeOperand(sb, p, n.Op != OpPow)

	case KindCall:
		sb.WriteString(n.Name + "(")

		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			a.write(sb)
		}

		sb.WriteString(")")
	}
}

// writeOperand writes n, parenthesized when it binds looser than the
// enclosing operator of precedence p (or equally loose when strict).
func (n *Node) writeOperand(sb *strings.Builder, p int, strict bool) {
	wrap := false

	switch n.Kind {
	case KindBinary:
		q := n.Op.precedence()
		wrap = q < p || (strict && q == p)

	case KindNegate:
		wrap = p >= 3
	}

	if wrap {
		sb.WriteString("(")
		n.write(sb)
		sb.WriteString(")")

		return
	}

	n.write(sb)
}

// isAtom reports whether n renders without operators.
func (n *Node) isAtom() bool {
	switch n.Kind {
	case KindVariable, KindCall:
		return true
	case KindLiteral:
		return n.Value >= 0
	}

	return false
}
