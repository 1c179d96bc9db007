package lang

import (
	"log/slog"
)

// Eval computes the value of n under env.
//
// Every variable in n must be bound in env. Vector operands must agree in
// length; scalars broadcast.
func (n *Node) Eval(env Bindings) (Value, error) {
	switch n.Kind {
	case KindLiteral:
		return Scalar(n.Value), nil

	case KindVariable:
		v, ok := env[n.Name]
		if !ok {
			return Value{}, ErrMissingInput.With(
				Strings("missing", []string{n.Name}),
			)
		}

		return v, nil

	case KindNegate:
		x, err := n.Args[0].Eval(env)
		if err != nil {
			return Value{}, err
		}

		return mapValue(x, func(f float64) float64 { return -f }), nil

	case KindBinary:
		return n.evalBinary(env)

	case KindCall:
		return n.evalCall(env)

	default:
		return Value{}, ErrIllegalExpression.
			With(slog.String("kind", n.Kind.String()))
	}
}

func (n *Node) evalBinary(env Bindings) (Value, error) {
	x, err := n.Args[0].Eval(env)
	if err != nil {
		return Value{}, err
	}

	y, err := n.Args[1].Eval(env)
	if err != nil {
		return Value{}, err
	}

	v, err := arith(n.Op, x, y)
	if err != nil {
		return Value{}, WrapError(err).With(slog.String("operator", n.Op.String()))
	}

	return v, nil
}

func (n *Node) evalCall(env Bindings) (Value, error) {
	args := make([]Value, len(n.Args))

	for i, a := range n.Args {
		v, err := a.Eval(env)
		if err != nil {
			return Value{}, err
		}

		args[i] = v
	}

	return apply(n.Name, args)
}
