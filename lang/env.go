package lang

import (
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

// NumericPrefix is the namespace qualifier accepted in front of any
// whitelisted function name, e.g. "np.exp(x)".
const NumericPrefix = "np."

// function is one entry of the numeric function whitelist.
type function struct {
	call    func(args []Value) (Value, error)
	minArgs int
	maxArgs int // -1 means unbounded
}

// constants are the named literals reachable through [NumericPrefix].
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// builtin returns the function whitelist. The table is built once.
var builtin = sync.OnceValue(func() map[string]function {
	return map[string]function{
		"exp":   unary(math.Exp),
		"log":   unary(math.Log),
		"log10": unary(math.Log10),
		"sqrt":  unary(math.Sqrt),
		"abs":   unary(math.Abs),
		"floor": unary(math.Floor),
		"ceil":  unary(math.Ceil),
		"round": unary(roundHalfEven),

		"maximum": pairwise(math.Max),
		"minimum": pairwise(math.Min),
		"power":   pairwise(math.Pow),

		"max": {call: extremum(math.Max, floats.Max), minArgs: 1, maxArgs: -1},
		"min": {call: extremum(math.Min, floats.Min), minArgs: 1, maxArgs: -1},

		"sum":  reduce(floats.Sum),
		"mean": reduce(func(x []float64) float64 { return stat.Mean(x, nil) }),

		"interp": {call: interpolate, minArgs: 3, maxArgs: 3},
	}
})

// Functions returns the sorted canonical names of all whitelisted functions.
func Functions() []string {
	return slices.Sorted(maps.Keys(builtin()))
}

// CanonicalFunction strips [NumericPrefix] from name and reports whether the
// remainder is a whitelisted function.
func CanonicalFunction(name string) (string, bool) {
	name = strings.TrimPrefix(name, NumericPrefix)
	_, ok := builtin()[name]

	return name, ok
}

// IsFunction reports whether name (bare or prefixed) is whitelisted.
func IsFunction(name string) bool {
	_, ok := CanonicalFunction(name)

	return ok
}

// apply invokes the whitelisted function fn.
func apply(fn string, args []Value) (Value, error) {
	f, ok := builtin()[fn]
	if !ok {
		return Value{}, ErrIllegalExpression.With(slog.String("function", fn))
	}

	if len(args) < f.minArgs || (f.maxArgs >= 0 && len(args) > f.maxArgs) {
		return Value{}, ErrEvaluate.With(
			slog.String("function", fn),
			slog.Int("args", len(args)),
		)
	}

	return f.call(args)
}

func unary(fn func(float64) float64) function {
	return function{
		call: func(args []Value) (Value, error) {
			return mapValue(args[0], fn), nil
		},
		minArgs: 1,
		maxArgs: 1,
	}
}

func pairwise(fn func(x, y float64) float64) function {
	return function{
		call: func(args []Value) (Value, error) {
			return zipValue(args[0], args[1], fn)
		},
		minArgs: 2,
		maxArgs: 2,
	}
}

func reduce(fn func([]float64) float64) function {
	return function{
		call: func(args []Value) (Value, error) {
			if args[0].Len() == 0 {
				return Scalar(math.NaN()), nil
			}

			return Scalar(fn(args[0].Floats())), nil
		},
		minArgs: 1,
		maxArgs: 1,
	}
}

// extremum reduces a single vector argument, or folds two or more arguments
// elementwise.
func extremum(
	pair func(x, y float64) float64,
	all func([]float64) float64,
) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		if len(args) == 1 {
			if args[0].Len() == 0 {
				return Value{}, ErrEvaluate.With(slog.String("reason", "empty vector"))
			}

			return Scalar(all(args[0].Floats())), nil
		}

		acc := args[0]
		for _, a := range args[1:] {
			var err error

			acc, err = zipValue(acc, a, pair)
			if err != nil {
				return Value{}, err
			}
		}

		return acc, nil
	}
}

// interpolate implements interp(x, xp, fp): piecewise-linear interpolation of
// the points (xp, fp) at x, holding the end values outside xp.
func interpolate(args []Value) (Value, error) {
	xp, fp := args[1].Floats(), args[2].Floats()
	if len(xp) != len(fp) {
		return Value{}, ErrShape.With(
			slog.Int("xp", len(xp)),
			slog.Int("fp", len(fp)),
		)
	}

	if len(xp) == 1 {
		return mapValue(args[0], func(float64) float64 { return fp[0] }), nil
	}

	var pl interp.PiecewiseLinear

	err := pl.Fit(xp, fp)
	if err != nil {
		return Value{}, ErrEvaluate.Wrap(err).With(slog.String("function", "interp"))
	}

	return mapValue(args[0], pl.Predict), nil
}

// roundHalfEven rounds like numpy.round with zero decimals.
func roundHalfEven(x float64) float64 { return math.RoundToEven(x) }
