package lang

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Value is the result of evaluating a [Formula]: either a scalar or a vector
// of float64 samples.
//
// The zero Value is the scalar 0.
type Value struct {
	vec    []float64
	scalar float64
	isVec  bool
}

// Scalar returns a scalar Value.
func Scalar(f float64) Value { return Value{scalar: f} }

// Vector returns a vector Value holding a copy of v.
func Vector(v []float64) Value {
	return Value{vec: append([]float64(nil), v...), isVec: true}
}

// vector wraps v without copying. Callers must own v.
func vector(v []float64) Value { return Value{vec: v, isVec: true} }

// Ints returns a vector Value with each element of v promoted to float64.
func Ints[T ~int | ~int8 | ~int16 | ~int32 | ~int64](v []T) Value {
	f := make([]float64, len(v))
	for i, n := range v {
		f[i] = float64(n)
	}

	return vector(f)
}

// ValueOf converts a native Go number or numeric slice into a Value.
func ValueOf(v any) (Value, error) {
	switch n := v.(type) {
	case Value:
		return n, nil
	case float64:
		return Scalar(n), nil
	case float32:
		return Scalar(float64(n)), nil
	case int:
		return Scalar(float64(n)), nil
	case int32:
		return Scalar(float64(n)), nil
	case int64:
		return Scalar(float64(n)), nil
	case uint64:
		return Scalar(float64(n)), nil
	case []float64:
		return Vector(n), nil
	case []float32:
		f := make([]float64, len(n))
		for i, x := range n {
			f[i] = float64(x)
		}

		return vector(f), nil
	case []int:
		return Ints(n), nil
	case []int64:
		return Ints(n), nil
	case []any:
		f := make([]float64, len(n))
		for i, x := range n {
			e, err := ValueOf(x)
			if err != nil || e.isVec {
				return Value{}, ErrType.With(
					slog.Int("index", i),
					typeAttr(x),
				)
			}

			f[i] = e.scalar
		}

		return vector(f), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return Value{}, ErrType.Wrap(err).With(slog.String("value", n))
		}

		return Scalar(f), nil
	default:
		return Value{}, ErrType.With(typeAttr(v))
	}
}

// IsScalar reports whether v holds a single number.
func (v Value) IsScalar() bool { return !v.isVec }

// Len returns the number of samples in v. Scalars have length 1.
func (v Value) Len() int {
	if v.isVec {
		return len(v.vec)
	}

	return 1
}

// Float returns the scalar held by v, or the first sample of a vector.
// An empty vector yields NaN.
func (v Value) Float() float64 {
	if !v.isVec {
		return v.scalar
	}

	if len(v.vec) == 0 {
		return math.NaN()
	}

	return v.vec[0]
}

// Floats returns a copy of the samples held by v.
func (v Value) Floats() []float64 {
	if !v.isVec {
		return []float64{v.scalar}
	}

	return append([]float64(nil), v.vec...)
}

// At returns the i'th sample, broadcasting scalars.
func (v Value) At(i int) float64 {
	if !v.isVec {
		return v.scalar
	}

	return v.vec[i]
}

// Equal reports whether v and w hold the same shape and samples.
func (v Value) Equal(w Value) bool {
	if v.isVec != w.isVec {
		return false
	}

	if !v.isVec {
		return v.scalar == w.scalar
	}

	return floats.Equal(v.vec, w.vec)
}

// EqualApprox reports whether v and w agree elementwise within tol.
func (v Value) EqualApprox(w Value, tol float64) bool {
	if v.Len() != w.Len() {
		return false
	}

	for i := range v.Len() {
		if !scalar.EqualWithinAbsOrRel(v.At(i), w.At(i), tol, tol) {
			return false
		}
	}

	return true
}

// String formats v like a numeric literal or a bracketed list.
func (v Value) String() string {
	if !v.isVec {
		return formatFloat(v.scalar)
	}

	part := make([]string, len(v.vec))
	for i, f := range v.vec {
		part[i] = formatFloat(f)
	}

	return "[" + strings.Join(part, " ") + "]"
}

// Native returns a float64 for scalars and a []float64 copy for vectors.
func (v Value) Native() any {
	if !v.isVec {
		return v.scalar
	}

	return v.Floats()
}

// MarshalJSON implements [json.Marshaler].
func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(v.Native()) }

// MarshalYAML implements the goccy/go-yaml InterfaceMarshaler.
func (v Value) MarshalYAML() (any, error) { return v.Native(), nil }

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// shapeOf returns the common vector length of vals, or -1 if all are scalar.
func shapeOf(vals ...Value) (int, error) {
	n := -1

	for _, v := range vals {
		if !v.isVec {
			continue
		}

		if n >= 0 && len(v.vec) != n {
			return 0, ErrShape.With(
				slog.Int("want", n),
				slog.Int("got", len(v.vec)),
			)
		}

		n = len(v.vec)
	}

	return n, nil
}

// broadcast returns the samples of v stretched to length n.
// The result must not be modified when v is a vector.
func broadcast(v Value, n int) []float64 {
	if v.isVec {
		return v.vec
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = v.scalar
	}

	return out
}

// mapValue applies fn to each sample of v.
func mapValue(v Value, fn func(float64) float64) Value {
	if !v.isVec {
		return Scalar(fn(v.scalar))
	}

	out := make([]float64, len(v.vec))
	for i, x := range v.vec {
		out[i] = fn(x)
	}

	return vector(out)
}

// zipValue applies fn pairwise with scalar broadcast.
func zipValue(a, b Value, fn func(x, y float64) float64) (Value, error) {
	n, err := shapeOf(a, b)
	if err != nil {
		return Value{}, err
	}

	if n < 0 {
		return Scalar(fn(a.scalar, b.scalar)), nil
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = fn(a.At(i), b.At(i))
	}

	return vector(out), nil
}

// arith applies a binary arithmetic operator elementwise.
func arith(op Op, a, b Value) (Value, error) {
	n, err := shapeOf(a, b)
	if err != nil {
		return Value{}, err
	}

	if n < 0 {
		return Scalar(op.apply(a.scalar, b.scalar)), nil
	}

	dst := make([]float64, n)

	switch {
	case op == OpPow:
		for i := range dst {
			dst[i] = math.Pow(a.At(i), b.At(i))
		}

	case a.isVec && b.isVec:
		switch op {
		case OpAdd:
			floats.AddTo(dst, a.vec, b.vec)
		case OpSub:
			floats.SubTo(dst, a.vec, b.vec)
		case OpMul:
			floats.MulTo(dst, a.vec, b.vec)
		case OpDiv:
			floats.DivTo(dst, a.vec, b.vec)
		}

	case op == OpAdd || op == OpMul:
		// Commutative: fold the scalar into a copy of the vector.
		vec, c := a.vec, b.scalar
		if !a.isVec {
			vec, c = b.vec, a.scalar
		}

		copy(dst, vec)

		if op == OpAdd {
			floats.AddConst(c, dst)
		} else {
			floats.Scale(c, dst)
		}

	default:
		x, y := broadcast(a, n), broadcast(b, n)
		for i := range dst {
			dst[i] = op.apply(x[i], y[i])
		}
	}

	return vector(dst), nil
}
