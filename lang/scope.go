package lang

import (
	"maps"
	"strings"
)

// Scope is a table of default variable values.
//
// Scopes are values: every method that changes contents returns a new map and
// leaves its receiver untouched, so a table pushed down a tree is never
// aliased by the nodes that receive it.
type Scope map[string]float64

// Clone returns a copy of s. The copy of a nil Scope is nil.
func (s Scope) Clone() Scope { return maps.Clone(s) }

// Merge returns the union of s and over. Values in over win.
func (s Scope) Merge(over Scope) Scope {
	if len(over) == 0 {
		return s.Clone()
	}

	out := make(Scope, len(s)+len(over))
	maps.Copy(out, s)
	maps.Copy(out, over)

	return out
}

// Keys returns the sorted names defined by s.
func (s Scope) Keys() []string { return sortedKeys(s) }

// Bind returns the union of s (as scalar values) and b. Values in b win.
func (s Scope) Bind(b Bindings) Bindings {
	out := make(Bindings, len(s)+len(b))
	for k, v := range s {
		out[k] = Scalar(v)
	}

	maps.Copy(out, b)

	return out
}

// String formats s as "k=v, ..." in key order.
func (s Scope) String() string {
	keys := s.Keys()

	part := make([]string, len(keys))
	for i, k := range keys {
		part[i] = k + "=" + formatFloat(s[k])
	}

	return strings.Join(part, ", ")
}

// Bindings maps variable names to values at evaluation time.
type Bindings map[string]Value

// BindingsOf converts a map of native numbers and numeric slices into
// Bindings.
func BindingsOf[T any](m map[string]T) (Bindings, error) {
	out := make(Bindings, len(m))

	for _, k := range sortedKeys(m) {
		v, err := ValueOf(m[k])
		if err != nil {
			return nil, WrapError(err).With(NameAttr(k))
		}

		out[k] = v
	}

	return out, nil
}

// Keys returns the sorted names bound by b.
func (b Bindings) Keys() []string { return sortedKeys(b) }

// Merge returns the union of b and over. Values in over win.
func (b Bindings) Merge(over Bindings) Bindings {
	out := make(Bindings, len(b)+len(over))
	maps.Copy(out, b)
	maps.Copy(out, over)

	return out
}
