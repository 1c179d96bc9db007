package lang

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// Strings returns a slog attribute holding a copy of the given names.
func Strings(key string, names []string) slog.Attr {
	return slog.Any(key, slices.Clone(names))
}

// NameAttr returns the attribute used to name the offending key or formula.
func NameAttr(name string) slog.Attr { return slog.String("name", name) }

// typeAttr returns the attribute naming the dynamic type of a rejected
// input value.
func typeAttr(v any) slog.Attr {
	if v == nil {
		return slog.String("type", "nil")
	}

	return slog.String("type", fmt.Sprintf("%T", v))
}

// sortedKeys returns the keys of m in lexical order, or nil if m is empty.
func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	return slices.Sorted(maps.Keys(m))
}
