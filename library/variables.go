package library

import (
	"log/slog"
	"strings"

	"github.com/ardnew/windeq/lang"
)

// VariableDocument is a table of default numeric constants loaded from one
// "variables" document.
type VariableDocument struct {
	name  string
	keys  []string
	scope lang.Scope
}

// NewVariableDocument builds a VariableDocument from a decoded document.
// Every key must be non-numeric and every value a number.
func NewVariableDocument(name string, doc Document) (*VariableDocument, error) {
	v := &VariableDocument{
		name:  name,
		scope: make(lang.Scope, len(doc)),
	}

	for _, item := range doc {
		key := KeyString(item.Key)

		if IsNumericKey(item.Key) {
			return nil, lang.ErrSchema.With(
				slog.String("document", name),
				slog.String("key", key),
				slog.String("reason", "numeric key"),
			)
		}

		f, ok := Number(item.Value)
		if !ok {
			return nil, lang.ErrSchema.With(
				slog.String("document", name),
				slog.String("key", key),
				slog.String("reason", "variable value is not a number"),
			)
		}

		if _, dup := v.scope[key]; !dup {
			v.keys = append(v.keys, key)
		}

		v.scope[key] = f
	}

	return v, nil
}

// Name returns the document name.
func (v *VariableDocument) Name() string { return v.name }

// Keys returns the variable names in document order.
func (v *VariableDocument) Keys() []string { return append([]string(nil), v.keys...) }

// Get returns the value of a variable.
func (v *VariableDocument) Get(key string) (float64, bool) {
	f, ok := v.scope[key]

	return f, ok
}

// Scope returns a copy of the variable table.
func (v *VariableDocument) Scope() lang.Scope { return v.scope.Clone() }

func (v *VariableDocument) String() string {
	var sb strings.Builder

	sb.WriteString(v.name + ":")

	for _, k := range v.keys {
		sb.WriteString("\n  " + k + ": " + lang.Scalar(v.scope[k]).String())
	}

	return sb.String()
}
