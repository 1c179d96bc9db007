package lang_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ardnew/windeq/lang"
)

func TestValueOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  lang.Value
	}{
		{"float64", 1.5, lang.Scalar(1.5)},
		{"int", 3, lang.Scalar(3)},
		{"string", " 2.5 ", lang.Scalar(2.5)},
		{"ints", []int{1, 2}, lang.Vector([]float64{1, 2})},
		{"any", []any{1, 2.5}, lang.Vector([]float64{1, 2.5})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := lang.ValueOf(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("ValueOf(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	for _, bad := range []any{"abc", true, []any{"x"}, nil} {
		if _, err := lang.ValueOf(bad); !errors.Is(err, lang.ErrType) {
			t.Errorf("ValueOf(%v) error = %v, want ErrType", bad, err)
		}
	}
}

func TestValue_Format(t *testing.T) {
	t.Parallel()

	v := lang.Vector([]float64{1, 2.5})

	if got := v.String(); got != "[1 2.5]" {
		t.Errorf("String() = %q", got)
	}

	b, err := json.Marshal(map[string]lang.Value{"v": v, "s": lang.Scalar(3)})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	if got := string(b); got != `{"s":3,"v":[1,2.5]}` {
		t.Errorf("json = %s", got)
	}
}

func TestValue_Vector_Copies(t *testing.T) {
	t.Parallel()

	src := []float64{1, 2, 3}
	v := lang.Vector(src)
	src[0] = 99

	if v.At(0) != 1 {
		t.Error("Vector aliased its input")
	}

	out := v.Floats()
	out[1] = 99

	if v.At(1) != 2 {
		t.Error("Floats aliased the value")
	}
}

func TestBindingsOf(t *testing.T) {
	t.Parallel()

	b, err := lang.BindingsOf(map[string]any{"a": 1, "b": []float64{1, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b["a"].Float() != 1 || b["b"].Len() != 2 {
		t.Errorf("unexpected bindings %v", b)
	}

	_, err = lang.BindingsOf(map[string]any{"bad": "x"})
	if !errors.Is(err, lang.ErrType) {
		t.Errorf("expected ErrType, got %v", err)
	}
}

func TestScope_Merge(t *testing.T) {
	t.Parallel()

	base := lang.Scope{"c": 100, "d": 1}
	over := lang.Scope{"c": 50}

	got := base.Merge(over)
	if got["c"] != 50 || got["d"] != 1 {
		t.Errorf("Merge = %v", got)
	}

	if base["c"] != 100 {
		t.Error("Merge modified its receiver")
	}

	b := base.Bind(lang.Bindings{"c": lang.Scalar(7)})
	if b["c"].Float() != 7 || b["d"].Float() != 1 {
		t.Errorf("Bind = %v", b)
	}
}
