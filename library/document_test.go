package library_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/windeq/lang"
	"github.com/ardnew/windeq/library"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format library.Format
		data   string
		keys   []string
		err    error
	}{
		{name: "yaml order", format: library.FormatYAML, data: "z: 1\na: 2\n", keys: []string{"z", "a"}},
		{name: "json order", format: library.FormatYAML, data: `{"b": "x", "a": 1}`, keys: []string{"b", "a"}},
		{name: "toml sorted", format: library.FormatTOML, data: "z = 1\na = 2\n", keys: []string{"a", "z"}},
		{name: "empty", format: library.FormatYAML, data: "", keys: nil},
		{name: "top level list", format: library.FormatYAML, data: "- 1\n- 2\n", err: lang.ErrDocument},
		{name: "bad toml", format: library.FormatTOML, data: "a = \n", err: lang.ErrDocument},
		{name: "unknown format", format: "ini", data: "a=1", err: lang.ErrDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := library.Decode(tt.format, []byte(tt.data))
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Decode error = %v, want %v", err, tt.err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}

			if len(doc) != len(tt.keys) {
				t.Fatalf("Decode keys = %v, want %v", doc, tt.keys)
			}

			for i, item := range doc {
				if item.Key != tt.keys[i] {
					t.Errorf("key %d = %v, want %s", i, item.Key, tt.keys[i])
				}
			}
		})
	}
}

func TestStemAndFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stem   string
		format library.Format
		ok     bool
	}{
		{"costs.yaml", "costs", library.FormatYAML, true},
		{"costs.YML", "costs", library.FormatYAML, true},
		{"costs.json", "costs", library.FormatYAML, true},
		{"costs.toml", "costs", library.FormatTOML, true},
		{"notes.txt", "notes.txt", "", false},
		{"f_8.5MW", "f_8.5MW", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := library.Stem(tt.name); got != tt.stem {
				t.Errorf("Stem(%q) = %q, want %q", tt.name, got, tt.stem)
			}

			f, ok := library.FormatOf(tt.name)
			if f != tt.format || ok != tt.ok {
				t.Errorf("FormatOf(%q) = (%q, %v), want (%q, %v)", tt.name, f, ok, tt.format, tt.ok)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	name := filepath.Join(dir, "rates.yaml")

	if err := os.WriteFile(name, []byte("a: 1\nb: a * 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		doc, err := library.ReadFile(t.Context(), name)
		if err != nil {
			t.Fatalf("ReadFile error: %v", err)
		}

		if v, ok := library.Lookup(doc, "b"); !ok || v != "a * 2" {
			t.Errorf("Lookup(b) = %v, %v", v, ok)
		}
	}

	library.PurgeCache()

	if _, err := library.ReadFile(t.Context(), filepath.Join(dir, "absent.yaml")); !errors.Is(err, lang.ErrDocument) {
		t.Errorf("expected ErrDocument, got %v", err)
	}
}

func TestNewVariableDocument(t *testing.T) {
	t.Parallel()

	doc, err := library.Decode(library.FormatYAML, []byte("depth: 30\nrate: 0.5\n"))
	if err != nil {
		t.Fatal(err)
	}

	v, err := library.NewVariableDocument("variables.yaml", doc)
	if err != nil {
		t.Fatalf("NewVariableDocument error: %v", err)
	}

	if got, ok := v.Get("depth"); !ok || got != 30 {
		t.Errorf("Get(depth) = %v, %v", got, ok)
	}

	for _, bad := range []string{"a: x\n", "1: 2\n", "a: [1]\n", "a: true\n"} {
		doc, err := library.Decode(library.FormatYAML, []byte(bad))
		if err != nil {
			t.Fatal(err)
		}

		if _, err := library.NewVariableDocument("variables.yaml", doc); !errors.Is(err, lang.ErrSchema) {
			t.Errorf("%q: expected ErrSchema, got %v", bad, err)
		}
	}
}

func TestNewGroup_Schema(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"1: x\n", "'2.5': x\n", "a: [1, 2]\n", "a: true\n", "a: null\n"} {
		doc, err := library.Decode(library.FormatYAML, []byte(bad))
		if err != nil {
			t.Fatal(err)
		}

		if _, err := library.NewGroup("g", doc); !errors.Is(err, lang.ErrSchema) {
			t.Errorf("%q: expected ErrSchema, got %v", bad, err)
		}
	}
}
