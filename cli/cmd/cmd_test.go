package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ardnew/windeq/lang"
)

// writeFiles creates each named file below dir with the given content.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, text := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(p, []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func evalKey(t *testing.T, lib Library, key string) lang.Value {
	t.Helper()

	dir, err := lib.Load(t.Context())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	it, err := dir.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) error: %v", key, err)
	}

	f, ok := it.Formula()
	if !ok {
		t.Fatalf("Get(%q) is a %v", key, it.Kind())
	}

	v, err := f.Evaluate(nil)
	if err != nil {
		t.Fatalf("Evaluate(%q) error: %v", key, err)
	}

	return v
}

func TestLibrary_Load(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	writeFiles(t, root, map[string]string{
		"first/costs.yaml":     "base: 1\n",
		"second/costs.yaml":    "base: 2\n",
		"second/extra.yaml":    "fee: rate * 2\n",
		"second/variables.yml": "rate: 4\n",
	})

	first := filepath.Join(root, "first")
	second := filepath.Join(root, "second")

	lib := Library{Roots: []string{first, second}}

	if v := evalKey(t, lib, "costs::base"); !v.Equal(lang.Scalar(1)) {
		t.Errorf("costs::base = %v, want 1 from the first root", v)
	}

	if v := evalKey(t, lib, "extra::fee"); !v.Equal(lang.Scalar(8)) {
		t.Errorf("extra::fee = %v, want 8", v)
	}

	lib.Roots = []string{second, first}

	if v := evalKey(t, lib, "costs::base"); !v.Equal(lang.Scalar(2)) {
		t.Errorf("costs::base = %v, want 2 from the first root", v)
	}
}

func TestLibrary_LoadDuplicateRoots(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	writeFiles(t, root, map[string]string{"lib/costs.yaml": "base: 1\n"})

	lib := filepath.Join(root, "lib")
	link := filepath.Join(root, "link")

	if err := os.Symlink(lib, link); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	seen := make(map[fileKey]struct{})

	for i, p := range []string{lib, link, filepath.Join(lib, ".")} {
		if got, want := uniqueDir(p, seen), i == 0; got != want {
			t.Errorf("uniqueDir(%q) = %v, want %v", p, got, want)
		}
	}

	if !uniqueDir(filepath.Join(root, "missing"), seen) {
		t.Error("unidentifiable path reported as duplicate")
	}

	dir, err := Library{Roots: []string{lib, link}}.Load(t.Context())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if got := dir.Keys(); !slices.Equal(got, []string{"costs"}) {
		t.Errorf("Keys() = %v, want [costs]", got)
	}
}

func TestLibrary_Empty(t *testing.T) {
	t.Parallel()

	dir, err := Library{}.Load(t.Context())
	if err != nil || dir != nil {
		t.Errorf("Load() = %v, %v, want nil, nil", dir, err)
	}

	if _, err := (Library{}).require(t.Context()); !errors.Is(err, ErrNoLibrary) {
		t.Errorf("require() error = %v, want %v", err, ErrNoLibrary)
	}

	_, err = Library{Roots: []string{filepath.Join(t.TempDir(), "missing")}}.Load(t.Context())
	if !errors.Is(err, lang.ErrDocument) {
		t.Errorf("Load(missing) error = %v, want %v", err, lang.ErrDocument)
	}
}

func TestContextValues(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	if kongContextFrom(ctx) != nil {
		t.Error("kong context found in empty context")
	}

	if got := libraryFrom(ctx); got.Roots != nil {
		t.Errorf("libraryFrom(empty) = %+v", got)
	}

	if outputFrom(ctx) != os.Stdout {
		t.Error("default output is not stdout")
	}

	var buf bytes.Buffer

	ctx = WithOutput(WithLibrary(ctx, Library{Roots: []string{"a"}}), &buf)

	if got := libraryFrom(ctx); !slices.Equal(got.Roots, []string{"a"}) {
		t.Errorf("libraryFrom() = %+v", got)
	}

	if outputFrom(ctx) != &buf {
		t.Error("installed output not returned")
	}
}

func TestParseBindings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    lang.Bindings
		wantErr bool
	}{
		{"none", nil, nil, false},
		{"scalar", []string{"a=1.5"}, lang.Bindings{"a": lang.Scalar(1.5)}, false},
		{
			"vector",
			[]string{"depth = 10, 20,30"},
			lang.Bindings{"depth": lang.Vector([]float64{10, 20, 30})},
			false,
		},
		{
			"several",
			[]string{"a=1", "b=-2e3"},
			lang.Bindings{"a": lang.Scalar(1), "b": lang.Scalar(-2000)},
			false,
		},
		{"no_equals", []string{"a"}, nil, true},
		{"empty_name", []string{"=1"}, nil, true},
		{"bad_number", []string{"a=x"}, nil, true},
		{"empty_element", []string{"a=1,,2"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseBindings(tt.args)
			if tt.wantErr {
				if !errors.Is(err, ErrBinding) {
					t.Errorf("parseBindings(%q) error = %v, want %v", tt.args, err, ErrBinding)
				}

				return
			}

			if err != nil {
				t.Fatalf("parseBindings(%q) error: %v", tt.args, err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("parseBindings(%q) = %v, want %v", tt.args, got, tt.want)
			}

			for k, w := range tt.want {
				if !got[k].Equal(w) {
					t.Errorf("%s = %v, want %v", k, got[k], w)
				}
			}
		})
	}
}

// runContext returns a context for running a command over the library
// roots, with output captured in the returned buffer.
func runContext(t *testing.T, roots ...string) (context.Context, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	return WithOutput(WithLibrary(t.Context(), Library{Roots: roots}), &buf), &buf
}
