package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestSearchPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	dir := func(name string) string {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatal(err)
		}

		return p
	}

	a, b, c := dir("a"), dir("b"), dir("c")

	file := filepath.Join(root, "file")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	list := func(p ...string) string { return strings.Join(p, string(os.PathListSeparator)) }

	tests := []struct {
		name  string
		env   string
		roots []string
		want  []string
	}{
		{"empty", "", nil, nil},
		{"env_only", list(b, c), nil, []string{b, c}},
		{"roots_first", list(c), []string{a, b}, []string{a, b, c}},
		{"drops_non_dirs", list(file, filepath.Join(root, "missing"), c), []string{a}, []string{a, c}},
		{"drops_repeats", list(a, b, a+string(os.PathSeparator)), []string{b}, []string{b, a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := searchPath(tt.env, tt.roots...); !slices.Equal(got, tt.want) {
				t.Errorf("searchPath(%q, %q) = %q, want %q", tt.env, tt.roots, got, tt.want)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	got := configPath(baseConfig)
	if filepath.Base(got) != baseConfig || filepath.Dir(got) == "." {
		t.Errorf("configPath(%q) = %q", baseConfig, got)
	}
}
