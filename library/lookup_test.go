package library_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ardnew/windeq/lang"
	"github.com/ardnew/windeq/library"
)

func TestGet_NumericFolder(t *testing.T) {
	t.Parallel()

	d, err := library.Load(t.Context(), fstest.MapFS{
		"2015/costs.yaml": {Data: []byte("base: 4\n")},
	}, ".")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	it, err := d.Get("2015")
	if err != nil {
		t.Fatalf("Get(2015) error: %v", err)
	}

	if it.Kind() != library.ItemDirectory {
		t.Errorf("Get(2015) kind = %v, want directory", it.Kind())
	}

	if v := evaluate(t, d, "2016 * 2", nil); !v.Equal(lang.Scalar(4032)) {
		t.Errorf("2016 * 2 = %v, want 4032", v)
	}

	if v := evaluate(t, d, "2015::costs::base + 1", nil); !v.Equal(lang.Scalar(5)) {
		t.Errorf("2015::costs::base + 1 = %v, want 5", v)
	}

	if _, err := d.Get("2015 + 1"); !errors.Is(err, lang.ErrType) {
		t.Errorf("Get(2015 + 1) error = %v, want %v", err, lang.ErrType)
	}
}

func TestGet_KeyLikeWorkspace(t *testing.T) {
	t.Parallel()

	d, err := library.Load(t.Context(), fstest.MapFS{
		"grp.yaml": {Data: []byte("a: 2\nworkspace_1: 10\nws1: 100\n")},
	}, ".")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	it, err := d.Get("grp")
	if err != nil {
		t.Fatalf("Get(grp) error: %v", err)
	}

	g, ok := it.Group()
	if !ok {
		t.Fatalf("Get(grp) kind = %v, want group", it.Kind())
	}

	tests := []struct {
		key  string
		want float64
	}{
		{"(a + 1) * workspace_1", 30},
		{"(a) + (a) + workspace_1", 14},
		{"(a * 2) + ws1", 104},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			it, err := g.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error: %v", tt.key, err)
			}

			f, _ := it.Formula()

			v, err := f.Evaluate(nil)
			if err != nil {
				t.Fatalf("evaluate %q error: %v", tt.key, err)
			}

			if !v.Equal(lang.Scalar(tt.want)) {
				t.Errorf("%s = %v, want %v", tt.key, v, tt.want)
			}
		})
	}
}

func TestGroup_LongSiblingChain(t *testing.T) {
	t.Parallel()

	const n = 3 * library.MaxSubstitutionPasses

	var sb strings.Builder

	for i := range n - 1 {
		fmt.Fprintf(&sb, "k%d: k%d + 1\n", i, i+1)
	}

	fmt.Fprintf(&sb, "k%d: 1\n", n-1)

	d, err := library.Load(t.Context(), fstest.MapFS{
		"chain.yaml": {Data: []byte(sb.String())},
	}, ".")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if v := evaluate(t, d, "chain::k0", nil); !v.Equal(lang.Scalar(n)) {
		t.Errorf("chain::k0 = %v, want %d", v, n)
	}
}
