package library_test

import (
	"errors"
	"testing"

	"github.com/ardnew/windeq/lang"
	"github.com/ardnew/windeq/library"
)

func TestParseAxes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key   string
		power bool
		year  bool
		base  string
		x     float64
	}{
		{key: "capex_12MW", power: true, base: "capex", x: 12},
		{key: "capex_12mw", power: true, base: "capex", x: 12},
		{key: "opex_2030", year: true, base: "opex", x: 2030},
		{key: "opex_1799", base: "opex_1799"},
		{key: "opex_12.5MW", base: "opex_12.5MW"},
		{key: "plain", base: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			base, x, ok := library.ParsePower(tt.key)
			if ok != tt.power {
				t.Fatalf("ParsePower(%q) ok = %v, want %v", tt.key, ok, tt.power)
			}

			if !ok {
				base, x, ok = library.ParseYear(tt.key)
				if ok != tt.year {
					t.Fatalf("ParseYear(%q) ok = %v, want %v", tt.key, ok, tt.year)
				}
			}

			if base != tt.base || x != tt.x {
				t.Errorf("parse(%q) = (%q, %v), want (%q, %v)", tt.key, base, x, tt.base, tt.x)
			}
		})
	}
}

func TestVariantResolution(t *testing.T) {
	t.Parallel()

	input := lang.Bindings{"outfitting_cost": lang.Scalar(1)}

	tests := []struct {
		name   string
		policy library.Policy
		key    string
		want   float64
		err    error
	}{
		{
			name:   "exact match ignores policy",
			policy: library.Policy{InterpPower: true},
			key:    "costs::turbine::f_8MW",
			want:   55.2,
		},
		{
			name:   "nearest power above",
			policy: library.Policy{NearestPower: true},
			key:    "costs::turbine::f_11MW",
			want:   65.2,
		},
		{
			name:   "nearest power tie keeps document order",
			policy: library.Policy{NearestPower: true},
			key:    "costs::turbine::f_9MW",
			want:   55.2,
		},
		{
			name:   "extrapolate power",
			policy: library.Policy{InterpPower: true},
			key:    "costs::turbine::f_11MW",
			want:   70.2,
		},
		{
			name:   "interpolate power",
			policy: library.Policy{InterpPower: true, NearestPower: true},
			key:    "costs::turbine::f_9MW",
			want:   60.2,
		},
		{
			name:   "nearest year",
			policy: library.Policy{NearestYear: true},
			key:    "costs::turbine::capex_2026",
			want:   80,
		},
		{
			name:   "interpolate year",
			policy: library.Policy{InterpYear: true},
			key:    "costs::turbine::capex_2025",
			want:   90,
		},
		{
			name:   "extrapolate year",
			policy: library.Policy{InterpYear: true},
			key:    "costs::turbine::capex_2040",
			want:   60,
		},
		{
			name: "disabled",
			key:  "costs::turbine::f_11MW",
			err:  lang.ErrLookup,
		},
		{
			name:   "axis disabled",
			policy: library.Policy{NearestYear: true},
			key:    "costs::turbine::f_11MW",
			err:    lang.ErrLookup,
		},
		{
			name:   "no siblings",
			policy: library.Policy{NearestPower: true},
			key:    "costs::turbine::g_11MW",
			err:    lang.ErrLookup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := load(t, library.WithPolicy(tt.policy))

			it, err := d.Get(tt.key)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Get(%q) error = %v, want %v", tt.key, err, tt.err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Get(%q) error: %v", tt.key, err)
			}

			f, ok := it.Formula()
			if !ok {
				t.Fatalf("Get(%q) returned a %v", tt.key, it.Kind())
			}

			v, err := f.Evaluate(input)
			if err != nil {
				t.Fatalf("evaluate error: %v", err)
			}

			if !v.EqualApprox(lang.Scalar(tt.want), 1e-9) {
				t.Errorf("%s = %v, want %v", tt.key, v, tt.want)
			}
		})
	}
}

func TestVariantResolution_SingleCandidate(t *testing.T) {
	t.Parallel()

	doc, err := library.Decode(library.FormatYAML, []byte("rate_2020: 3\n"))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	g, err := library.NewGroup("rates", doc, library.WithPolicy(library.Policy{InterpYear: true}))
	if err != nil {
		t.Fatalf("group error: %v", err)
	}

	it, err := g.Get("rate_2050")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}

	f, _ := it.Formula()
	if !f.IsConstant() {
		t.Fatalf("expected constant, got %v", f)
	}

	if v, _ := f.Evaluate(nil); !v.Equal(lang.Scalar(3)) {
		t.Errorf("rate_2050 = %v, want 3", v)
	}
}

func TestDirectory_WithPolicy(t *testing.T) {
	t.Parallel()

	d := load(t)
	nearest := d.WithPolicy(library.Policy{NearestPower: true})

	if _, err := nearest.Get("costs::turbine::f_11MW"); err != nil {
		t.Errorf("nearest lookup error: %v", err)
	}

	if _, err := d.Get("costs::turbine::f_11MW"); !errors.Is(err, lang.ErrLookup) {
		t.Errorf("original policy changed: %v", err)
	}

	if got := nearest.Policy(); !got.NearestPower {
		t.Errorf("Policy() = %+v", got)
	}
}
