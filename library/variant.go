package library

import (
	"cmp"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strconv"

	"github.com/ardnew/windeq/lang"
)

// axis is one family of parametrized keys, such as "cost_8MW" or
// "cost_2030", whose siblings can stand in for an absent key.
type axis struct {
	name  string
	re    *regexp.Regexp
	valid func(float64) bool
}

var (
	powerAxis = axis{
		name:  "power",
		re:    regexp.MustCompile(`(?i)_([0-9]+)MW$`),
		valid: func(float64) bool { return true },
	}
	yearAxis = axis{
		name:  "year",
		re:    regexp.MustCompile(`_([12][0-9]{3})$`),
		valid: func(y float64) bool { return y >= 1800 && y <= 2200 },
	}
)

// parse splits key into its base name and parameter value.
func (a axis) parse(key string) (base string, x float64, ok bool) {
	m := a.re.FindStringSubmatchIndex(key)
	if m == nil {
		return key, 0, false
	}

	x, err := strconv.ParseFloat(key[m[2]:m[3]], 64)
	if err != nil || !a.valid(x) {
		return key, 0, false
	}

	return key[:m[0]], x, true
}

// ParsePower returns the base name and megawatt rating of a key such as
// "capex_12MW".
func ParsePower(key string) (string, float64, bool) { return powerAxis.parse(key) }

// ParseYear returns the base name and year of a key such as "opex_2030".
func ParseYear(key string) (string, float64, bool) { return yearAxis.parse(key) }

type candidate struct {
	key     string
	x       float64
	formula *lang.Formula
}

// variant resolves a key absent from g from its parametrized siblings.
func (g *Group) variant(key, seg string) (Item, error) {
	p := g.opts.policy

	var (
		ax      axis
		interp  bool
		nearest bool
	)

	switch {
	case (p.InterpPower || p.NearestPower) && powerAxis.re.MatchString(seg):
		ax, interp, nearest = powerAxis, p.InterpPower, p.NearestPower
	case (p.InterpYear || p.NearestYear) && yearAxis.re.MatchString(seg):
		ax, interp, nearest = yearAxis, p.InterpYear, p.NearestYear
	default:
		return Item{}, g.lookupError(key, seg)
	}

	base, x2, ok := ax.parse(seg)
	if !ok {
		return Item{}, g.lookupError(key, seg)
	}

	cands := g.candidates(ax, base, x2)

	g.opts.logger.Trace("resolve variant",
		slog.String("key", key),
		slog.String("axis", ax.name),
		slog.Float64("request", x2),
		slog.Int("candidates", len(cands)),
	)

	if interp {
		if c1, c3, ok := bracket(cands); ok {
			f, err := interpolate(c1, c3, x2)
			if err != nil {
				return Item{}, err
			}

			return FormulaItem(f), nil
		}
	}

	// A single candidate stands in even when only interpolation is enabled.
	if len(cands) > 0 && (nearest || interp) {
		return FormulaItem(cands[0].formula), nil
	}

	keys := make([]string, len(cands))
	for i, c := range cands {
		keys[i] = c.key
	}

	return Item{}, g.lookupError(key, seg).With(
		slog.String("axis", ax.name),
		lang.Strings("candidates", keys),
	)
}

// candidates returns the Formulas of g sharing base on axis ax, stably sorted
// by distance from x.
func (g *Group) candidates(ax axis, base string, x float64) []candidate {
	var cands []candidate

	for _, k := range g.keys {
		f, ok := g.items[k].Formula()
		if !ok {
			continue
		}

		if b, v, ok := ax.parse(k); ok && b == base {
			cands = append(cands, candidate{key: k, x: v, formula: f})
		}
	}

	slices.SortStableFunc(cands, func(a, b candidate) int {
		return cmp.Compare(math.Abs(a.x-x), math.Abs(b.x-x))
	})

	return cands
}

// bracket returns the nearest candidate and the nearest one after it with a
// different parameter.
func bracket(cands []candidate) (c1, c3 candidate, ok bool) {
	if len(cands) < 2 {
		return c1, c3, false
	}

	for _, c := range cands[1:] {
		if c.x != cands[0].x {
			return cands[0], c, true
		}
	}

	return c1, c3, false
}

// interpolate returns y1 + (y3-y1)*(x2-x1)/(x3-x1) over the candidate
// Formulas, reduced to a constant when it has no free variables.
func interpolate(c1, c3 candidate, x2 float64) (*lang.Formula, error) {
	f := lang.Add(
		lang.Div(
			lang.Mul(
				lang.Sub(c3.formula, c1.formula),
				lang.Constant(x2-c1.x),
			),
			lang.Constant(c3.x-c1.x),
		),
		c1.formula,
	)

	return f.Fold()
}
