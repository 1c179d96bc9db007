package lang

import (
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// sciNotation matches decimal literals in scientific notation so their
// exponent marker is not mistaken for an identifier.
var sciNotation = regexp.MustCompile(`(?:\d+\.?\d*|\.\d+)[eE][+-]?\d+`)

const (
	// identifierBreak lists the characters that can never occur in an
	// identifier.
	identifierBreak = "()[]{}+-/*^ <>=\\|&$@,"

	// variableDelims lists the characters free-variable scanning splits on.
	variableDelims = "*/+-^ ()[]<>,\t\n"
)

// IsNumber reports whether s parses as a floating point number.
func IsNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)

	return err == nil
}

// IsIdentifier reports whether s can name a variable: it is not numeric and
// contains no operator, bracket, comparison or space characters.
func IsIdentifier(s string) bool {
	if s == "" || IsNumber(s) {
		return false
	}

	return !strings.ContainsAny(s, identifierBreak)
}

// FreeVariables returns the sorted unique identifiers referenced by the
// expression text. It works on raw text, so it also accepts strings that are
// not valid formulas (such as "group::key" lookups, which it returns whole).
func FreeVariables(text string) []string {
	text = maskNumbers(text)

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(variableDelims, r)
	})

	var names []string

	for _, f := range fields {
		switch {
		case IsNumber(f),
			strings.HasPrefix(f, NumericPrefix),
			strings.HasPrefix(f, "pd."),
			IsFunction(f):
			continue
		}

		names = append(names, f)
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// maskNumbers replaces each scientific-notation literal in text with "0".
// Matches that continue an identifier (the "2e5" of "x2e5") are kept.
func maskNumbers(text string) string {
	var (
		sb   strings.Builder
		last int
	)

	for _, m := range sciNotation.FindAllStringIndex(text, -1) {
		if m[0] > 0 && isIdentByte(text[m[0]-1]) {
			continue
		}

		sb.WriteString(text[last:m[0]])
		sb.WriteString("0")

		last = m[1]
	}

	sb.WriteString(text[last:])

	return sb.String()
}

// Span is a half-open byte range [Start, End) of a string.
type Span struct{ Start, End int }

// ParenSpans returns the outermost balanced parenthesis pairs in s, each
// span covering both parentheses.
func ParenSpans(s string) ([]Span, error) {
	var (
		spans []Span
		depth int
		start int
	)

	for i := range len(s) {
		switch s[i] {
		case '(':
			if depth == 0 {
				start = i
			}

			depth++

		case ')':
			depth--
			if depth < 0 {
				return nil, ErrSyntax.With(
					slog.String("expression", s),
					slog.Int("offset", i),
				)
			}

			if depth == 0 {
				spans = append(spans, Span{start, i + 1})
			}
		}
	}

	if depth != 0 {
		return nil, ErrSyntax.With(
			slog.String("expression", s),
			slog.String("reason", "unbalanced parentheses"),
		)
	}

	return spans, nil
}

// SplitTopLevel splits s at each sep that is not nested in parentheses.
func SplitTopLevel(s string, sep byte) []string {
	var (
		parts []string
		depth int
		last  int
	)

	for i := range len(s) {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}

	return append(parts, s[last:])
}

// SplitBinary finds the binary operator in s that binds loosest at the top
// level and splits s around it. Addition and subtraction are split at their
// rightmost occurrence, then multiplication and division, then power at its
// leftmost occurrence, so that recombining the halves preserves precedence
// and associativity. Unary signs and exponent signs of numeric literals are
// never split points. A leading unary sign binds looser than power, so s is
// not split when power is its only top-level operator and s begins with a
// sign; the caller negates the rest instead.
func SplitBinary(s string) (left string, op Op, right string, ok bool) {
	type hit struct {
		op  Op
		pos int
		end int
	}

	var add, mul, pow []hit

	depth := 0

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch c {
		case '(':
			depth++

			continue
		case ')':
			depth--

			continue
		}

		if depth != 0 {
			continue
		}

		switch c {
		case '+', '-':
			if isUnary(s, i) || isExponentSign(s, i) {
				continue
			}

			o, _ := ParseOp(string(c))
			add = append(add, hit{o, i, i + 1})

		case '*':
			if i+1 < len(s) && s[i+1] == '*' {
				pow = append(pow, hit{OpPow, i, i + 2})
				i++

				continue
			}

			mul = append(mul, hit{OpMul, i, i + 1})

		case '/':
			mul = append(mul, hit{OpDiv, i, i + 1})

		case '^':
			pow = append(pow, hit{OpPow, i, i + 1})
		}
	}

	var h hit

	switch {
	case len(add) > 0:
		h = add[len(add)-1]
	case len(mul) > 0:
		h = mul[len(mul)-1]
	case len(pow) > 0:
		if t := strings.TrimLeft(s, " "); t != "" && (t[0] == '-' || t[0] == '+') {
			return "", 0, "", false
		}

		h = pow[0]
	default:
		return "", 0, "", false
	}

	return strings.TrimSpace(s[:h.pos]), h.op, strings.TrimSpace(s[h.end:]), true
}

// isUnary reports whether the sign at s[i] applies to the operand after it.
func isUnary(s string, i int) bool {
	j := i - 1
	for j >= 0 && s[j] == ' ' {
		j--
	}

	return j < 0 || strings.IndexByte("+-*/^(,", s[j]) >= 0
}

// isExponentSign reports whether the sign at s[i] belongs to a literal such
// as "1.5e-4".
func isExponentSign(s string, i int) bool {
	if i < 2 || (s[i-1] != 'e' && s[i-1] != 'E') {
		return false
	}

	j := i - 2

	digits := false
	for j >= 0 && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
		digits = digits || s[j] != '.'
		j--
	}

	if !digits {
		return false
	}

	// The mantissa must start a token, not end an identifier like "x2e".
	return j < 0 || !isIdentByte(s[j])
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' ||
		c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// CallPrefix returns the function name immediately preceding the opening
// parenthesis at s[open], or "" if the parenthesis does not start a call.
func CallPrefix(s string, open int) (name string, start int) {
	start = open
	for start > 0 && isIdentByte(s[start-1]) {
		start--
	}

	name = s[start:open]
	if name == "" || !IsFunction(name) {
		return "", open
	}

	return name, start
}
