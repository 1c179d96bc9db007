package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/windeq/lang"
)

// isWordBoundary reports whether r delimits a completion word. Colons are
// not boundaries, so a whole "a::b::c" path completes as one word.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'(', ')', ',', '=',
		'+', '-', '*', '/', '^':
		return true
	}

	return false
}

// wordBounds returns the word at cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// evalCandidates returns the completion candidates of eval mode: every item
// path, the arithmetic functions and the bound variable names.
func (s *session) evalCandidates() []string {
	c := slices.Clone(s.paths)
	c = append(c, lang.Functions()...)

	for k := range s.bindings {
		if !slices.Contains(c, k) {
			c = append(c, k)
		}
	}

	return c
}

// complete returns the fuzzy matches of the word at cursor, ranked
// best-first, and the word boundaries. An empty word has no matches.
func (s *session) complete(mode inputMode, input string, cursor int) (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	var word string

	word, wordStart, wordEnd = wordBounds(input, cursor)
	if word == "" {
		return nil, wordStart, wordEnd
	}

	candidates := ctrlCommands

	if mode == modeEval {
		candidates = s.evalCandidates()
	} else if strings.TrimSpace(input[:wordStart]) != "" {
		// Arguments of "list" are paths; others have no completions.
		if fields := strings.Fields(input[:wordStart]); fields[0] != "list" && fields[0] != "l" {
			return nil, wordStart, wordEnd
		}

		candidates = s.paths
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit width. The candidate at suggIdx is highlighted while tabbing.
func renderCandidateBar(matches fuzzy.Matches, suggIdx int, tabActive bool, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += lipgloss.Width(sep)
		}

		if i > 0 && i < len(matches)-1 && used+w+reserve > width {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders match with its matched characters emphasized.
// Functions carry a "()" suffix that is not part of the completion.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, emph := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, emph = selectedStyle, selectedStyle.Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(emph.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if lang.IsFunction(match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
