package repl

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/windeq/lang"
	"github.com/ardnew/windeq/library"
)

// errQuit is returned by a command that ends the session.
var errQuit = errors.New("quit")

// ctrlCommands are the control-mode commands in the order help lists them.
var ctrlCommands = []string{"help", "list", "set", "unset", "vars", "clear", "quit"}

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help               Print this message
  list [PATH]        List the entries of the library or of PATH
  set NAME=VALUE...  Bind variables (comma-separated values make a vector)
  unset NAME...      Remove bindings (all when no names are given)
  vars               Print the current bindings
  clear              Clear screen
  quit               Exit

Usage:
  Type a path or expression to evaluate it, such as
    turbine::capex_12MW * num_turbines
  Free variables are taken from the bindings, then from library defaults.
  Tab / Shift-Tab cycle through completions, Up/Down browse history.
  Press Ctrl+C on an empty line or Ctrl+D to exit.
`
}

// session holds the library and the variable bindings of a shell.
type session struct {
	dir      *library.Directory
	bindings lang.Bindings
	paths    []string // every item path, computed once
}

func newSession(dir *library.Directory) *session {
	return &session{
		dir:      dir,
		bindings: make(lang.Bindings),
		paths:    itemPaths(dir),
	}
}

// itemPaths returns the "::"-joined path of every item below dir in load
// order.
func itemPaths(dir *library.Directory) []string {
	var paths []string

	var walk func(prefix string, it library.Item)

	walk = func(prefix string, it library.Item) {
		paths = append(paths, prefix)

		var children iter.Seq2[string, library.Item]

		if g, ok := it.Group(); ok {
			children = g.All()
		} else if d, ok := it.Directory(); ok {
			children = d.All()
		}

		if children == nil {
			return
		}

		for k, child := range children {
			walk(library.JoinPath(prefix, k), child)
		}
	}

	for k, it := range dir.All() {
		walk(k, it)
	}

	return paths
}

// eval resolves input against the library and evaluates it if it is a
// Formula.
func (s *session) eval(input string) (string, error) {
	it, err := s.dir.Get(input)
	if err != nil {
		return "", err
	}

	f, ok := it.Formula()
	if !ok {
		return it.String(), nil
	}

	v, err := f.Evaluate(s.bindings)
	if err != nil {
		if errors.Is(err, lang.ErrMissingInput) {
			return f.String(), fmt.Errorf("%w; bind them with 'set'", err)
		}

		return "", err
	}

	return v.String(), nil
}

// command runs a control-mode command line.
func (s *session) command(input string) (string, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", nil
	}

	name, args := fields[0], fields[1:]

	switch name {
	case "q", "quit", "exit":
		return "", errQuit

	case "h", "help":
		return helpMessage(), nil

	case "l", "list":
		return s.list(args)

	case "s", "set":
		return s.set(args)

	case "u", "unset":
		if len(args) == 0 {
			clear(s.bindings)
		}

		for _, a := range args {
			delete(s.bindings, a)
		}

		return s.vars(), nil

	case "v", "vars":
		return s.vars(), nil
	}

	return "", fmt.Errorf("unknown command: %s (try 'help')", name)
}

func (s *session) list(args []string) (string, error) {
	type lister interface {
		Keys() []string
		Item(key string) (library.Item, bool)
	}

	var l lister = s.dir

	if len(args) > 0 {
		it, err := s.dir.Get(args[0])
		if err != nil {
			return "", err
		}

		if g, ok := it.Group(); ok {
			l = g
		} else if d, ok := it.Directory(); ok {
			l = d
		} else {
			return it.String(), nil
		}
	}

	var sb strings.Builder

	for _, k := range l.Keys() {
		it, _ := l.Item(k)
		fmt.Fprintf(&sb, "  %s %s\n", k, hintStyle.Render(preview(it)))
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}

func (s *session) set(args []string) (string, error) {
	for _, a := range args {
		name, text, ok := strings.Cut(a, "=")
		if !ok || !lang.IsIdentifier(name) {
			return "", lang.ErrType.With(slog.String("binding", a))
		}

		var vals []float64

		for f := range strings.SplitSeq(text, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return "", lang.ErrType.Wrap(err).With(slog.String("binding", a))
			}

			vals = append(vals, v)
		}

		if len(vals) == 1 {
			s.bindings[name] = lang.Scalar(vals[0])
		} else {
			s.bindings[name] = lang.Vector(vals)
		}
	}

	return s.vars(), nil
}

func (s *session) vars() string {
	if len(s.bindings) == 0 {
		return hintStyle.Render("  (no bindings)")
	}

	var sb strings.Builder

	for _, k := range slices.Sorted(maps.Keys(s.bindings)) {
		fmt.Fprintf(&sb, "  %s = %s\n", k, s.bindings[k])
	}

	return strings.TrimRight(sb.String(), "\n")
}

// preview summarizes an item on one line.
func preview(it library.Item) string {
	if f, ok := it.Formula(); ok {
		text := f.String()
		if len(text) > 40 {
			text = text[:37] + "..."
		}

		return text
	}

	if g, ok := it.Group(); ok {
		return fmt.Sprintf("{ %d items }", g.Len())
	}

	if d, ok := it.Directory(); ok {
		return fmt.Sprintf("[ %d entries ]", d.Len())
	}

	return ""
}
