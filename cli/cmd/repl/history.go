package repl

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

const baseHistory = "history.utf8"

// maxHistory bounds the number of entries kept in the history file.
const maxHistory = 1000

// ErrOutOfBounds is returned for a history index outside the entries.
var ErrOutOfBounds = errors.New("index out of range")

// Entry is a single history line with the mode it was entered in.
type Entry struct {
	Line string
	Mode inputMode
}

func (e Entry) encode() string {
	if e.Mode == modeCtrl {
		return "C:" + e.Line
	}

	return "E:" + e.Line
}

func decodeEntry(line string) Entry {
	if s, ok := strings.CutPrefix(line, "C:"); ok {
		return Entry{Line: s, Mode: modeCtrl}
	}

	s, _ := strings.CutPrefix(line, "E:")

	return Entry{Line: s, Mode: modeEval}
}

// History is the shell's input history, persisted one entry per line.
// An empty path keeps history in memory only.
type History struct {
	path    string
	entries []Entry
	mu      sync.RWMutex
}

// NewHistory returns an empty History backed by the file at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with those of the history file. A missing file
// is not an error.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}
	defer file.Close()

	h.entries = nil

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.entries = append(h.entries, decodeEntry(line))
		}
	}

	return scanner.Err()
}

// Add appends line in the given mode, moving an earlier identical entry to
// the end, and saves the history.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	e := Entry{Line: line, Mode: mode}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = slices.DeleteFunc(h.entries, func(x Entry) bool { return x == e })
	h.entries = append(h.entries, e)

	if n := len(h.entries) - maxHistory; n > 0 {
		h.entries = slices.Delete(h.entries, 0, n)
	}

	return h.save()
}

// save writes all entries to the history file. Must be called with h.mu
// held.
func (h *History) save() error {
	if h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return err
	}

	var sb strings.Builder
	for _, e := range h.entries {
		sb.WriteString(e.encode() + "\n")
	}

	return os.WriteFile(h.path, []byte(sb.String()), 0o600)
}

// Entry returns the entry at index i, oldest first.
func (h *History) Entry(i int) (Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return Entry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}
