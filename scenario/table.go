package scenario

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/readahead"

	"github.com/ardnew/windeq/lang"
	"github.com/ardnew/windeq/library"
)

// Columns is a named set of equal-length numeric columns, such as a table of
// sites with one row per site.
type Columns interface {
	Columns() []string
	Column(name string) ([]float64, bool)
}

// Table is an in-memory [Columns].
type Table struct {
	names []string
	cols  map[string][]float64
	rows  int
}

// NewTable returns an empty Table.
func NewTable() *Table { return &Table{cols: make(map[string][]float64)} }

// Set adds or replaces a column. Every column must have the same length.
func (t *Table) Set(name string, col []float64) error {
	_, exists := t.cols[name]

	// Replacing the only column may change the row count.
	if n := len(t.names); n > 0 && !(exists && n == 1) && len(col) != t.rows {
		return lang.ErrShape.With(
			slog.String("column", name),
			slog.Int("rows", t.rows),
			slog.Int("length", len(col)),
		)
	}

	if !exists {
		t.names = append(t.names, name)
	}

	t.cols[name] = slices.Clone(col)
	t.rows = len(col)

	return nil
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string { return slices.Clone(t.names) }

// Column returns the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	c, ok := t.cols[name]

	return c, ok
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.rows }

// ReadCSV reads a Table from comma-separated text with a header row. Every
// cell below the header must be a number.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewTable(), nil
		}

		return nil, lang.ErrDocument.Wrap(err)
	}

	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	data := make([][]float64, len(header))

	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, lang.ErrDocument.Wrap(err)
		}

		for i, cell := range rec {
			f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, lang.ErrType.Wrap(err).With(
					slog.String("column", header[i]),
					slog.Int("row", row),
				)
			}

			data[i] = append(data[i], f)
		}
	}

	t := NewTable()

	for i, h := range header {
		if err := t.Set(h, data[i]); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// ReadInputs reads input bindings from a CSV table or from a YAML, JSON or
// TOML document of numbers and numeric lists.
func ReadInputs(ctx context.Context, name string) (lang.Bindings, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return readCSVFile(name)
	}

	doc, err := library.ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}

	m := make(map[string]any, len(doc))
	for _, item := range doc {
		m[library.KeyString(item.Key)] = item.Value
	}

	b, err := lang.BindingsOf(m)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("document", name))
	}

	return b, nil
}

func readCSVFile(name string) (lang.Bindings, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, lang.ErrDocument.Wrap(err).With(slog.String("document", name))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	t, err := ReadCSV(ra)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("document", name))
	}

	return columnBindings(t), nil
}

func columnBindings(c Columns) lang.Bindings {
	names := c.Columns()
	b := make(lang.Bindings, len(names))

	for _, n := range names {
		col, _ := c.Column(n)
		b[n] = lang.Vector(col)
	}

	return b
}
