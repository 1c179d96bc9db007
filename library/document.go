package library

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
	"github.com/pelletier/go-toml/v2"

	"github.com/ardnew/windeq/lang"
)

// Document is an ordered mapping decoded from a YAML, JSON or TOML file.
// Nested mappings are also Documents.
type Document = yaml.MapSlice

// VariablesName is the reserved base name of a variable document.
const VariablesName = "variables"

// Format identifies a document encoding.
type Format string

const (
	FormatYAML Format = "yaml" // also JSON, a subset of YAML
	FormatTOML Format = "toml"
)

// Extensions lists the supported document file extensions.
var Extensions = []string{".yaml", ".yml", ".json", ".toml"}

// FormatOf returns the format of a file name by its extension.
func FormatOf(name string) (Format, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}

	return "", false
}

// Stem returns name without a supported document extension.
func Stem(name string) string {
	ext := path.Ext(name)
	if slices.Contains(Extensions, strings.ToLower(ext)) {
		return strings.TrimSuffix(name, ext)
	}

	return name
}

// ReadDocument reads and decodes the named document from fsys.
// Only [WithLogger] is meaningful among opts.
func ReadDocument(
	ctx context.Context,
	fsys fs.FS,
	name string,
	opts ...Option,
) (Document, error) {
	o := makeOptions(opts...)

	format, ok := FormatOf(name)
	if !ok {
		return nil, lang.ErrDocument.With(
			slog.String("document", name),
			slog.String("reason", "unsupported extension"),
		)
	}

	data, err := readAll(fsys, name)
	if err != nil {
		return nil, lang.ErrDocument.Wrap(err).With(slog.String("document", name))
	}

	o.logger.TraceContext(ctx, "read document",
		slog.String("document", name),
		slog.Int("bytes", len(data)),
	)

	doc, err := decodeCached(ctx, o.logger, format, data)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("document", name))
	}

	return doc, nil
}

// ReadFile reads and decodes the document at an operating system path.
func ReadFile(ctx context.Context, name string, opts ...Option) (Document, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, lang.ErrDocument.Wrap(err).With(slog.String("document", name))
	}

	return ReadDocument(ctx, os.DirFS(filepath.Dir(abs)), filepath.Base(abs), opts...)
}

func readAll(fsys fs.FS, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	return io.ReadAll(ra)
}

// Decode decodes data in the given format into an ordered Document.
// The top level must be a mapping; an empty document decodes as empty.
func Decode(format Format, data []byte) (Document, error) {
	var v any

	switch format {
	case FormatYAML:
		if err := yaml.UnmarshalWithOptions(data, &v, yaml.UseOrderedMap()); err != nil {
			return nil, lang.ErrDocument.Wrap(err)
		}

	case FormatTOML:
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, lang.ErrDocument.Wrap(err)
		}

		v = ordered(m)

	default:
		return nil, lang.ErrDocument.With(slog.String("format", string(format)))
	}

	switch doc := v.(type) {
	case nil:
		return Document{}, nil
	case Document:
		return doc, nil
	default:
		return nil, lang.ErrDocument.With(
			slog.String("reason", "top level is not a mapping"),
		)
	}
}

// ordered converts decoded TOML tables into Documents with sorted keys.
func ordered(v any) any {
	switch t := v.(type) {
	case map[string]any:
		doc := make(Document, 0, len(t))
		for _, k := range slices.Sorted(maps.Keys(t)) {
			doc = append(doc, yaml.MapItem{Key: k, Value: ordered(t[k])})
		}

		return doc

	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ordered(e)
		}

		return out

	default:
		return v
	}
}

// Lookup returns the value of key in doc.
func Lookup(doc Document, key string) (any, bool) {
	for _, item := range doc {
		if KeyString(item.Key) == key {
			return item.Value, true
		}
	}

	return nil, false
}

// Number converts a decoded numeric scalar to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}

	return 0, false
}

// KeyString formats a decoded mapping key.
func KeyString(k any) string {
	switch s := k.(type) {
	case string:
		return s
	case nil:
		return "null"
	}

	if f, ok := Number(k); ok {
		return lang.Scalar(f).String()
	}

	return slog.AnyValue(k).String()
}

// IsNumericKey reports whether a decoded key is, or spells, a number.
func IsNumericKey(k any) bool {
	if _, ok := Number(k); ok {
		return true
	}

	s, ok := k.(string)

	return ok && lang.IsNumber(s)
}
