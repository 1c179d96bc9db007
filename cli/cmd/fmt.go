package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/windeq/lang"
)

// Output formats accepted by the --output flags.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// outputIndent is the indent width of JSON and YAML output.
const outputIndent = 2

// record is one named value of a result set.
type record struct {
	Key   string
	Value any
}

// records is an ordered result set. Its JSON and YAML forms are objects
// whose keys keep the order of the slice.
type records []record

// MarshalJSON implements [json.Marshaler].
func (r records) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, rec := range r {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(rec.Key)
		if err != nil {
			return nil, err
		}

		v, err := json.Marshal(rec.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// mapSlice returns r as an ordered YAML mapping.
func (r records) mapSlice() yaml.MapSlice {
	ms := make(yaml.MapSlice, len(r))
	for i, rec := range r {
		v := rec.Value
		if sub, ok := v.(records); ok {
			v = sub.mapSlice()
		}

		ms[i] = yaml.MapItem{Key: rec.Key, Value: v}
	}

	return ms
}

// write prints r to w in the given format.
func (r records) write(ctx context.Context, w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer

		data, err := json.Marshal(r)
		if err == nil {
			err = json.Indent(&buf, data, "", strings.Repeat(" ", outputIndent))
		}

		if err != nil {
			return ErrMarshal.Wrap(err).With(slog.String("format", format))
		}

		buf.WriteByte('\n')
		_, err = buf.WriteTo(w)

		return err

	case FormatYAML:
		data, err := yaml.MarshalContext(ctx, r.mapSlice(), yaml.Indent(outputIndent))
		if err != nil {
			return ErrMarshal.Wrap(err).With(slog.String("format", format))
		}

		_, err = w.Write(data)

		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	r.writeText(tw, "")

	return tw.Flush()
}

func (r records) writeText(w io.Writer, indent string) {
	for _, rec := range r {
		if sub, ok := rec.Value.(records); ok {
			fmt.Fprintf(w, "%s%s:\n", indent, rec.Key)
			sub.writeText(w, indent+"  ")

			continue
		}

		fmt.Fprintf(w, "%s%s\t= %s\n", indent, rec.Key, textOf(rec.Value))
	}
}

func textOf(v any) string {
	switch t := v.(type) {
	case lang.Value:
		return t.String()
	case []string:
		return strings.Join(t, " ")
	case float64:
		return lang.Scalar(t).String()
	}

	return fmt.Sprint(v)
}
