package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func decode(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var recs []map[string]any

	for line := range strings.Lines(buf.String()) {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON %q: %v", line, err)
		}

		recs = append(recs, m)
	}

	return recs
}

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelDebug))

	logger.Trace("trace")
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	recs := decode(t, &buf)
	if len(recs) != 4 {
		t.Fatalf("got %d records, want 4", len(recs))
	}

	for i, want := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		if recs[i]["level"] != want {
			t.Errorf("record %d level = %v, want %s", i, recs[i]["level"], want)
		}
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	t.Parallel()

	var logger Logger

	logger.Error("discarded")
	logger.TraceContext(t.Context(), "discarded")

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Errorf("zero Logger reports %v, %v", logger.Level(), logger.Format())
	}

	if logger.Enabled(t.Context(), LevelError) {
		t.Error("zero Logger is enabled")
	}

	if l := logger.With(slog.Int("n", 1)); l.Logger != nil {
		t.Error("With on zero Logger created a handler")
	}
}

func TestLogger_WithAndWrap(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := Make(&buf, WithFormat(FormatJSON))
	scoped := base.With(slog.String("config", "plant.yaml")).WithGroup("entry")

	scoped.Info("parsed", slog.String("key", "capex"))

	recs := decode(t, &buf)
	if recs[0]["config"] != "plant.yaml" {
		t.Errorf("missing With attribute: %v", recs[0])
	}

	entry, _ := recs[0]["entry"].(map[string]any)
	if entry["key"] != "capex" {
		t.Errorf("missing grouped attribute: %v", recs[0])
	}

	buf.Reset()

	quiet := base.Wrap(WithLevel(LevelError))
	quiet.Warn("dropped")

	if buf.Len() != 0 {
		t.Errorf("Wrap did not raise level: %q", buf.String())
	}

	if base.Level() != LevelInfo || quiet.Level() != LevelError {
		t.Errorf("levels = %v, %v", base.Level(), quiet.Level())
	}
}

func TestLogger_Caller(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatJSON), WithCaller(true)).Info("here")

	recs := decode(t, &buf)

	src, _ := recs[0][slog.SourceKey].(map[string]any)
	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("source = %v, want this file", src)
	}
}

func TestLogger_Pretty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		want   []string
	}{
		{name: "line", format: FormatText, want: []string{"msg", "solved", "cache.hits", "3", "stale"}},
		{name: "block", format: FormatJSON, want: []string{"{\n", "msg", "solved", "cache.hits", "\n}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			logger := Make(&buf, WithPretty(true), WithFormat(tt.format), WithTimeLayout("none")).
				WithGroup("cache").
				With(slog.Int("hits", 3))

			logger.Info("solved", slog.Bool("stale", false))
			logger.Debug("dropped")

			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output %q does not contain %q", out, s)
				}
			}

			if strings.Contains(out, "dropped") {
				t.Errorf("debug message written at info level: %q", out)
			}
		})
	}
}

func TestLogger_Concurrent(t *testing.T) {
	t.Parallel()

	var (
		buf bytes.Buffer
		mu  sync.Mutex
		wg  sync.WaitGroup
	)

	logger := Make(writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()

		return buf.Write(p)
	}), WithFormat(FormatJSON))

	for i := range 16 {
		wg.Go(func() { logger.Info("solve", slog.Int("worker", i)) })
	}

	wg.Wait()

	if n := len(decode(t, &buf)); n != 16 {
		t.Errorf("got %d records, want 16", n)
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
