package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// Not parallel: replaces the package default logger.
func TestDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithTimeLayout("none")))
	Config(WithLevel(LevelTrace))

	Trace("solving", slog.String("key", "lcoe"))
	With(slog.String("config", "plant.yaml")).Warn("slow")
	ErrorContext(t.Context(), "failed")

	out := buf.String()

	for _, s := range []string{
		"level=TRACE msg=solving key=lcoe",
		"level=WARN msg=slow config=plant.yaml",
		"level=ERROR msg=failed",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output %q does not contain %q", out, s)
		}
	}
}
