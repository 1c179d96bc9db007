package log

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{" info ", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"error+2", Level(10)},
		{"loud", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, name := range slices.Collect(Formats()) {
		if got := ParseFormat(strings.ToUpper(name)).String(); got != name {
			t.Errorf("ParseFormat(%q) = %q", name, got)
		}
	}

	if got := ParseFormat("xml"); got != DefaultFormat {
		t.Errorf("ParseFormat(xml) = %v, want %v", got, DefaultFormat)
	}
}

func TestLevels(t *testing.T) {
	t.Parallel()

	want := []string{"trace", "debug", "info", "warn", "error"}
	if got := slices.Collect(Levels()); !slices.Equal(got, want) {
		t.Errorf("Levels() = %v, want %v", got, want)
	}

	if got := Level(3).String(); got != "Level(3)" {
		t.Errorf("Level(3).String() = %q", got)
	}
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	c := makeConfig(nil,
		WithLevel(LevelWarn),
		WithFormat(FormatJSON),
		WithCaller(true),
		WithPretty(true),
	)

	if c.level != LevelWarn || c.format != FormatJSON || !c.caller || !c.pretty {
		t.Errorf("options not applied: %+v", c)
	}

	if c.output == nil {
		t.Error("nil output was not replaced")
	}

	d := c.with(WithLevel(LevelDebug))
	if d.level != LevelDebug || c.level != LevelWarn {
		t.Errorf("with() modified its receiver: %v, %v", c.level, d.level)
	}
}

func TestMakeFormatTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2030, time.June, 1, 15, 4, 5, 123456789, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2030-06-01T15:04:05Z"},
		{"rfc-3339-nano", "2030-06-01T15:04:05.123456789Z"},
		{"Kitchen", "3:04PM"},
		{"ms", "Jun  1 15:04:05.123"},
		{"2006", "2030"},
		{"none", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			t.Parallel()

			if got := makeFormatTime(tt.layout)(ts); got != tt.want {
				t.Errorf("format %q = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}
