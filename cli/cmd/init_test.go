package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initCLI struct {
	LogLevel  string   `default:"info"  name:"log-level"`
	Library   []string `name:"library"  short:"L"`
	Nearest   bool     `name:"nearest-power"`
	PprofMode string   `name:"pprof-mode"`
	Version   kong.VersionFlag

	Init Init `cmd:""`
}

func parseInit(t *testing.T, path string, args ...string) *kong.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli,
		kong.Vars{ConfigIdentifier: path, "version": "test"},
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	if err != nil {
		t.Fatalf("kong.New error: %v", err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	return ktx
}

func TestInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	ktx := parseInit(t, path, "-L", "/a", "-L", "/b", "--pprof-mode", "cpu", "init")

	if err := (&Init{}).Run(WithContext(t.Context(), ktx)); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	var got yaml.MapSlice
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode config: %v\n%s", err, data)
	}

	var keys []string

	for _, item := range got {
		keys = append(keys, item.Key.(string))
	}

	want := []string{"log-level", "library", "nearest-power"}
	if len(keys) != len(want) {
		t.Fatalf("config keys = %v, want %v", keys, want)
	}

	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("config keys = %v, want %v", keys, want)

			break
		}
	}

	if got[0].Value != "info" {
		t.Errorf("log-level = %v, want info", got[0].Value)
	}
}

func TestInit_Exists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := os.WriteFile(path, []byte("old\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ktx := parseInit(t, path, "init")
	ctx := WithContext(t.Context(), ktx)

	err := (&Init{}).Run(ctx)
	if !errors.Is(err, ErrWriteConfig) || !errors.Is(err, ErrFileExists) {
		t.Fatalf("Run error = %v, want %v", err, ErrFileExists)
	}

	if err := (&Init{Force: true}).Run(ctx); err != nil {
		t.Fatalf("Run with force error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) == "old\n" {
		t.Error("config not overwritten with force")
	}
}

func TestConfigValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		zero bool
	}{
		{nil, true},
		{"", true},
		{[]string{}, true},
		{kong.VersionFlag(false), true},
		{"x", false},
		{[]string{"x"}, false},
		{false, false},
		{0, false},
	}

	for _, tt := range tests {
		if got := configValue(tt.in); (got == nil) != tt.zero {
			t.Errorf("configValue(%#v) = %v", tt.in, got)
		}
	}
}
