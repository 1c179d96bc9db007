package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Prefix returns the base name used for the configuration and cache
// directories.
//
// It is the base name of the executable, without extension, unless that
// name matches one of the following rules:
//   - "__debug_bin" followed by digits (dlv output): replaced with [Name]
//   - leading dots: removed
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		id = regexp.MustCompile(`^__debug_bin\d*$`).ReplaceAllString(id, Name)
		id = strings.TrimLeft(id, ".")

		if id == "" {
			return Name
		}

		return id
	},
)

// ConfigDir returns the directory holding the CLI configuration file.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return filepath.Join(userDir(os.UserConfigDir, ".config"), Prefix()) },
)

// CacheDir returns the directory holding transient files such as the
// interactive shell history and profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return filepath.Join(userDir(os.UserCacheDir, ".cache"), Prefix()) },
)

// userDir returns the result of lookup, falling back to the named
// directory under the user's home, then to the working directory.
func userDir(lookup func() (string, error), fallback string) string {
	if dir, err := lookup(); err == nil {
		return dir
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, fallback)
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return "."
}
