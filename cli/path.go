package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/windeq/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

// defaultDirMode is the permission mode for created directories.
const defaultDirMode os.FileMode = 0o700

// configPath returns the path formed by joining the configuration directory
// with the given path elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// searchPath returns the equation library roots: the given roots in order,
// followed by those of the PATH-like list env. Paths that are not
// directories are dropped, as are repeated paths.
func searchPath(env string, roots ...string) []string {
	abs := make([]string, 0, len(roots))

	for _, r := range roots {
		if a, err := filepath.Abs(r); err == nil {
			r = a
		}

		abs = append(abs, r)
	}

	list := mung.Make(
		mung.WithSubjectItems(env),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(abs...),
		mung.WithFilter(isDir),
	).String()

	var out []string

	seen := make(map[string]bool)

	for p := range strings.SplitSeq(list, string(os.PathListSeparator)) {
		if p == "" {
			continue
		}

		p = filepath.Clean(p)
		if seen[p] {
			continue
		}

		seen[p] = true
		out = append(out, p)
	}

	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
