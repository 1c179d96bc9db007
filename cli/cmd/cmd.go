package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/windeq/library"
	"github.com/ardnew/windeq/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	libraryKey struct{}
	outputKey  struct{}
)

// Library names the equation library roots and the variant policy selected
// on the command line.
type Library struct {
	Roots  []string
	Policy library.Policy
}

// WithLibrary returns a new context.Context carrying lib.
func WithLibrary(ctx context.Context, lib Library) context.Context {
	return context.WithValue(ctx, libraryKey{}, lib)
}

func libraryFrom(ctx context.Context) Library {
	lib, _ := ctx.Value(libraryKey{}).(Library)

	return lib
}

// WithOutput returns a new context.Context whose commands print to w
// instead of [os.Stdout].
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// Load mounts every root and merges them into one Directory, with earlier
// roots shadowing later ones. Roots that name the same directory, through
// symlinks or relative paths, are mounted once.
//
// Load returns nil and no error if there are no roots.
func (l Library) Load(ctx context.Context) (*library.Directory, error) {
	logger := log.Default()

	var (
		dir  *library.Directory
		seen = make(map[fileKey]struct{})
	)

	for _, root := range l.Roots {
		if !uniqueDir(root, seen) {
			logger.DebugContext(ctx, "skip library root", slog.String("root", root))

			continue
		}

		d, err := library.LoadDir(ctx, root,
			library.WithPolicy(l.Policy),
			library.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}

		if dir == nil {
			dir = d
		} else {
			dir = d.Merge(dir)
		}
	}

	return dir, nil
}

// require is Load, failing with [ErrNoLibrary] if there are no roots.
func (l Library) require(ctx context.Context) (*library.Directory, error) {
	dir, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}

	if dir == nil {
		return nil, ErrNoLibrary
	}

	return dir, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
type fileKey struct {
	dev uint64
	ino uint64
}

// uniqueDir reports whether path names a directory not already in seen,
// adding it if so. Paths that cannot be identified are always unique.
func uniqueDir(path string, seen map[fileKey]struct{}) bool {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return true
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return true
	}

	key, ok := makeFileKey(info)
	if !ok {
		return true
	}

	if _, exists := seen[key]; exists {
		return false
	}

	seen[key] = struct{}{}

	return true
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
