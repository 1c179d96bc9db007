package cmd

import (
	"context"

	"github.com/ardnew/windeq/cli/cmd/repl"
	"github.com/ardnew/windeq/log"
)

// Repl starts an interactive shell over the equation library.
type Repl struct {
	NoHistory bool `help:"Do not read or write the history file"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	dir, err := libraryFrom(ctx).require(ctx)
	if err != nil {
		return err
	}

	var cacheDir string

	if ktx := kongContextFrom(ctx); ktx != nil && !r.NoHistory {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, dir, cacheDir, log.Default())
}
