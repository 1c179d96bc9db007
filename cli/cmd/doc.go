// Package cmd implements the windeq subcommands.
//
// Each command is a kong command struct with a Run(context.Context) method.
// The library roots and variant policy chosen by global flags reach a
// command through [WithLibrary], and output goes to the writer installed
// with [WithOutput], or standard output.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
