//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the windeq module embedded at build
// time from the VERSION file.
var Version = strings.TrimSpace(version)

const (
	// Name is the command and module identifier. It appears in help text,
	// default config paths and the library search path variable.
	Name = "windeq"
	// Description is a short summary of the project used in help output.
	Description = "Offshore wind cost equation engine"
	// PathEnv names the environment variable holding the list of equation
	// library roots, separated like PATH.
	PathEnv = "WINDEQ_PATH"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
