package cli

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/windeq/cli/cmd"
	"github.com/ardnew/windeq/library"
	"github.com/ardnew/windeq/log"
	"github.com/ardnew/windeq/pkg"
	"github.com/ardnew/windeq/profile"
)

// CLI is the top-level command-line interface for windeq.
type CLI struct {
	Log     logConfig     `embed:"" group:"log"     prefix:"log-"`
	Pprof   pprofConfig   `embed:"" group:"pprof"   prefix:"pprof-"`
	Library libraryConfig `embed:"" group:"library"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Init   cmd.Init   `cmd:"" help:"Initialize configuration file"`
	Show   cmd.Show   `cmd:"" help:"Print the equation library or one of its items"`
	Inputs cmd.Inputs `cmd:"" help:"List the inputs a scenario needs"`
	Repl   cmd.Repl   `cmd:"" help:"Start an interactive shell"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Solve a scenario"`
}

// libraryConfig selects the equation library roots and the variant policy.
type libraryConfig struct {
	Library      []string `help:"Equation library root, searched before ${pathEnv}" placeholder:"DIR" short:"L" type:"path"`
	NearestPower bool     `help:"Use the nearest power rating when no exact variant exists"`
	InterpPower  bool     `help:"Interpolate between power ratings when no exact variant exists"`
	NearestYear  bool     `help:"Use the nearest year when no exact variant exists"`
	InterpYear   bool     `help:"Interpolate between years when no exact variant exists"`
}

func (*libraryConfig) vars() kong.Vars {
	return kong.Vars{"pathEnv": "$" + pkg.PathEnv}
}

func (*libraryConfig) group() kong.Group {
	var group kong.Group

	group.Key = "library"
	group.Title = "Equation library options"

	return group
}

// library returns the search path and policy for commands.
func (f *libraryConfig) library() cmd.Library {
	return cmd.Library{
		Roots: searchPath(os.Getenv(pkg.PathEnv), f.Library...),
		Policy: library.Policy{
			NearestPower: f.NearestPower,
			InterpPower:  f.InterpPower,
			NearestYear:  f.NearestYear,
			InterpYear:   f.InterpYear,
		},
	}
}

// Run executes the windeq CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Library.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group(), cli.Library.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	log.DebugContext(ctx, "start",
		slog.String("version", pkg.Version),
		slog.String("command", ktx.Command()),
		slog.Bool("pprof", profile.Enabled()),
	)

	lib := cli.Library.library()

	log.DebugContext(ctx, "library search path",
		slog.Any("roots", lib.Roots),
		slog.Any("policy", lib.Policy),
	)

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithLibrary(ctx, lib)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

// version returns the text printed by --version.
func version() string {
	var sb strings.Builder

	sb.WriteString(pkg.Name + " " + pkg.Version)

	for _, a := range pkg.Author {
		sb.WriteString("\n  " + a.Name)

		if a.Email != "" {
			sb.WriteString(" <" + a.Email + ">")
		}
	}

	return sb.String()
}
