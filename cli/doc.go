// Package cli contains the command line interface for windeq.
//
// # Usage
//
//	windeq [flags] <config> [<keys> ...]   solve a scenario (eval)
//	windeq inputs <config>                  list the inputs a scenario needs
//	windeq show [<key>]                     print the library or one item
//	windeq repl                             interactive shell
//	windeq init                             write the configuration file
//
// # Equation Library
//
// Commands read equations from the library roots given with -L, in order,
// followed by the roots listed in $WINDEQ_PATH. Earlier roots shadow later
// ones, and repeated or missing directories are skipped.
//
//   - -L, --library: Add a library root
//   - --nearest-power, --interp-power: Power variant policy
//   - --nearest-year, --interp-year: Year variant policy
//
// A scenario configuration may override the policy and name its own library
// with equation_directory.
//
// # Configuration File
//
// Flag defaults are read from config.yaml in the user configuration
// directory. Nested mappings are flattened with "-", so both of these set
// --log-level:
//
//	log-level: debug
//	log:
//	  level: debug
//
// Command-line flags override the file. "windeq init" writes the current
// flag values to it.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, ms, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o windeq .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/windeq/pprof)
//
// # Examples
//
//	# Solve a plant with the depth of each site from a table
//	windeq -L ./equations plant.yaml -i sites.csv -o json
//
//	# Bind inputs on the command line and print a single entry
//	windeq -L ./equations plant.yaml lcoe -s depth=30,45 -s num_turbines=50
//
//	# Interpolate turbine ratings between library variants
//	windeq --interp-power show turbine::capex_13MW
package cli
