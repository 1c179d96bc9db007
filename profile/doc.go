// Package profile provides optional runtime profiling for the windeq command.
//
// Profiling is compiled in only with the "pprof" build tag, which wires in
// [github.com/pkg/profile] and registers the [net/http/pprof] handlers.
// Without the tag, [Modes] is empty and [Profiler.Start] does nothing.
//
//	go build -tags pprof .
//	./windeq --pprof-mode cpu eval plant.yaml -i sites.csv
//	go tool pprof -http=: ~/.cache/windeq/pprof/cpu.pprof
//
// Profiles are written to the directory named by [Profiler.Path], which
// the command line defaults to the "pprof" subdirectory of the user cache
// directory. Large sweeps over many sites are the usual reason to profile:
// the "cpu" and "allocs" modes show whether time goes to parsing the
// library or to evaluating formulas.
package profile
