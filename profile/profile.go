package profile

// Tag is the build tag that enables profiling, and the name of the
// subdirectory of the cache directory that receives profiles by default.
const Tag = "pprof"

// Profiler configures a profiling session.
type Profiler struct {
	Mode  string // one of [Modes]
	Path  string // output directory
	Quiet bool   // suppress the profiler's own log lines
}

// Start begins profiling and returns a handle that stops it.
//
// Start returns a no-op handle if the binary was built without the pprof
// tag, or if Mode is empty or unknown. Both Start and Stop are always safe
// to call.
func (p Profiler) Start() interface{ Stop() } {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// Enabled reports whether the binary was built with profiling support.
func Enabled() bool { return len(Modes()) > 0 }

type ignore struct{}

func (ignore) Stop() {}
