package profiler

import "github.com/pavanmanishd/arenakit/console"

// RegisterCommands adds profileStart, profileStop, profileLog and
// profileToChrome to r.
func (p *Profiler) RegisterCommands(r *console.Registry) {
	r.Func("profileStart", "starts recording, discarding previous samples", noArgs(p.Start))
	r.Func("profileStop", "stops recording", noArgs(p.Stop))
	r.Func("profileLog", "logs and clears the samples", noArgs(p.Log))
	r.Func("profileToChrome", "profileToChrome <file[.gz]>: writes and clears a Chrome trace", func(args []string) error {
		if len(args) != 1 {
			return console.ErrBadArgs
		}
		return p.WriteChromeTracingFile(args[0])
	})
}

func noArgs(fn func()) func([]string) error {
	return func(args []string) error {
		if len(args) != 0 {
			return console.ErrBadArgs
		}
		fn()
		return nil
	}
}
