package docbind

import "github.com/reoring/docbind/diag"

// ErrorMode controls what happens to the remaining entries of a mapping after
// one of them fails.
type ErrorMode int

const (
	// StopOnError skips the remaining entries of the mapping level where the
	// first failure occurred. Entries already processed keep their effects.
	StopOnError ErrorMode = iota
	// ContinueOnError attempts every entry and reports every failure. A key
	// that cannot be read as a string skips only its own entry.
	ContinueOnError
)

func (m ErrorMode) String() string {
	if m == ContinueOnError {
		return "continue"
	}
	return "stop"
}

// UnknownPolicy controls how document keys without a matching field are
// handled.
type UnknownPolicy int

const (
	UnknownIgnore UnknownPolicy = iota // Skip silently.
	UnknownWarn                        // Skip and report a warning.
	UnknownReject                      // Report an error and fail the call.
)

// DefaultMaxDepth bounds container nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 1000

// Options bundles mapping options. When several are passed, the last wins.
type Options struct {
	Mode     ErrorMode
	Unknown  UnknownPolicy
	MaxDepth int
	Reporter diag.Reporter // nil discards events
}

func resolveOptions(opts []Options) Options {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	if opt.Reporter == nil {
		opt.Reporter = diag.Discard
	}
	return opt
}
