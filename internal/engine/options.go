package engine

import "github.com/dshills/automata/internal/automaton"

// Default limits.
const (
	DefaultMaxSteps          = 1_000_000
	DefaultMaxConfigurations = 1_000_000
)

// cancelCheckInterval is how many steps run between context checks.
const cancelCheckInterval = 1024

// Configuration is a snapshot of a run, handed to Options.Trace.
// Only the fields relevant to the machine kind are set. The slices are
// owned by the engine and must not be retained.
type Configuration struct {
	State automaton.State
	Pos   int
	Stack []automaton.Symbol
	Tape  []automaton.Symbol
	Head  int
}

// Options bounds pushdown and Turing-machine runs.
type Options struct {
	// MaxSteps caps the transitions a Turing machine may take.
	MaxSteps int
	// MaxConfigurations caps the configurations a pushdown search explores.
	MaxConfigurations int
	// Dedupe skips pushdown configurations that were already explored.
	Dedupe bool
	// Trace, if set, observes every configuration as it is explored.
	Trace func(Configuration)
}

// Option configures Options.
type Option func(*Options)

// WithMaxSteps sets the Turing-machine step ceiling.
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxSteps = n
		}
	}
}

// WithMaxConfigurations sets the pushdown search ceiling.
func WithMaxConfigurations(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxConfigurations = n
		}
	}
}

// WithDedupe enables or disables the visited-configuration filter.
func WithDedupe(on bool) Option {
	return func(o *Options) {
		o.Dedupe = on
	}
}

// WithTrace installs a configuration observer.
func WithTrace(fn func(Configuration)) Option {
	return func(o *Options) {
		o.Trace = fn
	}
}

// DefaultOptions returns the default limits with deduplication enabled.
func DefaultOptions() Options {
	return Options{
		MaxSteps:          DefaultMaxSteps,
		MaxConfigurations: DefaultMaxConfigurations,
		Dedupe:            true,
	}
}

// NewOptions applies opts on top of DefaultOptions.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) withDefaults() Options {
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.MaxConfigurations <= 0 {
		o.MaxConfigurations = DefaultMaxConfigurations
	}
	return o
}
