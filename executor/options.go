package executor

import "go.uber.org/zap"

// Options controls execution tuning that isn't part of the plan or
// operation context itself. CLI/server wiring is out of scope for this
// module, so there is no config-file layer here, just functional options
// a caller sets up once when constructing its gateway.
type Options struct {
	logger           *zap.Logger
	debugAssertions  bool
	reservedVariable string
}

// Option configures an ExecutionContext at construction time.
type Option func(*Options)

// WithLogger sets the structured logger used for fetch dispatch and
// debug diagnostics. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDebugAssertions enables the Parallel-disjointness check described
// in the plan interpreter's design notes. It costs a hash-set insert per
// merged top-level field and should stay off in production.
func WithDebugAssertions(enabled bool) Option {
	return func(o *Options) {
		o.debugAssertions = enabled
	}
}

// WithReservedVariableName overrides the variable name reserved for
// entity-fetch representations (default "representations"). Exposed
// mainly so tests can probe the reserved-variable-collision behavior
// without colliding with fixture data that happens to use the default.
func WithReservedVariableName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.reservedVariable = name
		}
	}
}

func defaultOptions() Options {
	return Options{
		logger:           zap.NewNop(),
		reservedVariable: "representations",
	}
}
