// Package config holds the small set of run-time options the CLI can
// vary, passed through functional options the way the prior preproc
// package configures itself (preproc.WithIncludePaths, preproc.WithDefines).
package config

import "io"

// Options configures a compile+run session.
type Options struct {
	Trace  bool      // log one line per executed VM instruction
	Output io.Writer // where put_i/put_d write; nil means os.Stdout
}

// Option mutates an Options value.
type Option func(*Options)

// WithTrace enables per-instruction VM tracing.
func WithTrace(trace bool) Option {
	return func(o *Options) { o.Trace = trace }
}

// WithOutput redirects external-function output (put_i/put_d), used by
// tests to capture program output without touching os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *Options) { o.Output = w }
}

// New applies opts over the zero-value Options.
func New(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
