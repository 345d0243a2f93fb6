package hlog

import "sync/atomic"

var verbose atomic.Bool

// Load reports whether verbose logging is currently enabled.
func Load() bool { return verbose.Load() }

// Store enables or disables verbose logging.
func Store(v bool) { verbose.Store(v) }

// Verbose logs v at debug level, gated on the verbose flag.
func Verbose(v ...any) {
	if verbose.Load() {
		withPrefix().Debugln(v...)
	}
}

// Verbosef logs a formatted message at debug level, gated on the verbose flag.
func Verbosef(format string, v ...any) {
	if verbose.Load() {
		withPrefix().Debugf(format, v...)
	}
}
