// Package launch wires every other package in this tree into the full
// sandbox launch sequence: merging the permission context, deciding what
// the sandbox sees, seeding the bubblewrap argument stream, starting the
// bus proxies and ld.so.cache regeneration as external helpers, and
// finally handing off to the sandboxed command itself.
package launch

import "fmt"

// DeployError reports a problem with the deploy data a launch was asked to
// run: a missing runtime, an unreadable extension, or similar.
type DeployError struct{ Msg string }

func (e DeployError) Error() string { return e.Msg }

// IoError wraps a filesystem operation that failed while assembling a
// launch, naming the operation and path for the benefit of the eventual
// log line.
type IoError struct {
	Op, Path string
	Err      error
}

func (e IoError) Error() string { return fmt.Sprintf("launch: %s %s: %v", e.Op, e.Path, e.Err) }
func (e IoError) Unwrap() error { return e.Err }

// ProxyError reports a failure starting or communicating with a bus
// filtering proxy.
type ProxyError struct{ Msg string }

func (e ProxyError) Error() string { return e.Msg }

// SeccompError reports a failure compiling or sealing the seccomp filter a
// launch would otherwise apply.
type SeccompError struct{ Msg string }

func (e SeccompError) Error() string { return e.Msg }

// FatalSandbox reports that the sandboxed command itself could not be
// started; every other recoverable step has already been attempted.
type FatalSandbox struct{ Msg string }

func (e FatalSandbox) Error() string { return e.Msg }

// PortalUnavailable reports that the document portal could not be reached.
// Per spec, this is non-fatal: a launch proceeds without document-portal
// rewriting rather than aborting.
type PortalUnavailable struct{ Msg string }

func (e PortalUnavailable) Error() string { return e.Msg }

// TransientUnitUnavailable reports that the launch could not be placed in
// its own systemd transient unit. Also non-fatal: the sandboxed process
// still runs, just without the unit's resource accounting.
type TransientUnitUnavailable struct{ Msg string }

func (e TransientUnitUnavailable) Error() string { return e.Msg }
