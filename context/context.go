// Package context implements the permission context model (C1): a
// three-valued capability set with additive/subtractive merge semantics,
// parsed from and serialized to flatpak-style INI metadata, and round-tripped
// through an equivalent CLI argument surface.
package context

import (
	"regexp"
	"strings"
)

// FSMode is the exposure mode requested for a filesystem path-spec.
type FSMode int

const (
	// ReadOnly exposes the path read-only.
	ReadOnly FSMode = iota
	// ReadWrite exposes the path read-write.
	ReadWrite
	// Create exposes the path read-write, creating it first if missing.
	Create
	// Negated explicitly denies a path even if a broader rule granted it.
	Negated
)

func (m FSMode) String() string {
	switch m {
	case ReadOnly:
		return "ro"
	case ReadWrite:
		return "rw"
	case Create:
		return "create"
	case Negated:
		return "negated"
	default:
		return "invalid"
	}
}

// Policy is a D-Bus access level, ordinal: higher is more privileged.
type Policy int

const (
	PolicyNone Policy = iota
	PolicySee
	PolicyFiltered
	PolicyTalk
	PolicyOwn
)

var policyNames = map[string]Policy{
	"none": PolicyNone, "see": PolicySee, "filtered": PolicyFiltered,
	"talk": PolicyTalk, "own": PolicyOwn,
}

func (p Policy) String() string {
	for name, v := range policyNames {
		if v == p {
			return name
		}
	}
	return "none"
}

// Context is the additive/subtractive permission set described by spec §3.
// The zero value is a valid empty Context.
type Context struct {
	Shares   CapMask
	Sockets  CapMask
	Devices  CapMask
	Features CapMask

	// EnvVars maps name to value; an empty value signals unset.
	EnvVars map[string]string
	// Persistent is the set of home-relative persisted paths.
	Persistent map[string]struct{}
	// Filesystems maps a path-spec to its requested mode.
	Filesystems map[string]FSMode

	SessionBusPolicy map[string]Policy
	SystemBusPolicy  map[string]Policy

	// GenericPolicy maps "subsystem.key" to an ordered value list where a
	// "!"-prefixed entry denotes a removal that survives later merges.
	GenericPolicy map[string][]string
}

// New returns an empty, fully initialized Context.
func New() *Context {
	return &Context{
		EnvVars:          make(map[string]string),
		Persistent:       make(map[string]struct{}),
		Filesystems:      make(map[string]FSMode),
		SessionBusPolicy: make(map[string]Policy),
		SystemBusPolicy:  make(map[string]Policy),
		GenericPolicy:    make(map[string][]string),
	}
}

// Default returns the Context carrying the default permissions granted
// before any metadata is loaded: talk rights on the session bus to names
// matching org.freedesktop.portal.*.
func Default() *Context {
	c := New()
	c.SessionBusPolicy["org.freedesktop.portal.*"] = PolicyTalk
	return c
}

var busNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*(\.[A-Za-z_][A-Za-z0-9_-]*)+$`)

// validBusPattern reports whether name is a valid well-known D-Bus name, or
// ends in ".*" where the prefix is a valid well-known name. Unique
// connection names (leading ':') are rejected.
func validBusPattern(name string) bool {
	if strings.HasPrefix(name, ":") {
		return false
	}
	if strings.HasSuffix(name, ".*") {
		name = strings.TrimSuffix(name, ".*")
		if name == "" {
			return false
		}
	}
	return busNameRe.MatchString(name)
}

// validFilesystemSpec reports whether spec is one of the accepted
// path-spec forms: literal "host", literal "home", "xdg-<name>[/sub]",
// "~/sub", or an absolute "/sub".
func validFilesystemSpec(spec string) bool {
	switch {
	case spec == "host", spec == "home":
		return true
	case strings.HasPrefix(spec, "xdg-"):
		return spec != "xdg-"
	case strings.HasPrefix(spec, "~/"):
		return true
	case strings.HasPrefix(spec, "/"):
		return true
	default:
		return false
	}
}

// validGenericPolicyKey reports whether key is "subsystem.key" with both
// segments non-empty and exactly one separating dot.
func validGenericPolicyKey(key string) bool {
	i := strings.IndexByte(key, '.')
	if i <= 0 || i == len(key)-1 {
		return false
	}
	return strings.IndexByte(key[i+1:], '.') < 0
}

// applyPolicyValue implements the generic-policy merge rule: remove any
// existing entry whose raw text (after stripping a leading "!") equals the
// new value's raw text, then append the new value verbatim.
func applyPolicyValue(existing []string, value string) []string {
	bare := strings.TrimPrefix(value, "!")
	out := existing[:0:0]
	for _, v := range existing {
		if strings.TrimPrefix(v, "!") == bare {
			continue
		}
		out = append(out, v)
	}
	return append(out, value)
}
