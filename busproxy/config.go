// Package busproxy assembles and launches a filtering D-Bus proxy
// (xdg-dbus-proxy) in front of the session, system, and accessibility
// buses, so a sandboxed application only ever talks to a narrow,
// policy-derived slice of each bus.
package busproxy

import (
	"fmt"
	"sort"

	permctx "firelock.dev/launcher/context"
)

// ProxyName is the file name or path to the D-Bus filtering proxy binary.
// Overriding ProxyName only affects proxies launched after the change.
var ProxyName = "xdg-dbus-proxy"

// a11yFilterArgs is the fixed filter set permitted on the accessibility
// bus: embedding/unembedding an accessible root and the registry's event
// and device-listener queries, and nothing else.
var a11yFilterArgs = []string{
	"--sloppy-names",
	"--filter=org.a11y.atspi.Registry=org.a11y.atspi.Socket.Embed@/org/a11y/atspi/accessible/root",
	"--filter=org.a11y.atspi.Registry=org.a11y.atspi.Socket.Unembed@/org/a11y/atspi/accessible/root",
	"--filter=org.a11y.atspi.Registry=org.a11y.atspi.Registry.GetRegisteredEvents@/org/a11y/atspi/registry",
	"--filter=org.a11y.atspi.Registry=org.a11y.atspi.DeviceEventController.GetKeystrokeListeners@/org/a11y/atspi/registry/deviceeventcontroller",
	"--filter=org.a11y.atspi.Registry=org.a11y.atspi.DeviceEventController.GetDeviceEventListeners@/org/a11y/atspi/registry/deviceeventcontroller",
	"--filter=org.a11y.atspi.Registry=org.a11y.atspi.DeviceEventController.NotifyListenersSync@/org/a11y/atspi/registry/deviceeventcontroller",
	"--filter=org.a11y.atspi.Registry=org.a11y.atspi.DeviceEventController.NotifyListenersAsync@/org/a11y/atspi/registry/deviceeventcontroller",
}

// Config describes the proxy filter for exactly one bus connection.
type Config struct {
	// Upstream is the real bus address the proxy connects to.
	Upstream string
	// Downstream is the socket path the proxy listens on, bound into the
	// sandbox in Upstream's place.
	Downstream string

	// AppID, when non-empty, grants the session-bus self-own rule
	// (--own=<AppID> and --own=<AppID>.*). Only meaningful for the
	// session bus.
	AppID string

	// Policy maps a bus name pattern to the access level to grant it.
	Policy map[string]permctx.Policy

	// A11y selects the fixed accessibility-bus filter set in place of
	// AppID/Policy.
	A11y bool
}

// Args assembles the xdg-dbus-proxy argument list for c, not including the
// program name itself.
func (c *Config) Args() []string {
	args := make([]string, 0, 3+2*len(c.Policy)+len(a11yFilterArgs))
	args = append(args, c.Upstream, c.Downstream, "--filter")

	if c.A11y {
		args = append(args, a11yFilterArgs...)
		return args
	}

	if c.AppID != "" {
		args = append(args, "--own="+c.AppID, "--own="+c.AppID+".*")
	}

	names := make([]string, 0, len(c.Policy))
	for name := range c.Policy {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch c.Policy[name] {
		case permctx.PolicySee:
			args = append(args, "--see="+name)
		// Filtered is talk access with its method-call surface narrowed
		// by --call/--broadcast rules the portal defaults already carry
		// via GenericPolicy; xdg-dbus-proxy has no separate verb for it.
		case permctx.PolicyFiltered, permctx.PolicyTalk:
			args = append(args, "--talk="+name)
		case permctx.PolicyOwn:
			args = append(args, "--own="+name)
		}
	}
	return args
}

// ShouldProxy reports whether a bus needs a filtering proxy at all, given
// its policy map and whether the corresponding socket capability is
// granted unrestricted. An empty policy plus an unrestricted grant means
// the host socket can be bound straight through.
func ShouldProxy(policy map[string]permctx.Policy, socketGranted bool) bool {
	return len(policy) != 0 || !socketGranted
}

// BusKind identifies which of the three buses a [Config] targets.
type BusKind int

const (
	Session BusKind = iota
	System
	A11y
)

func (k BusKind) String() string {
	switch k {
	case Session:
		return "session"
	case System:
		return "system"
	case A11y:
		return "a11y"
	default:
		return "invalid"
	}
}

// SandboxSocketPath is the path the bus socket (real or proxied) is bound
// at inside the sandbox.
func (k BusKind) SandboxSocketPath(uid int) string {
	switch k {
	case Session:
		return fmt.Sprintf("/run/user/%d/bus", uid)
	case System:
		return "/run/dbus/system_bus_socket"
	case A11y:
		return fmt.Sprintf("/run/user/%d/at-spi-bus", uid)
	default:
		panic("busproxy: invalid bus kind")
	}
}

// EnvVar is the environment variable the sandboxed process reads the bus
// address from.
func (k BusKind) EnvVar() string {
	switch k {
	case Session:
		return "DBUS_SESSION_BUS_ADDRESS"
	case System:
		return "DBUS_SYSTEM_BUS_ADDRESS"
	case A11y:
		return "AT_SPI_BUS_ADDRESS"
	default:
		panic("busproxy: invalid bus kind")
	}
}

// SandboxAddress is the address value to set EnvVar() to once
// SandboxSocketPath is bound.
func (k BusKind) SandboxAddress(uid int) string {
	return "unix:path=" + k.SandboxSocketPath(uid)
}
