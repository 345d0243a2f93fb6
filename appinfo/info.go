// Package appinfo builds the per-instance metadata blob a sandboxed
// process finds at /.flatpak-info: its own identity, deploy data, and the
// final merged permission context it was launched under.
package appinfo

import (
	"bytes"
	"fmt"

	permctx "firelock.dev/launcher/context"
)

// App carries the application or runtime identity and deploy data an
// instance's metadata blob is built from. When AppPath is empty the
// launch is a bare runtime and the blob's leading group is named Runtime
// instead of Application.
type App struct {
	AppID   string
	AppPath string

	RuntimeRef  string
	RuntimePath string

	AppCommit     string
	RuntimeCommit string

	AppExtensions     string
	RuntimeExtensions string

	Branch string

	// LauncherVersion is embedded verbatim so a sandboxed process can tell
	// which launcher build produced its metadata blob.
	LauncherVersion string

	// SessionBusProxy and SystemBusProxy report whether the corresponding
	// bus is reached through a filtering proxy rather than bound straight
	// through: true iff the matching socket capability isn't granted.
	SessionBusProxy bool
	SystemBusProxy  bool
}

// Build renders a's identity and deploy data, followed by final's
// flattened permission context, into the metadata blob format sandboxed
// processes parse at /.flatpak-info. Grounded on
// flatpak_run_add_app_info_args in the original implementation: the
// leading group's name and its two keys, the Instance group's key set and
// the order they're written in, and the trailing merge of the final
// context's own groups are all carried over field for field.
func Build(a *App, final *permctx.Context) ([]byte, error) {
	var buf bytes.Buffer

	groupName := "Runtime"
	if a.AppPath != "" {
		groupName = "Application"
	}
	fmt.Fprintf(&buf, "[%s]\n", groupName)
	fmt.Fprintf(&buf, "name=%s\n", a.AppID)
	fmt.Fprintf(&buf, "runtime=%s\n", a.RuntimeRef)
	buf.WriteByte('\n')

	buf.WriteString("[Instance]\n")
	if a.AppPath != "" {
		fmt.Fprintf(&buf, "app-path=%s\n", a.AppPath)
	}
	if a.AppCommit != "" {
		fmt.Fprintf(&buf, "app-commit=%s\n", a.AppCommit)
	}
	if a.AppExtensions != "" {
		fmt.Fprintf(&buf, "app-extensions=%s\n", a.AppExtensions)
	}
	fmt.Fprintf(&buf, "runtime-path=%s\n", a.RuntimePath)
	if a.RuntimeCommit != "" {
		fmt.Fprintf(&buf, "runtime-commit=%s\n", a.RuntimeCommit)
	}
	if a.RuntimeExtensions != "" {
		fmt.Fprintf(&buf, "runtime-extensions=%s\n", a.RuntimeExtensions)
	}
	if a.Branch != "" {
		fmt.Fprintf(&buf, "branch=%s\n", a.Branch)
	}
	fmt.Fprintf(&buf, "launcher-version=%s\n", a.LauncherVersion)
	if a.SessionBusProxy {
		buf.WriteString("session-bus-proxy=true\n")
	}
	if a.SystemBusProxy {
		buf.WriteString("system-bus-proxy=true\n")
	}
	buf.WriteByte('\n')

	if final == nil {
		return buf.Bytes(), nil
	}
	ctxBytes, err := final.Serialize(true)
	if err != nil {
		return nil, fmt.Errorf("appinfo: serialize context: %w", err)
	}
	buf.Write(ctxBytes)

	return buf.Bytes(), nil
}
