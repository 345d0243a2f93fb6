package appinfo

import (
	"fmt"

	"firelock.dev/launcher/helper/bwrap"
)

// InfoPath is where the metadata blob is mounted inside every sandbox.
const InfoPath = "/.flatpak-info"

// Mount embeds info into c as the unfakeable double mount: a concrete
// copy of the content at InfoPath (so it survives namespace teardown) and
// a read-only bind of the same content over it, then recreates the
// conventional per-user symlink older sandboxed tooling probes for.
//
// This carries over the double-descriptor intent of
// flatpak_run_add_app_info_args's "--file fd then --ro-bind-data fd2 at
// the same destination" sequence, but through [bwrap.Config.AddData] and
// [bwrap.Config.AddROBindData]'s independently-sealed memfds rather than
// two descriptors to one unlinked temp file: nothing in this tree needs
// the real /proc/self/fd path that dance exists to produce, since
// [busproxy.Launch] already takes the metadata blob as a plain []byte.
func Mount(c *bwrap.Config, info []byte, uid int) {
	c.AddData(InfoPath, info)
	c.AddROBindData(InfoPath, info)
	c.Symlink("../../../.flatpak-info", SandboxSymlinkDest(uid))
}

// SandboxSymlinkDest is the legacy per-user path some sandboxed tooling
// still looks for the metadata blob at.
func SandboxSymlinkDest(uid int) string {
	return fmt.Sprintf("/run/user/%d/flatpak-info", uid)
}
