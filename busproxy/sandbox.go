package busproxy

import (
	"io/fs"

	"firelock.dev/launcher/helper/bwrap"
	"firelock.dev/launcher/internal/sys"
)

// buildWrapperSandbox assembles the minimal sandbox the proxy process
// itself runs in. It mirrors the host root verbatim (binds every
// top-level entry, follows symlinks by recreating them rather than
// resolving them) so the proxy binary and its shared libraries are
// reachable, makes tmp/var/run writable, binds socketDir writable so the
// proxy can create its listening socket there, and embeds appInfo at
// /.flatpak-info so the proxy presents the same app identity the
// sandboxed application will.
func buildWrapperSandbox(os sys.State, socketDir string, appInfo []byte) (*bwrap.Config, error) {
	c := &bwrap.Config{
		Unshare: &bwrap.UnshareConfig{
			User: true, IPC: true, PID: true, UTS: true, CGroup: true, Net: true,
		},
		DieWithParent: true,
	}

	ents, err := os.ReadDir("/")
	if err != nil {
		return nil, err
	}
	for _, e := range ents {
		full := "/" + e.Name()
		info, lerr := os.Lstat(full)
		if lerr != nil {
			continue
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			target, rlerr := os.Readlink(full)
			if rlerr != nil {
				continue
			}
			c.Symlink(target, full)
			continue
		}
		switch e.Name() {
		case "tmp", "var", "run":
			c.Bind(full, full, true, true)
		default:
			c.Bind(full, full, true)
		}
	}

	c.Bind(socketDir, socketDir, false, true)
	c.AddData("/.flatpak-info", appInfo)

	return c, nil
}
