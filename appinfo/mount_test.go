package appinfo

import (
	"testing"

	"firelock.dev/launcher/helper/bwrap"
)

func TestMountEmbedsDoubleAndSymlink(t *testing.T) {
	c := &bwrap.Config{}
	Mount(c, []byte("info"), 1000)

	var sawSymlink bool
	for _, fsb := range c.Filesystem {
		if fsb.Path() == "/run/user/1000/flatpak-info" {
			sawSymlink = true
		}
	}
	if !sawSymlink {
		t.Error("expected the legacy per-user symlink to be present")
	}
}

func TestSandboxSymlinkDest(t *testing.T) {
	if got := SandboxSymlinkDest(1000); got != "/run/user/1000/flatpak-info" {
		t.Fatalf("SandboxSymlinkDest(1000) = %q", got)
	}
}
