// Package seccomp builds the classic BPF program enforcing this module's
// syscall policy and seals it into an anonymous file bwrap loads with
// --seccomp.
package seccomp

import (
	"os"

	"firelock.dev/launcher/container/std"
	"firelock.dev/launcher/internal/memfd"
)

// Program compiles the enforced rule set for allowedPersonality against the
// architecture this binary runs on and seals the resulting BPF program into
// a memfd suitable for [firelock.dev/launcher/helper/bwrap.Config.Seccomp].
// devel mirrors the sandbox's devel feature grant; see [Preset].
func Program(allowedPersonality std.ScmpDatum, devel bool) (*os.File, error) {
	prog, err := Compile(NativeArch(), Preset(allowedPersonality, devel))
	if err != nil {
		return nil, err
	}
	return memfd.New("seccomp-filter", prog, true)
}
