package blobs

import (
	"os"

	"firelock.dev/launcher/container/seccomp"
)

// Seccomp seals the compiled BPF filter program this sandbox enforces into
// an anonymous fd, ready for [firelock.dev/launcher/helper/bwrap.Config]'s
// Seccomp field.
func Seccomp(multiarch, devel bool) (*os.File, error) {
	persona := seccomp.PersonaLinux
	if multiarch {
		persona = seccomp.PersonaLinux32
	}
	return seccomp.Program(persona, devel)
}
