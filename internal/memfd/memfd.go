// Package memfd builds sealed anonymous files used to pass generated
// content (seccomp programs, config blobs, serialized argument lists) to
// an external executor across an fd rather than a filesystem path.
package memfd

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// New returns a file containing data, sealed against further writes,
// truncation, and growth once sealed is true. When the kernel supports
// memfd_create(2) the file is purely in-memory and CLOEXEC; otherwise it
// falls back to an unlinked temp file, which the executor can still read
// through its inherited fd after exec.
func New(name string, data []byte, sealed bool) (*os.File, error) {
	f, memfd, err := create(name)
	if err != nil {
		return nil, err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("memfd: write %s: %w", name, err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("memfd: seek %s: %w", name, err)
	}

	if sealed && memfd {
		seals := unix.F_SEAL_SHRINK | unix.F_SEAL_GROW | unix.F_SEAL_WRITE | unix.F_SEAL_SEAL
		if _, err := unix.FcntlInt(f.Fd(), unix.F_ADD_SEALS, seals); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("memfd: seal %s: %w", name, err)
		}
	}

	return f, nil
}

// create returns a fresh backing file for name and whether it is a real
// memfd (sealing only applies to those).
func create(name string) (*os.File, bool, error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err == nil {
		f := os.NewFile(uintptr(fd), name)
		if f == nil {
			_ = unix.Close(fd)
			return nil, false, fmt.Errorf("memfd: os.NewFile returned nil for %s", name)
		}
		return f, true, nil
	}

	f, tmpErr := os.CreateTemp("", name+"-*")
	if tmpErr != nil {
		return nil, false, fmt.Errorf("memfd_create %s: %w (fallback: %v)", name, err, tmpErr)
	}
	_ = os.Remove(f.Name())
	return f, false, nil
}
