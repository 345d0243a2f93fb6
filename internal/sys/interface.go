// Package sys isolates the launcher's ambient interactions with the
// operating system (environment, filesystem, process identity) behind an
// interface, so orchestration code can be exercised without a real
// filesystem or process tree underneath it.
package sys

import (
	"io/fs"
	"os/user"
	"path"
	"strconv"
)

// State provides safe interaction with operating system state.
type State interface {
	// Getuid provides [os.Getuid].
	Getuid() int
	// Getgid provides [os.Getgid].
	Getgid() int
	// LookupEnv provides [os.LookupEnv].
	LookupEnv(key string) (string, bool)
	// TempDir provides [os.TempDir].
	TempDir() string
	// LookPath provides [exec.LookPath].
	LookPath(file string) (string, error)
	// MustExecutable returns the absolute path to the running binary,
	// resolved once and cached; it panics if the path cannot be read.
	MustExecutable() string
	// LookupGroup provides [user.LookupGroup].
	LookupGroup(name string) (*user.Group, error)
	// ReadDir provides [os.ReadDir].
	ReadDir(name string) ([]fs.DirEntry, error)
	// Stat provides [os.Stat].
	Stat(name string) (fs.FileInfo, error)
	// Lstat provides [os.Lstat].
	Lstat(name string) (fs.FileInfo, error)
	// Readlink provides [os.Readlink].
	Readlink(name string) (string, error)
	// Open provides [os.Open].
	Open(name string) (fs.File, error)
	// EvalSymlinks provides [filepath.EvalSymlinks].
	EvalSymlinks(path string) (string, error)
	// Exit provides [os.Exit], routed through [internal/hlog.BeforeExit]
	// so suspended log output is flushed first.
	Exit(code int)

	Println(v ...any)
	Printf(format string, v ...any)

	// Paths returns a populated [Paths] struct.
	Paths() Paths
}

// Paths holds the filesystem locations the launcher keeps scratch and
// per-run state under.
type Paths struct {
	// SharePath is the launcher's own scratch directory, private to the
	// invoking uid.
	SharePath string
	// RunDirPath is where per-sandbox runtime state (sockets, lock files,
	// the ld.so.cache store) lives.
	RunDirPath string
	// RuntimePath mirrors XDG_RUNTIME_DIR, falling back to a path under
	// SharePath when the environment carries no usable value.
	RuntimePath string
}

const xdgRuntimeDir = "XDG_RUNTIME_DIR"

// CopyPaths is a generic implementation of [State.Paths].
func CopyPaths(os State, v *Paths) {
	v.SharePath = path.Join(os.TempDir(), "firelock."+strconv.Itoa(os.Getuid()))
	os.Printf("process share directory at %q", v.SharePath)

	if r, ok := os.LookupEnv(xdgRuntimeDir); !ok || r == "" || !path.IsAbs(r) {
		v.RunDirPath = path.Join(v.SharePath, "run")
		v.RuntimePath = path.Join(v.RunDirPath, "compat")
	} else {
		v.RuntimePath = r
		v.RunDirPath = path.Join(v.RuntimePath, "firelock")
	}

	os.Printf("runtime directory at %q", v.RunDirPath)
}
