package sys

import (
	"io/fs"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"sync"

	"firelock.dev/launcher/internal/hlog"
)

// Std implements [State] using the standard library.
type Std struct {
	paths     Paths
	pathsOnce sync.Once

	executable     string
	executableOnce sync.Once
}

func (s *Std) Getuid() int                                  { return os.Getuid() }
func (s *Std) Getgid() int                                  { return os.Getgid() }
func (s *Std) LookupEnv(key string) (string, bool)          { return os.LookupEnv(key) }
func (s *Std) TempDir() string                              { return os.TempDir() }
func (s *Std) LookPath(file string) (string, error)         { return exec.LookPath(file) }
func (s *Std) LookupGroup(name string) (*user.Group, error) { return user.LookupGroup(name) }
func (s *Std) ReadDir(name string) ([]fs.DirEntry, error)   { return os.ReadDir(name) }
func (s *Std) Stat(name string) (fs.FileInfo, error)        { return os.Stat(name) }
func (s *Std) Lstat(name string) (fs.FileInfo, error)        { return os.Lstat(name) }
func (s *Std) Readlink(name string) (string, error)          { return os.Readlink(name) }
func (s *Std) Open(name string) (fs.File, error)            { return os.Open(name) }
func (s *Std) EvalSymlinks(path string) (string, error)     { return filepath.EvalSymlinks(path) }
func (s *Std) Println(v ...any)                             { hlog.Verbose(v...) }
func (s *Std) Printf(format string, v ...any)               { hlog.Verbosef(format, v...) }

func (s *Std) Exit(code int) {
	hlog.BeforeExit()
	os.Exit(code)
}

func (s *Std) MustExecutable() string {
	s.executableOnce.Do(func() {
		name, err := os.Executable()
		if err != nil {
			hlog.BeforeExit()
			panic("cannot read executable path: " + err.Error())
		}
		if resolved, err := filepath.EvalSymlinks(name); err == nil {
			name = resolved
		}
		s.executable = name
	})
	return s.executable
}

func (s *Std) Paths() Paths {
	s.pathsOnce.Do(func() { CopyPaths(s, &s.paths) })
	return s.paths
}
