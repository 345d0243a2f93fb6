package busproxy

import (
	"io/fs"
	"os/user"
	"testing"
	"time"

	"firelock.dev/launcher/internal/sys"
)

type fakeInfo struct {
	mode fs.FileMode
}

func (f fakeInfo) Name() string       { return "" }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() fs.FileMode  { return f.mode }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.mode.IsDir() }
func (f fakeInfo) Sys() any           { return nil }

type fakeDirEntry struct{ name string }

func (e fakeDirEntry) Name() string              { return e.name }
func (e fakeDirEntry) IsDir() bool               { return false }
func (e fakeDirEntry) Type() fs.FileMode         { return 0 }
func (e fakeDirEntry) Info() (fs.FileInfo, error) { return nil, fs.ErrNotExist }

type fakeOS struct {
	root     []string
	symlinks map[string]string
}

func (f *fakeOS) Getuid() int                             { return 1000 }
func (f *fakeOS) Getgid() int                             { return 1000 }
func (f *fakeOS) LookupEnv(string) (string, bool)         { return "", false }
func (f *fakeOS) TempDir() string                         { return "/tmp" }
func (f *fakeOS) LookPath(string) (string, error)         { return "", nil }
func (f *fakeOS) MustExecutable() string                  { return "/usr/bin/launch" }
func (f *fakeOS) LookupGroup(string) (*user.Group, error) { return nil, nil }
func (f *fakeOS) Exit(int)                                {}
func (f *fakeOS) Println(v ...any)                        {}
func (f *fakeOS) Printf(string, ...any)                   {}
func (f *fakeOS) Paths() sys.Paths                        { return sys.Paths{} }
func (f *fakeOS) Open(string) (fs.File, error)            { return nil, fs.ErrNotExist }
func (f *fakeOS) EvalSymlinks(p string) (string, error)   { return p, nil }
func (f *fakeOS) Stat(string) (fs.FileInfo, error)        { return fakeInfo{mode: 0}, nil }

func (f *fakeOS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name != "/" {
		return nil, fs.ErrNotExist
	}
	out := make([]fs.DirEntry, len(f.root))
	for i, n := range f.root {
		out[i] = fakeDirEntry{name: n}
	}
	return out, nil
}

func (f *fakeOS) Lstat(name string) (fs.FileInfo, error) {
	if _, ok := f.symlinks[name]; ok {
		return fakeInfo{mode: fs.ModeSymlink}, nil
	}
	return fakeInfo{mode: fs.ModeDir}, nil
}

func (f *fakeOS) Readlink(name string) (string, error) {
	if t, ok := f.symlinks[name]; ok {
		return t, nil
	}
	return "", fs.ErrInvalid
}

func TestBuildWrapperSandboxMirrorsRootAndSymlinks(t *testing.T) {
	os := &fakeOS{
		root:     []string{"usr", "lib", "tmp", "var", "run", "bin"},
		symlinks: map[string]string{"/bin": "usr/bin"},
	}
	c, err := buildWrapperSandbox(os, "/run/user/1000/.dbus-proxy", []byte("info"))
	if err != nil {
		t.Fatal(err)
	}

	var sawSymlink, sawWritableTmp, sawROUsr, sawSocketDirBind bool
	for _, fsb := range c.Filesystem {
		switch fsb.Path() {
		case "/bin":
			sawSymlink = true
		case "/tmp":
			sawWritableTmp = true
		case "/usr":
			sawROUsr = true
		case "/run/user/1000/.dbus-proxy":
			sawSocketDirBind = true
		}
	}
	if !sawSymlink {
		t.Error("expected /bin recreated as a symlink")
	}
	if !sawWritableTmp {
		t.Error("expected /tmp bound writable")
	}
	if !sawROUsr {
		t.Error("expected /usr bound read-only")
	}
	if !sawSocketDirBind {
		t.Error("expected the proxy socket directory bound writable")
	}
}
