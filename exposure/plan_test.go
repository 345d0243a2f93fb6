package exposure

import (
	"io/fs"
	"os/user"
	"testing"
	"time"

	"firelock.dev/launcher/context"
	"firelock.dev/launcher/internal/sys"
)

type fakeInfo struct {
	name string
	mode fs.FileMode
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() fs.FileMode  { return f.mode }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.mode.IsDir() }
func (f fakeInfo) Sys() any           { return nil }

type fakeOS struct {
	dirs     map[string]bool
	files    map[string]bool
	symlinks map[string]string
}

func newFakeOS() *fakeOS {
	return &fakeOS{dirs: map[string]bool{}, files: map[string]bool{}, symlinks: map[string]string{}}
}

func (f *fakeOS) Getuid() int                               { return 1000 }
func (f *fakeOS) Getgid() int                               { return 1000 }
func (f *fakeOS) LookupEnv(string) (string, bool)           { return "", false }
func (f *fakeOS) TempDir() string                           { return "/tmp" }
func (f *fakeOS) LookPath(string) (string, error)           { return "", nil }
func (f *fakeOS) MustExecutable() string                    { return "/usr/bin/launch" }
func (f *fakeOS) LookupGroup(string) (*user.Group, error)   { return nil, nil }
func (f *fakeOS) Exit(int)                                  {}
func (f *fakeOS) Println(v ...any)                          {}
func (f *fakeOS) Printf(format string, v ...any)            {}
func (f *fakeOS) Paths() sys.Paths                          { return sys.Paths{} }

func (f *fakeOS) ReadDir(string) ([]fs.DirEntry, error) { return nil, nil }

func (f *fakeOS) Stat(name string) (fs.FileInfo, error) {
	if target, ok := f.symlinks[name]; ok {
		return f.Stat(target)
	}
	if f.dirs[name] {
		return fakeInfo{name: name, mode: fs.ModeDir}, nil
	}
	if f.files[name] {
		return fakeInfo{name: name, mode: 0}, nil
	}
	return nil, fs.ErrNotExist
}

func (f *fakeOS) Lstat(name string) (fs.FileInfo, error) {
	if _, ok := f.symlinks[name]; ok {
		return fakeInfo{name: name, mode: fs.ModeSymlink}, nil
	}
	return f.Stat(name)
}

func (f *fakeOS) Readlink(name string) (string, error) {
	if t, ok := f.symlinks[name]; ok {
		return t, nil
	}
	return "", fs.ErrInvalid
}

func (f *fakeOS) Open(string) (fs.File, error)          { return nil, fs.ErrNotExist }
func (f *fakeOS) EvalSymlinks(p string) (string, error) { return p, nil }

func TestExposeRejectsRelativePath(t *testing.T) {
	p := NewPlan()
	if err := p.Expose(newFakeOS(), context.ReadOnly, "relative"); err == nil {
		t.Fatal("expected error for relative path")
	}
}

func TestExposeRejectsReservedPrefix(t *testing.T) {
	p := NewPlan()
	if err := p.Expose(newFakeOS(), context.ReadOnly, "/usr/lib/foo"); err == nil {
		t.Fatal("expected error for path under /usr")
	}
}

func TestExposeStrongerModeWins(t *testing.T) {
	os := newFakeOS()
	os.dirs["/home/user/proj"] = true
	p := NewPlan()
	s := os
	if err := p.Expose(s, context.ReadOnly, "/home/user/proj"); err != nil {
		t.Fatal(err)
	}
	if err := p.Expose(s, context.ReadWrite, "/home/user/proj"); err != nil {
		t.Fatal(err)
	}
	if got := p.entries["/home/user/proj"].mode; got != context.ReadWrite {
		t.Fatalf("mode = %v, want ReadWrite", got)
	}
}

func TestExposeFollowsSymlinkAndRecordsIt(t *testing.T) {
	os := newFakeOS()
	os.symlinks["/home/user/link"] = "/home/user/real"
	os.dirs["/home/user/real"] = true
	p := NewPlan()
	if err := p.Expose(os, context.ReadOnly, "/home/user/link"); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.entries["/home/user/link"]; !ok {
		t.Fatal("expected a symlink entry recorded at the original path")
	}
	if _, ok := p.entries["/home/user/real"]; !ok {
		t.Fatal("expected a bind entry recorded at the resolved path")
	}
}

func TestExposeDetectsSymlinkLoop(t *testing.T) {
	os := newFakeOS()
	os.symlinks["/a"] = "/b"
	os.symlinks["/b"] = "/a"
	p := NewPlan()
	if err := p.Expose(os, context.ReadOnly, "/a"); err == nil {
		t.Fatal("expected symlink loop to be rejected")
	}
}

func TestVisibilityQueryHiddenByTmpfs(t *testing.T) {
	p := NewPlan()
	p.Tmpfs("/home/user", 0)
	p.record("/home/user/visible", context.ReadWrite)
	if p.VisibilityQuery("/home/user/hidden") {
		t.Fatal("path under a tmpfs with no explicit entry should be hidden")
	}
	if !p.VisibilityQuery("/home/user/visible") {
		t.Fatal("explicitly re-exposed path should be visible")
	}
}

func TestHideDataDirReexposesItself(t *testing.T) {
	p := NewPlan()
	p.HideDataDir("/home/user/.local/share/app/data")
	if !p.VisibilityQuery("/home/user/.local/share/app/data") {
		t.Fatal("data dir itself must remain visible")
	}
	if p.VisibilityQuery("/home/user/.local/share/app/sibling") {
		t.Fatal("sibling under the hidden parent must stay hidden")
	}
}

func TestRenderOrdersParentTmpfsBeforeChildBind(t *testing.T) {
	p := NewPlan()
	p.record("/home/user/proj", context.ReadOnly)
	p.Tmpfs("/home/user", 0)
	if !depthLess("/home/user", "/home/user/proj") {
		t.Fatal("parent must sort before child")
	}
}
