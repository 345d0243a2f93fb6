package extension

import (
	"io/fs"
	"os/user"
	"testing"

	"firelock.dev/launcher/helper/bwrap"
	"firelock.dev/launcher/internal/sys"
)

type fakeOS struct {
	refs    map[string]bool
	dirents map[string][]fakeDirEntry
}

type fakeDirEntry struct{ name string }

func (e fakeDirEntry) Name() string               { return e.name }
func (e fakeDirEntry) IsDir() bool                 { return false }
func (e fakeDirEntry) Type() fs.FileMode           { return 0 }
func (e fakeDirEntry) Info() (fs.FileInfo, error)  { return nil, fs.ErrNotExist }

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
func (f *fakeOS) Lstat(name string) (fs.FileInfo, error)  { return f.Stat(name) }
func (f *fakeOS) Readlink(string) (string, error)         { return "", fs.ErrInvalid }

func (f *fakeOS) Stat(name string) (fs.FileInfo, error) {
	if f.refs[name] {
		return nil, nil
	}
	return nil, fs.ErrNotExist
}

func (f *fakeOS) ReadDir(name string) ([]fs.DirEntry, error) {
	ents, ok := f.dirents[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	out := make([]fs.DirEntry, len(ents))
	for i, e := range ents {
		out[i] = e
	}
	return out, nil
}

func TestMountSummaryUsesLocalForMissingCommit(t *testing.T) {
	os := &fakeOS{refs: map[string]bool{}}
	c := &bwrap.Config{}
	exts := []Extension{
		{InstalledID: "org.example.Ext1", Directory: "extensions/ext1"},
		{InstalledID: "org.example.Ext2", Directory: "extensions/ext2", Commit: "abc123"},
	}
	summary, err := Mount(os, c, exts, true, true)
	if err != nil {
		t.Fatal(err)
	}
	want := "org.example.Ext1=local;org.example.Ext2=abc123"
	if summary != want {
		t.Fatalf("summary = %q, want %q", summary, want)
	}
}

func TestMountAddLdPathEmitsLdSoConfFragment(t *testing.T) {
	os := &fakeOS{refs: map[string]bool{}}
	c := &bwrap.Config{}
	exts := []Extension{{InstalledID: "org.example.Ext1", Directory: "extensions/ext1", AddLdPath: "lib"}}
	if _, err := Mount(os, c, exts, true, true); err != nil {
		t.Fatal(err)
	}
	if c.SetEnv["LD_LIBRARY_PATH"] != "" {
		t.Fatal("expected no LD_LIBRARY_PATH when using ld.so.cache fragments")
	}
}

func TestMountAddLdPathFallsBackToEnvWithoutLdSoCache(t *testing.T) {
	os := &fakeOS{refs: map[string]bool{}}
	c := &bwrap.Config{}
	exts := []Extension{{InstalledID: "org.example.Ext1", Directory: "extensions/ext1", AddLdPath: "lib"}}
	if _, err := Mount(os, c, exts, true, false); err != nil {
		t.Fatal(err)
	}
	if c.SetEnv["LD_LIBRARY_PATH"] == "" {
		t.Fatal("expected LD_LIBRARY_PATH to be set without ld.so.cache fragments")
	}
}

func TestMountRefMarkerAddsLockFile(t *testing.T) {
	os := &fakeOS{refs: map[string]bool{"/extfiles/.ref": true}}
	c := &bwrap.Config{}
	exts := []Extension{{InstalledID: "org.example.Ext1", Directory: "extensions/ext1", FilesPath: "/extfiles"}}
	if _, err := Mount(os, c, exts, true, true); err != nil {
		t.Fatal(err)
	}
	if len(c.LockFile) != 1 {
		t.Fatalf("got %d lock files, want 1", len(c.LockFile))
	}
}

func TestMountMergeDirsFirstWins(t *testing.T) {
	os := &fakeOS{
		refs: map[string]bool{},
		dirents: map[string][]fakeDirEntry{
			"/ext1/share/icons": {{name: "a.png"}},
			"/ext2/share/icons": {{name: "a.png"}, {name: "b.png"}},
		},
	}
	c := &bwrap.Config{}
	exts := []Extension{
		{InstalledID: "e1", Directory: "extensions/ext1", FilesPath: "/ext1", MergeDirs: []string{"share/icons"}},
		{InstalledID: "e2", Directory: "extensions/ext2", FilesPath: "/ext2", MergeDirs: []string{"share/icons"}},
	}
	if _, err := Mount(os, c, exts, true, true); err != nil {
		t.Fatal(err)
	}
	// both extensions share the merge parent /app/extensions, so both
	// offer /app/extensions/share/icons/a.png; the first extension's wins
	if len(c.Filesystem) == 0 {
		t.Fatal("expected symlink filesystem entries to be recorded")
	}
	var targets []string
	for _, f := range c.Filesystem {
		if s, ok := f.(*bwrap.PermConfig[bwrap.SymlinkConfig]); ok && s.Path() == "/app/extensions/share/icons/a.png" {
			targets = append(targets, s.Inner[0])
		}
	}
	if len(targets) != 1 || targets[0] != "/app/extensions/ext1/share/icons/a.png" {
		t.Fatalf("a.png symlink targets = %q, want only the first extension's", targets)
	}
}
