package ldcache

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"testing"
)

func TestDirAppTiedVersusShared(t *testing.T) {
	if got := Dir("/run/user/1000/firelock", "/home/user/.var/app/org.example.App"); got != "/home/user/.var/app/org.example.App/.ld.so" {
		t.Fatalf("Dir(app-tied) = %q", got)
	}
	if got := Dir("/run/user/1000/firelock", ""); got != "/run/user/1000/firelock/ld.so" {
		t.Fatalf("Dir(shared) = %q", got)
	}
}

func TestLookupMissReportsNotExist(t *testing.T) {
	dir := t.TempDir()
	_, err := Lookup(dir, "deadbeef")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Lookup miss = %v, want fs.ErrNotExist", err)
	}
}

func TestLookupHit(t *testing.T) {
	dir := t.TempDir()
	key := "deadbeef"
	if err := os.WriteFile(path.Join(dir, key), []byte("cache"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := Lookup(dir, key)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
}

func TestFinalizeSharedUnlinksAfterOpen(t *testing.T) {
	dir := t.TempDir()
	key := "cafebabe"
	cachePath := path.Join(dir, key)
	if err := os.WriteFile(cachePath, []byte("cache"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := finalize(dir, key, false)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err = os.Stat(cachePath); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected %s unlinked after finalize, stat err = %v", cachePath, err)
	}
	if _, err = f.Stat(); err != nil {
		t.Fatalf("fd should remain usable after its directory entry is unlinked: %v", err)
	}
}

func TestFinalizeAppTiedSwitchesActiveAndGCs(t *testing.T) {
	dir := t.TempDir()
	oldKey, newKey := "oldkey0000", "newkey1111"

	for _, k := range []string{oldKey, newKey} {
		if err := os.WriteFile(path.Join(dir, k), []byte(k), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Symlink(oldKey, path.Join(dir, activeName)); err != nil {
		t.Fatal(err)
	}

	f, err := finalize(dir, newKey, true)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	target, err := os.Readlink(path.Join(dir, activeName))
	if err != nil {
		t.Fatal(err)
	}
	if target != newKey {
		t.Fatalf("active symlink points to %q, want %q", target, newKey)
	}
	if _, err = os.Stat(path.Join(dir, oldKey)); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected previous cache entry %s garbage-collected, stat err = %v", oldKey, err)
	}
}

func TestFinalizeAppTiedFirstRunHasNoPriorActive(t *testing.T) {
	dir := t.TempDir()
	key := "firstrun00"
	if err := os.WriteFile(path.Join(dir, key), []byte(key), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := finalize(dir, key, true)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	target, err := os.Readlink(path.Join(dir, activeName))
	if err != nil {
		t.Fatal(err)
	}
	if target != key {
		t.Fatalf("active symlink points to %q, want %q", target, key)
	}
}
