package ldcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"firelock.dev/launcher/helper"
	"firelock.dev/launcher/helper/bwrap"
)

// Error reports a failure regenerating the dynamic linker cache: a
// non-zero ldconfig exit, or a missing cache file where one was expected.
type Error struct{ Msg string }

func (e Error) Error() string { return e.Msg }

// Lookup opens the cache file for key under dir read-only. A cache miss is
// reported as the *PathError os.Open itself returns, wrapping
// fs.ErrNotExist; callers distinguish it with errors.Is.
func Lookup(dir, key string) (*os.File, error) {
	return os.Open(path.Join(dir, key))
}

// Open resolves the cache entry identified by key under dir, regenerating
// it with ldconfig when absent. appTied selects what happens to the
// regenerated file once it has been opened: true atomically repoints dir's
// "active" symlink at key and garbage-collects whatever it pointed to
// before, false unlinks the file immediately so the returned fd is its
// only remaining reference.
//
// base supplies the filesystem layout (usr tree, app tree, extension
// binds) the regeneration sandbox mirrors; callers pass the same
// [bwrap.Config] being assembled for the eventual application sandbox.
func Open(ctx context.Context, ldconfigPath string, base *bwrap.Config, dir, key string, appTied bool) (*os.File, error) {
	if f, err := Lookup(dir, key); err == nil {
		return f, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ldcache: lookup %s: %w", key, err)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("ldcache: create cache directory: %w", err)
	}

	return Regenerate(ctx, ldconfigPath, base, dir, key, appTied)
}

// Regenerate runs ldconfig in a minimal sandbox built around base's
// filesystem layout to produce the cache entry for key under dir, then
// opens it read-only and applies the appTied disposition documented on
// [Open].
func Regenerate(ctx context.Context, ldconfigPath string, base *bwrap.Config, dir, key string, appTied bool) (*os.File, error) {
	conf := &bwrap.Config{
		Unshare: &bwrap.UnshareConfig{
			PID: true, IPC: true, Net: true,
		},
		DieWithParent: true,
	}
	conf.Filesystem = append(conf.Filesystem, base.Filesystem...)
	conf.Procfs("/proc")
	conf.DevTmpfs("/dev")
	conf.Bind(dir, "/run/ld-so-cache-dir", false, true)

	argF := func(_, _ int) []string {
		return []string{"-X", "-C", "/run/ld-so-cache-dir/" + key}
	}

	h, err := helper.NewBwrap(ctx, ldconfigPath, nil, false, argF, nil, nil, conf, nil)
	if err != nil {
		return nil, fmt.Errorf("ldcache: create ldconfig helper: %w", err)
	}
	if err = h.Start(); err != nil {
		return nil, Error{fmt.Sprintf("ldcache: start ldconfig: %v", err)}
	}
	if err = h.Wait(); err != nil {
		return nil, Error{fmt.Sprintf("ldcache: ldconfig exited with error: %v", err)}
	}

	return finalize(dir, key, appTied)
}

// finalize opens the freshly regenerated cache file for key under dir and
// applies the appTied disposition documented on [Open]: switching dir's
// "active" symlink to key and garbage-collecting its previous target when
// true, or unlinking the file immediately when false.
func finalize(dir, key string, appTied bool) (*os.File, error) {
	cachePath := path.Join(dir, key)
	f, err := os.Open(cachePath)
	if err != nil {
		return nil, Error{fmt.Sprintf("ldcache: open regenerated cache: %v", err)}
	}

	if appTied {
		if err = switchActive(dir, key); err != nil {
			_ = f.Close()
			return nil, err
		}
		return f, nil
	}

	if err = os.Remove(cachePath); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("ldcache: unlink regenerated cache: %w", err)
	}
	return f, nil
}

// switchActive atomically repoints dir/active at key, then removes
// whatever cache entry it pointed to before, if any and if different from
// key. The rename is the atomic step: a reader resolving active either
// sees the old target throughout, or the new one, never a half-written
// link.
func switchActive(dir, key string) error {
	activePath := path.Join(dir, activeName)

	old, err := os.Readlink(activePath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ldcache: read active symlink: %w", err)
	}

	tmp := path.Join(dir, "."+activeName+"."+key)
	_ = os.Remove(tmp)
	if err = os.Symlink(key, tmp); err != nil {
		return fmt.Errorf("ldcache: create replacement active symlink: %w", err)
	}
	if err = os.Rename(tmp, activePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ldcache: activate cache key %s: %w", key, err)
	}

	if old != "" && old != key {
		if err = os.Remove(path.Join(dir, old)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("ldcache: garbage-collect previous cache entry: %w", err)
		}
	}
	return nil
}
