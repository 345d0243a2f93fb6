// Package exposure decides which host filesystem paths become visible
// inside a sandbox, and in what mode, then renders that decision onto a
// [bwrap.Config].
package exposure

import (
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"firelock.dev/launcher/context"
	"firelock.dev/launcher/helper/bwrap"
	"firelock.dev/launcher/internal/sys"
)

// maxSymlinkHops mirrors the kernel's per-lookup symlink traversal limit
// (MAXSYMLINKS); a path resolving more hops than this is rejected the same
// way a real lookup would fail with ELOOP.
const maxSymlinkHops = 40

// hostRootBlacklist lists top-level host root entries the planner never
// mirrors automatically: either because the sandbox supplies its own
// version (usr, lib*, bin, sbin, etc, app, dev, proc, sys, run) or because
// mirroring them verbatim would leak unrelated host state (root, boot,
// var, tmp).
var hostRootBlacklist = map[string]bool{
	".": true, "..": true,
	"lib": true, "lib32": true, "lib64": true,
	"bin": true, "sbin": true, "usr": true,
	"boot": true, "root": true, "tmp": true,
	"etc": true, "app": true, "run": true,
	"proc": true, "sys": true, "dev": true, "var": true,
}

// HostRootEntries lists the top-level host root entries a caller should
// additionally bind into the sandbox verbatim (e.g. the proxy's minimal
// view of the host), given the actual contents of "/" and always including
// "/run/media" whether or not it currently exists.
func HostRootEntries(os sys.State) ([]string, error) {
	ents, err := os.ReadDir("/")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ents)+1)
	for _, e := range ents {
		if hostRootBlacklist[e.Name()] {
			continue
		}
		out = append(out, "/"+e.Name())
	}
	out = append(out, "/run/media")
	sort.Strings(out)
	return out, nil
}

// reservedPrefixes can never be the target of an explicit expose call: the
// sandbox's own view of these trees must not be shadowed by a host bind.
var reservedPrefixes = []string{
	"/lib", "/lib32", "/lib64", "/bin", "/sbin", "/usr", "/etc", "/app", "/dev",
}

type ConfigError struct{ Msg string }

func (e ConfigError) Error() string { return e.Msg }

type kind int

const (
	kindBind kind = iota
	kindDir
	kindTmpfs
	kindSymlink
)

type entry struct {
	kind   kind
	mode   context.FSMode
	target string // symlink target, kindSymlink only
	size   int    // tmpfs size in KiB, <=0 for default
}

// Plan accumulates filesystem exposure decisions keyed by the sandbox path
// they apply to.
type Plan struct {
	entries map[string]*entry
	order   []string
}

func NewPlan() *Plan {
	return &Plan{entries: make(map[string]*entry)}
}

// strongerMode reports the mode that should win when the same path is
// exposed twice: Negated always wins, ReadWrite beats everything else, and
// Create beats ReadOnly (a Create entry is rendered as a read-write bind).
func strongerMode(a, b context.FSMode) context.FSMode {
	switch {
	case a == context.Negated || b == context.Negated:
		return context.Negated
	case a == context.ReadWrite || b == context.ReadWrite:
		return context.ReadWrite
	case a == context.Create || b == context.Create:
		return context.Create
	default:
		return context.ReadOnly
	}
}

func underReserved(clean string) bool {
	for _, p := range reservedPrefixes {
		if clean == p || strings.HasPrefix(clean, p+"/") {
			return true
		}
	}
	return false
}

// resolve walks clean component by component, translating host symlinks
// into explicit [kindSymlink] entries in the plan and continuing resolution
// from their target, up to [maxSymlinkHops] total hops. "/tmp" is never
// dereferenced: the sandbox always provides it as a concrete tmpfs
// directory regardless of what the host node happens to be.
func (p *Plan) resolve(os sys.State, clean string, hops *int) (string, error) {
	if clean == "/tmp" || clean == "/" {
		return clean, nil
	}

	dir, base := path.Split(clean)
	dir = path.Clean(dir)
	resolvedDir, err := p.resolve(os, dir, hops)
	if err != nil {
		return "", err
	}
	full := path.Join(resolvedDir, base)

	info, err := os.Lstat(full)
	if err != nil {
		// nothing on the host at this component; the leaf-level Stat in
		// Expose reports the real error
		return full, nil
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return full, nil
	}

	*hops++
	if *hops > maxSymlinkHops {
		return "", ConfigError{Msg: "exposure: too many levels of symbolic links resolving " + clean}
	}
	link, err := os.Readlink(full)
	if err != nil {
		return "", err
	}
	p.recordSymlink(full, link)
	if !path.IsAbs(link) {
		link = path.Join(resolvedDir, link)
	}
	return p.resolve(os, path.Clean(link), hops)
}

func (p *Plan) recordSymlink(full, target string) {
	if _, ok := p.entries[full]; ok {
		return
	}
	p.entries[full] = &entry{kind: kindSymlink, target: target}
	p.order = append(p.order, full)
}

// Expose records that path should be visible inside the sandbox under the
// given mode. path must be absolute and must not fall under a host tree the
// sandbox already supplies (see [reservedPrefixes]). When two Expose calls
// collide on the same resolved path, the stronger mode wins.
func (p *Plan) Expose(os sys.State, mode context.FSMode, reqPath string) error {
	if !path.IsAbs(reqPath) {
		return ConfigError{Msg: "exposure: path is not absolute: " + reqPath}
	}
	clean := path.Clean(reqPath)
	if underReserved(clean) {
		return ConfigError{Msg: "exposure: path falls under a reserved tree: " + clean}
	}

	hops := 0
	resolved, err := p.resolve(os, clean, &hops)
	if err != nil {
		return err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if mode != context.Create {
			return err
		}
		p.record(resolved, mode)
		return nil
	}
	m := info.Mode()
	if !(m.IsDir() || m.IsRegular() || m&fs.ModeSymlink != 0 || m&fs.ModeSocket != 0) {
		return ConfigError{Msg: "exposure: unsupported file type at " + resolved}
	}

	p.record(resolved, mode)
	return nil
}

func (p *Plan) record(cleanPath string, mode context.FSMode) {
	if e, ok := p.entries[cleanPath]; ok && e.kind == kindBind {
		e.mode = strongerMode(e.mode, mode)
		return
	}
	p.entries[cleanPath] = &entry{kind: kindBind, mode: mode}
	p.order = appendOnce(p.order, cleanPath)
}

// Dir forces path to be a concrete sandbox directory rather than a bind
// mount, used for $HOME and similar paths that must exist even when the
// host has nothing to offer at that location.
func (p *Plan) Dir(cleanPath string) {
	cleanPath = path.Clean(cleanPath)
	if e, ok := p.entries[cleanPath]; ok && (e.kind == kindBind || e.kind == kindTmpfs) {
		return
	}
	p.entries[cleanPath] = &entry{kind: kindDir}
	p.order = appendOnce(p.order, cleanPath)
}

// Tmpfs places an empty tmpfs at path, hiding whatever host content a bind
// of an ancestor would otherwise have exposed there.
func (p *Plan) Tmpfs(cleanPath string, sizeKiB int) {
	cleanPath = path.Clean(cleanPath)
	p.entries[cleanPath] = &entry{kind: kindTmpfs, size: sizeKiB}
	p.order = appendOnce(p.order, cleanPath)
}

func appendOnce(order []string, v string) []string {
	for _, o := range order {
		if o == v {
			return order
		}
	}
	return append(order, v)
}

// HideDataDir applies the hide-by-default rule for a per-app data
// directory: a tmpfs covers the data directory's parent, then the data
// directory itself is re-exposed read-write so unrelated siblings under the
// same parent stay hidden.
func (p *Plan) HideDataDir(dataDir string) {
	dataDir = path.Clean(dataDir)
	parent := path.Dir(dataDir)
	p.Tmpfs(parent, 0)
	p.record(dataDir, context.ReadWrite)
}

// EnsureHome guarantees $HOME resolves to a concrete directory in the
// sandbox even if nothing was explicitly exposed there.
func (p *Plan) EnsureHome(home string) {
	p.Dir(path.Clean(home))
}

// VisibilityQuery reports whether path would be visible in the rendered
// sandbox, resolving through the plan's own recorded symlink entries rather
// than consulting the host filesystem again.
func (p *Plan) VisibilityQuery(reqPath string) bool {
	clean := path.Clean(reqPath)

	for hops := 0; hops < maxSymlinkHops; hops++ {
		if e, ok := p.entries[clean]; ok {
			if e.kind != kindSymlink {
				return e.kind != kindTmpfs
			}
			target := e.target
			if !path.IsAbs(target) {
				target = path.Join(path.Dir(clean), target)
			}
			clean = path.Clean(target)
			continue
		}

		// no exact entry: the nearest covering ancestor decides visibility
		best := ""
		var bestEntry *entry
		for k, e := range p.entries {
			if k == clean || !strings.HasPrefix(clean, k+"/") {
				continue
			}
			if len(k) > len(best) {
				best, bestEntry = k, e
			}
		}
		if bestEntry == nil {
			return false
		}
		return bestEntry.kind != kindTmpfs
	}
	return false
}

var errUnresolvedEntry = errors.New("exposure: internal: unresolved entry kind")

// Render emits the plan's decisions onto c in shortest-path-first order, so
// a Tmpfs placed on a parent never reorders after a bind placed on its
// child; a Dir recorded at the exact same path as a Tmpfs collapses into
// just the Tmpfs (a tmpfs is already an empty writable directory).
func (p *Plan) Render(c *bwrap.Config) error {
	paths := make([]string, len(p.order))
	copy(paths, p.order)
	sort.Slice(paths, func(i, j int) bool { return depthLess(paths[i], paths[j]) })

	for _, k := range paths {
		e, ok := p.entries[k]
		if !ok {
			continue
		}
		switch e.kind {
		case kindDir:
			c.Dir(k)
		case kindTmpfs:
			size := e.size
			if size <= 0 {
				size = -1
			}
			c.Tmpfs(k, size)
		case kindSymlink:
			c.Symlink(e.target, k)
		case kindBind:
			switch e.mode {
			case context.ReadOnly:
				c.Bind(k, k)
			case context.ReadWrite, context.Create:
				c.Bind(k, k, false, true)
			case context.Negated:
				// explicitly denied: nothing is rendered, any ancestor
				// tmpfs already hides it
			}
		default:
			return errUnresolvedEntry
		}
	}
	return nil
}

// depthLess orders a before b when a has fewer path components (so a parent
// tmpfs always renders before a child bind); ties break lexically so
// Render's output order is deterministic.
func depthLess(a, b string) bool {
	if a == b {
		return false
	}
	da, db := strings.Count(a, "/"), strings.Count(b, "/")
	if da != db {
		return da < db
	}
	return a < b
}
