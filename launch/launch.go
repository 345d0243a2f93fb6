package launch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"firelock.dev/launcher/appinfo"
	"firelock.dev/launcher/blobs"
	"firelock.dev/launcher/busproxy"
	"firelock.dev/launcher/container"
	"firelock.dev/launcher/container/fhs"
	permctx "firelock.dev/launcher/context"
	"firelock.dev/launcher/exposure"
	"firelock.dev/launcher/extension"
	"firelock.dev/launcher/helper"
	"firelock.dev/launcher/helper/bwrap"
	"firelock.dev/launcher/internal/sys"
	"firelock.dev/launcher/ldcache"
)

// Deploy is the resolved deploy data a launch runs: the already
// decomposed application/runtime ref, both trees' host paths, and the
// extensions declared against each. Resolving a ref into this shape (the
// repository/OSTree side of deployment) is out of scope here; this
// package only ever launches sandboxes for already-deployed data.
type Deploy struct {
	AppID  string
	Branch string

	RuntimeRef        string
	RuntimePath       string
	RuntimeCommit     string
	RuntimeExtensions []extension.Extension

	// AppPath is empty for a bare runtime launch.
	AppPath       string
	AppCommit     string
	AppExtensions []extension.Extension

	// Command is the executable run inside the sandbox, resolved against
	// /app/bin:/usr/bin. CommandArgs are the arguments forwarded to it,
	// possibly containing "@@"/"@@u" file-forwarding toggles.
	Command     string
	CommandArgs []string

	// FileForwarding enables the "@@"/"@@u" argument rewriting pass
	// described in spec §4.10's argument forwarding paragraph.
	FileForwarding bool
}

// Options bundles one launch request: the deploy data, the ordered
// permission-context merge chain (defaults, runtime metadata, app
// metadata, per-instance overrides, CLI overrides — low to high
// priority), and launcher-wide metadata.
type Options struct {
	Deploy          Deploy
	Contexts        []*permctx.Context
	LauncherVersion string
	// Background runs the sandboxed command detached; the caller gets
	// back a live Instance without blocking on Wait.
	Background bool
}

// Launcher resolves external executor paths once and runs launches
// against a fixed [sys.State]/[container.Msg] pair.
type Launcher struct {
	OS  sys.State
	Msg container.Msg

	LdconfigPath string
	ProxyPath    string
}

// NewLauncher resolves the ldconfig and D-Bus proxy executors up front so
// a missing dependency is reported before any sandbox state is built.
func NewLauncher(os sys.State, msg container.Msg) (*Launcher, error) {
	if msg == nil {
		msg = container.GetOutput()
	}
	l := &Launcher{OS: os, Msg: msg}

	var err error
	if l.LdconfigPath, err = os.LookPath("ldconfig"); err != nil {
		return nil, DeployError{Msg: "launch: ldconfig not found in PATH: " + err.Error()}
	}
	if l.ProxyPath, err = os.LookPath(busproxy.ProxyName); err != nil {
		l.Msg.Verbosef("launch: %s not found in PATH, bus filtering unavailable: %v", busproxy.ProxyName, err)
	}
	return l, nil
}

// Instance is a running sandbox launched by [Launcher.Launch], together
// with whatever filtering proxies it depends on.
type Instance struct {
	AppID   string
	h       helper.Helper
	proxies []*busproxy.Handle
	msg     container.Msg
}

// Wait blocks until the sandboxed command exits, then tears down every
// bus proxy it depended on and waits for those to exit in turn. This is
// the single-process equivalent of spec §4.10 step 10's "close the
// parent's sync pipe end": nothing here signals the proxies directly,
// their own Handle.Stop is the documented shutdown path.
func (in *Instance) Wait() error {
	appErr := in.h.Wait()
	for _, p := range in.proxies {
		if err := p.Stop(); err != nil {
			in.msg.Verbosef("launch: stopping %s proxy: %v", p.Kind, err)
		}
	}
	for _, p := range in.proxies {
		if err := p.Wait(); err != nil {
			in.msg.Verbosef("launch: %s proxy exited with error: %v", p.Kind, err)
		}
	}
	return appErr
}

// Unwrap exposes the underlying [helper.Helper] for callers that need the
// raw process (e.g. to record a pid for "launch ps").
func (in *Instance) Unwrap() helper.Helper { return in.h }

// launchState threads the mutable pieces of one Launch call across its
// steps without turning every step into a method with a dozen
// parameters.
type launchState struct {
	l   *Launcher
	opt *Options

	ctx  *permctx.Context
	conf *bwrap.Config
	plan *exposure.Plan

	uid, gid   int
	home       string
	dataDir    string
	runtimeDir string

	useLdSoCache bool
	proxies      []*busproxy.Handle
}

// Launch runs the full sequence described by spec §4.10: context merge,
// per-app data directory setup, filesystem and ld.so.cache assembly,
// socket and bus application, document-portal and transient-unit
// placement, and finally handing off to the sandboxed command.
func (l *Launcher) Launch(ctx context.Context, opt *Options) (*Instance, error) {
	s := &launchState{l: l, opt: opt, conf: &bwrap.Config{}, plan: exposure.NewPlan()}
	s.uid, s.gid = l.OS.Getuid(), l.OS.Getgid()

	s.mergeContext()
	if err := s.prepareDataDir(); err != nil {
		return nil, err
	}
	if err := s.seedRuntimeAndApp(); err != nil {
		return nil, err
	}
	if err := s.decideLdSoCache(); err != nil {
		return nil, err
	}
	if err := s.regenerateLdCache(ctx); err != nil {
		return nil, err
	}
	if err := s.seedBase(); err != nil {
		return nil, err
	}
	if err := s.attachAppInfo(); err != nil {
		return nil, err
	}
	if err := s.applySandboxPlan(); err != nil {
		return nil, err
	}
	if err := s.attachDocumentPortal(ctx); err != nil {
		l.Msg.Verbosef("launch: %v", err)
	}
	if err := s.applySockets(ctx); err != nil {
		return nil, err
	}

	forwarded := opt.Deploy.CommandArgs
	if opt.Deploy.FileForwarding {
		forwarded = s.rewriteForwardedArgs(ctx, forwarded)
	}

	h, err := helper.NewBwrap(ctx, opt.Deploy.Command, nil, false,
		func(int, int) []string { return forwarded }, nil, nil, s.conf, nil)
	if err != nil {
		return nil, FatalSandbox{Msg: "launch: create sandbox helper: " + err.Error()}
	}
	if err := h.Start(); err != nil {
		return nil, FatalSandbox{Msg: "launch: start sandbox: " + err.Error()}
	}

	in := &Instance{AppID: opt.Deploy.AppID, h: h, proxies: s.proxies, msg: l.Msg}

	if err := s.placeTransientUnit(ctx, in); err != nil {
		l.Msg.Verbosef("launch: %v", err)
	}

	return in, nil
}

// mergeContext folds opt.Contexts onto a fresh base in priority order,
// per spec §4.1's merge formula.
func (s *launchState) mergeContext() {
	s.ctx = permctx.Default()
	for _, c := range s.opt.Contexts {
		s.ctx.Merge(c)
	}
	s.ctx.Normalize()
}

// prepareDataDir creates the per-app data directory tree at 0700, per
// spec §4.10 step 3.
func (s *launchState) prepareDataDir() error {
	homeDir, _ := s.l.OS.LookupEnv("HOME")
	if homeDir == "" {
		homeDir = "/home/user"
	}
	s.dataDir = path.Join(homeDir, ".var", "app", s.opt.Deploy.AppID)
	s.home = s.dataDir

	for _, sub := range []string{"", "data", "cache", "cache/fontconfig", "cache/tmp", "config"} {
		if err := os.MkdirAll(path.Join(s.dataDir, sub), 0700); err != nil {
			return IoError{Op: "mkdir", Path: path.Join(s.dataDir, sub), Err: err}
		}
	}
	return nil
}

// seedRuntimeAndApp mounts the runtime tree at /usr and the app tree at
// /app (or a bare /app directory for a runtime-only launch), lock-files
// on their ".ref" markers, and runs [extension.Mount] for both, per spec
// §4.10 step 4.
func (s *launchState) seedRuntimeAndApp() error {
	d := &s.opt.Deploy

	s.conf.Bind(d.RuntimePath, "/usr")
	s.conf.LockFile = append(s.conf.LockFile, "/usr/.ref")

	if d.AppPath != "" {
		s.conf.Bind(d.AppPath, "/app")
		s.conf.LockFile = append(s.conf.LockFile, "/app/.ref")
	} else {
		s.conf.Dir("/app")
	}
	return nil
}

// decideLdSoCache implements spec §4.10 step 5: an ld.so.cache overlay is
// only worthwhile when the runtime ships a regular, empty
// etc/ld.so.conf; otherwise extensions fall back to LD_LIBRARY_PATH.
func (s *launchState) decideLdSoCache() error {
	info, err := s.l.OS.Stat(path.Join(s.opt.Deploy.RuntimePath, "etc", "ld.so.conf"))
	if err != nil {
		if os.IsNotExist(err) {
			s.useLdSoCache = false
			return nil
		}
		return IoError{Op: "stat", Path: "etc/ld.so.conf", Err: err}
	}
	s.useLdSoCache = info.Mode().IsRegular() && info.Size() == 0
	return nil
}

// regenerateLdCache looks up or regenerates the ld.so.cache entry for
// this launch's exact runtime/app/extension combination and attaches it
// to the sandbox, per spec §4.10 step 6. It runs before extensions are
// mounted onto the real sandbox config so that extension.Mount's
// ld.so.conf.d fragments, computed here as a summary only, still land on
// the cache key.
func (s *launchState) regenerateLdCache(ctx context.Context) error {
	d := &s.opt.Deploy

	runtimeExtSummary, err := summarizeExtensions(s.l.OS, d.RuntimeExtensions)
	if err != nil {
		return err
	}
	appExtSummary, err := summarizeExtensions(s.l.OS, d.AppExtensions)
	if err != nil {
		return err
	}

	if !s.useLdSoCache {
		if _, err := extension.Mount(s.l.OS, s.conf, d.RuntimeExtensions, false, false); err != nil {
			return DeployError{Msg: "launch: mount runtime extensions: " + err.Error()}
		}
		if _, err := extension.Mount(s.l.OS, s.conf, d.AppExtensions, true, false); err != nil {
			return DeployError{Msg: "launch: mount app extensions: " + err.Error()}
		}
		return nil
	}

	key := ldcache.Key(d.AppCommit, d.RuntimeCommit, appExtSummary, runtimeExtSummary)
	dir := ldcache.Dir(s.l.OS.Paths().RunDirPath, s.dataDir)

	base := &bwrap.Config{}
	base.Filesystem = append(base.Filesystem, s.conf.Filesystem...)
	if _, err := extension.Mount(s.l.OS, base, d.RuntimeExtensions, false, true); err != nil {
		return DeployError{Msg: "launch: mount runtime extensions: " + err.Error()}
	}
	if _, err := extension.Mount(s.l.OS, base, d.AppExtensions, true, true); err != nil {
		return DeployError{Msg: "launch: mount app extensions: " + err.Error()}
	}

	f, err := ldcache.Open(ctx, s.l.LdconfigPath, base, dir, key, d.AppPath != "")
	if err != nil {
		return err
	}
	s.conf.Filesystem = base.Filesystem
	s.conf.SetEnv = base.SetEnv

	s.conf.AddROBindData("/etc/ld.so.conf", []byte(blobs.LdSoConf))
	s.conf.AddBindData("/etc/ld.so.cache", mustReadAll(f))
	_ = f.Close()
	return nil
}

// summarizeExtensions mirrors the ";"-joined "id=commit" summary
// [extension.Mount] returns, without mutating a real [bwrap.Config],
// so the ld cache key can be computed before the cache lookup decides
// whether mounting is even needed for real.
func summarizeExtensions(os sys.State, exts []extension.Extension) (string, error) {
	scratch := &bwrap.Config{}
	summary, err := extension.Mount(os, scratch, exts, false, false)
	if err != nil {
		return "", DeployError{Msg: "launch: summarize extensions: " + err.Error()}
	}
	return summary, nil
}

func mustReadAll(f *os.File) []byte {
	if _, err := f.Seek(0, 0); err != nil {
		return nil
	}
	b, _ := io.ReadAll(f)
	return b
}

// seedBase renders spec §4.10 step 7's base sandbox arguments: namespace
// unsharing driven by the merged context's share bits, the standard
// pseudo-filesystems, generated identity blobs, and the per-app var
// binds.
func (s *launchState) seedBase() error {
	c := s.conf
	c.Unshare = &bwrap.UnshareConfig{PID: true, UTS: true}
	if !s.ctx.Shares.IsGranted(permctx.ShareIPC) {
		c.Unshare.IPC = true
	}
	if !s.ctx.Shares.IsGranted(permctx.ShareNetwork) {
		c.Unshare.Net = true
	} else {
		c.Unshare.Net = false
	}
	c.DieWithParent = true
	c.NewSession = true

	c.Procfs(fhs.Proc)
	c.DevTmpfs(fhs.Dev)
	if s.ctx.Devices.IsGranted(permctx.DeviceAll) {
		c.Bind(fhs.Dev, fhs.Dev, false, true, true)
	} else if s.ctx.Devices.IsGranted(permctx.DeviceDRI) {
		c.Bind("/dev/dri", "/dev/dri", true, true, true)
	}
	if s.ctx.Devices.IsGranted(permctx.DeviceKVM) {
		c.Bind("/dev/kvm", "/dev/kvm", true, true, true)
	}

	c.Tmpfs(fhs.Tmp, -1)
	c.Tmpfs("/var/tmp", -1)
	c.Tmpfs(fhs.Run, -1)

	s.runtimeDir = s.l.OS.Paths().RuntimePath
	sandboxRuntimeDir := fmt.Sprintf("/run/user/%d", s.uid)
	c.Dir(sandboxRuntimeDir)

	c.Bind("/sys/block", "/sys/block", true)
	c.Bind("/sys/bus", "/sys/bus", true)
	c.Bind("/sys/class", "/sys/class", true)
	c.Bind("/sys/dev", "/sys/dev", true)
	c.Bind("/sys/devices", "/sys/devices", true)

	username, _ := s.l.OS.LookupEnv("USER")
	c.AddData(fhs.Etc+"passwd", blobs.Passwd(s.uid, s.gid, username, s.home))
	c.AddData(fhs.Etc+"group", blobs.Group(s.gid, username))
	c.Bind("/etc/machine-id", "/etc/machine-id", true)
	c.Bind("/etc/resolv.conf", "/etc/resolv.conf", true)
	c.Bind("/etc/hosts", "/etc/hosts", true)
	c.Bind("/etc/localtime", "/etc/localtime", true)

	c.Bind(s.dataDir, s.home, false, true)
	c.Symlink("usr/bin", "/bin")
	c.Symlink("usr/lib", "/lib")

	devel := s.ctx.Features.IsGranted(permctx.FeatureDevel)
	multiarch := s.ctx.Features.IsGranted(permctx.FeatureMultiarch)
	seccompFile, err := blobs.Seccomp(multiarch, devel)
	if err != nil {
		return SeccompError{Msg: "launch: compile seccomp filter: " + err.Error()}
	}
	c.Seccomp = seccompFile

	c.AddData(path.Join(s.dataDir, "config", "user-dirs.dirs"), blobs.UserDirsDirs())

	return nil
}

// attachAppInfo builds and embeds the /.flatpak-info metadata blob, per
// spec §4.10 step 8's AppInfo attachment.
func (s *launchState) attachAppInfo() error {
	d := &s.opt.Deploy
	runtimeExtSummary, _ := summarizeExtensions(s.l.OS, d.RuntimeExtensions)
	appExtSummary, _ := summarizeExtensions(s.l.OS, d.AppExtensions)

	a := &appinfo.App{
		AppID: d.AppID, AppPath: d.AppPath,
		RuntimeRef: d.RuntimeRef, RuntimePath: "/usr",
		AppCommit: d.AppCommit, RuntimeCommit: d.RuntimeCommit,
		AppExtensions: appExtSummary, RuntimeExtensions: runtimeExtSummary,
		Branch: d.Branch, LauncherVersion: s.opt.LauncherVersion,
		SessionBusProxy: !s.ctx.Sockets.IsGranted(permctx.SocketSessionBus) && len(s.ctx.SessionBusPolicy) > 0,
		SystemBusProxy:  len(s.ctx.SystemBusPolicy) > 0,
	}
	info, err := appinfo.Build(a, s.ctx)
	if err != nil {
		return DeployError{Msg: "launch: build app info: " + err.Error()}
	}
	appinfo.Mount(s.conf, info, s.uid)
	return nil
}

// applySandboxPlan runs the filesystem exposure planner over the merged
// context's filesystem requests plus $HOME, then renders it onto the
// sandbox config, per spec §4.10 step 8's ExposurePlanner pass.
func (s *launchState) applySandboxPlan() error {
	s.plan.EnsureHome(s.home)
	s.plan.HideDataDir(s.dataDir)

	specs := make([]string, 0, len(s.ctx.Filesystems))
	for spec := range s.ctx.Filesystems {
		specs = append(specs, spec)
	}
	sort.Strings(specs)

	for _, spec := range specs {
		mode := s.ctx.Filesystems[spec]
		resolved, ok := resolveFilesystemSpec(s.l.OS, spec, s.home)
		if !ok {
			continue
		}
		if resolved == "host" {
			entries, err := exposure.HostRootEntries(s.l.OS)
			if err != nil {
				return IoError{Op: "readdir", Path: "/", Err: err}
			}
			for _, e := range entries {
				if err := s.plan.Expose(s.l.OS, mode, e); err != nil {
					s.l.Msg.Verbosef("launch: skip host root entry %s: %v", e, err)
				}
			}
			continue
		}
		if err := s.plan.Expose(s.l.OS, mode, resolved); err != nil {
			s.l.Msg.Verbosef("launch: skip filesystem spec %q: %v", spec, err)
		}
	}

	for p := range s.ctx.Persistent {
		if err := s.plan.Expose(s.l.OS, permctx.Create, path.Join(s.home, p)); err != nil {
			s.l.Msg.Verbosef("launch: skip persisted path %q: %v", p, err)
		}
	}

	return s.plan.Render(s.conf)
}

// resolveFilesystemSpec expands a spec §6 filesystem path-spec against
// home, the literal forms ("host", "home") being handled by the caller.
func resolveFilesystemSpec(os sys.State, spec, home string) (string, bool) {
	switch {
	case spec == "host":
		return "host", true
	case spec == "home":
		return home, true
	case len(spec) > 1 && spec[0] == '~' && spec[1] == '/':
		return path.Join(home, spec[2:]), true
	case len(spec) > 0 && spec[0] == '/':
		return spec, true
	case len(spec) > 4 && spec[:4] == "xdg-":
		return xdgSpecPath(os, home, spec[4:]), true
	default:
		return "", false
	}
}

func xdgSpecPath(os sys.State, home, rest string) string {
	name, sub, _ := cutPath(rest)
	var base string
	switch name {
	case "download":
		base = path.Join(home, "Downloads")
	case "documents":
		base = path.Join(home, "Documents")
	case "music":
		base = path.Join(home, "Music")
	case "pictures":
		base = path.Join(home, "Pictures")
	case "videos":
		base = path.Join(home, "Videos")
	case "templates":
		base = path.Join(home, "Templates")
	case "public-share":
		base = path.Join(home, "Public")
	case "desktop":
		base = path.Join(home, "Desktop")
	case "config":
		base = path.Join(home, ".config")
	case "cache":
		base = path.Join(home, ".cache")
	case "data":
		base = path.Join(home, ".local", "share")
	case "run":
		base = fmt.Sprintf("/run/user/%d", os.Getuid())
	default:
		base = home
	}
	if sub == "" {
		return base
	}
	return path.Join(base, sub)
}

func cutPath(s string) (head, rest string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

