package launch

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"firelock.dev/launcher/appinfo"
	"firelock.dev/launcher/blobs"
	"firelock.dev/launcher/busproxy"
	permctx "firelock.dev/launcher/context"
	"firelock.dev/launcher/helper/bwrap"
)

// applySockets implements spec §4.10 step 9 (binding the display/audio
// sockets the merged context grants) followed by step 10 (starting
// whatever bus proxies those sockets need filtered). The accessibility
// bus is always routed through a proxy when it is reachable at all,
// regardless of what the context requests, matching the upstream
// behaviour this is grounded on.
func (s *launchState) applySockets(ctx context.Context) error {
	if s.ctx.Sockets.IsGranted(permctx.SocketX11) {
		if err := s.applyX11(); err != nil {
			s.l.Msg.Verbosef("launch: x11 socket unavailable: %v", err)
		}
	} else {
		s.conf.Tmpfs("/tmp/.X11-unix", -1)
	}

	if s.ctx.Sockets.IsGranted(permctx.SocketWayland) {
		s.applyWayland()
	}

	if s.ctx.Sockets.IsGranted(permctx.SocketPulseaudio) {
		s.applyPulseAudio()
	}

	if err := s.applyBus(ctx, busproxy.Session, s.ctx.SessionBusPolicy, permctx.SocketSessionBus); err != nil {
		s.l.Msg.Verbosef("launch: session bus: %v", err)
	}
	if err := s.applyBus(ctx, busproxy.System, s.ctx.SystemBusPolicy, permctx.SocketSystemBus); err != nil {
		s.l.Msg.Verbosef("launch: system bus: %v", err)
	}
	if err := s.applyA11yBus(ctx); err != nil {
		s.l.Msg.Verbosef("launch: a11y bus: %v", err)
	}

	return nil
}

// applyX11 binds the host X display socket at its sandbox-fixed number
// 99 and ships a filtered Xauthority, per the scenario in spec §8(3).
func (s *launchState) applyX11() error {
	display, _ := s.l.OS.LookupEnv("DISPLAY")
	display = strings.TrimPrefix(display, ":")
	display = strings.SplitN(display, ".", 2)[0]
	if display == "" {
		return fmt.Errorf("no DISPLAY set")
	}

	hostSocket := "/tmp/.X11-unix/X" + display
	s.conf.Bind(hostSocket, "/tmp/.X11-unix/X99", true)
	setEnv(s.conf, "DISPLAY", ":99.0")

	xauthPath, ok := s.l.OS.LookupEnv("XAUTHORITY")
	if !ok || xauthPath == "" {
		xauthPath = path.Join(s.home, ".Xauthority")
	}
	raw, err := os.ReadFile(xauthPath)
	if err != nil {
		return err
	}
	hostname, _ := os.Hostname()
	filtered := blobs.FilterXauthority(raw, hostname, display)
	s.conf.AddBindData(fmt.Sprintf("/run/user/%d/Xauthority", s.uid), filtered)
	setEnv(s.conf, "XAUTHORITY", fmt.Sprintf("/run/user/%d/Xauthority", s.uid))
	return nil
}

// applyWayland binds the host compositor socket straight through; there
// is no filtering proxy for Wayland in this design.
func (s *launchState) applyWayland() {
	name, ok := s.l.OS.LookupEnv("WAYLAND_DISPLAY")
	if !ok || name == "" {
		name = "wayland-0"
	}
	hostSocket := path.Join(s.runtimeDir, name)
	sandboxSocket := fmt.Sprintf("/run/user/%d/%s", s.uid, name)
	s.conf.Bind(hostSocket, sandboxSocket, true)
	setEnv(s.conf, "WAYLAND_DISPLAY", name)
}

// applyPulseAudio binds the host PulseAudio socket and ships a
// shared-memory-disabled client.conf, since the sandbox's own /dev/shm
// is not the host's.
func (s *launchState) applyPulseAudio() {
	hostSocket := path.Join(s.runtimeDir, "pulse", "native")
	sandboxSocket := fmt.Sprintf("/run/user/%d/pulse/native", s.uid)
	s.conf.Bind(hostSocket, sandboxSocket, true)

	confPath := fmt.Sprintf("/run/user/%d/pulse/config", s.uid)
	s.conf.AddData(confPath, []byte(blobs.PulseClientConf))
	setEnv(s.conf, "PULSE_CLIENTCONFIG", confPath)
}

// applyBus decides, per [busproxy.ShouldProxy], whether the named bus
// needs a filtering proxy at all; when it does, it launches one and
// binds its downstream socket in place of the real one, otherwise the
// real socket is bound straight through. A launched proxy's SyncFd is
// handed to the application's own sandbox config via SetSync, which
// holds a single slot: the most recently wired bus gets the kernel's
// EOF-on-teardown signal directly, the rest still get torn down
// through Instance.Wait's explicit Stop/Wait pass.
func (s *launchState) applyBus(ctx context.Context, kind busproxy.BusKind, policy map[string]permctx.Policy, socketBit uint32) error {
	granted := s.ctx.Sockets.IsGranted(socketBit)
	if !busproxy.ShouldProxy(policy, granted) {
		if granted {
			s.bindRealBus(kind)
		}
		return nil
	}
	if s.l.ProxyPath == "" {
		return ProxyError{Msg: "launch: no bus proxy executor available"}
	}

	upstream, err := s.busAddress(kind)
	if err != nil {
		return err
	}

	dir, sock, err := busproxy.NewDownstream(s.runtimeDir, kind)
	if err != nil {
		return ProxyError{Msg: err.Error()}
	}

	cfg := &busproxy.Config{Upstream: upstream, Downstream: sock, Policy: policy}
	if kind == busproxy.Session {
		cfg.AppID = s.opt.Deploy.AppID
	}

	info, _ := s.currentAppInfoBlob()
	h, err := busproxy.Launch(ctx, s.l.OS, s.l.Msg, s.l.ProxyPath, dir, kind, cfg, info)
	if err != nil {
		return ProxyError{Msg: err.Error()}
	}
	s.proxies = append(s.proxies, h)
	s.conf.SetSync(h.SyncFd)

	s.conf.Bind(sock, kind.SandboxSocketPath(s.uid), true)
	setEnv(s.conf, kind.EnvVar(), kind.SandboxAddress(s.uid))
	return nil
}

// applyA11yBus proxies the accessibility bus unconditionally whenever it
// can be discovered at all, matching spec §9's note that a11y is always
// routed through a proxy when reachable.
func (s *launchState) applyA11yBus(ctx context.Context) error {
	if s.l.ProxyPath == "" {
		return nil
	}
	addr, err := busproxy.GetA11yAddress(ctx)
	if err != nil || addr == "" {
		return nil
	}

	dir, sock, err := busproxy.NewDownstream(s.runtimeDir, busproxy.A11y)
	if err != nil {
		return ProxyError{Msg: err.Error()}
	}
	cfg := &busproxy.Config{Upstream: addr, Downstream: sock, A11y: true}

	info, _ := s.currentAppInfoBlob()
	h, err := busproxy.Launch(ctx, s.l.OS, s.l.Msg, s.l.ProxyPath, dir, busproxy.A11y, cfg, info)
	if err != nil {
		return ProxyError{Msg: err.Error()}
	}
	s.proxies = append(s.proxies, h)
	s.conf.SetSync(h.SyncFd)

	s.conf.Bind(sock, busproxy.A11y.SandboxSocketPath(s.uid), true)
	setEnv(s.conf, busproxy.A11y.EnvVar(), busproxy.A11y.SandboxAddress(s.uid))
	return nil
}

func (s *launchState) bindRealBus(kind busproxy.BusKind) {
	addr, err := s.busAddress(kind)
	if err != nil {
		return
	}
	sockPath := strings.TrimPrefix(addr, "unix:path=")
	s.conf.Bind(sockPath, kind.SandboxSocketPath(s.uid), true)
	setEnv(s.conf, kind.EnvVar(), kind.SandboxAddress(s.uid))
}

func (s *launchState) busAddress(kind busproxy.BusKind) (string, error) {
	switch kind {
	case busproxy.Session:
		if v, ok := s.l.OS.LookupEnv("DBUS_SESSION_BUS_ADDRESS"); ok && v != "" {
			return v, nil
		}
		return "unix:path=" + path.Join(s.runtimeDir, "bus"), nil
	case busproxy.System:
		return "unix:path=/run/dbus/system_bus_socket", nil
	default:
		return "", fmt.Errorf("no fixed address for bus kind %s", kind)
	}
}

// currentAppInfoBlob rebuilds the metadata blob proxies present
// themselves with, so a proxy's own sandbox carries the same identity
// the application sandbox will.
func (s *launchState) currentAppInfoBlob() ([]byte, error) {
	d := &s.opt.Deploy
	a := &appinfo.App{AppID: d.AppID, AppPath: d.AppPath, RuntimeRef: d.RuntimeRef,
		RuntimePath: "/usr", LauncherVersion: s.opt.LauncherVersion}
	return appinfo.Build(a, nil)
}

// setEnv assigns a value into conf's environment map, allocating it on
// first use; [bwrap.Config] leaves SetEnv nil until something needs it.
func setEnv(conf *bwrap.Config, key, value string) {
	if conf.SetEnv == nil {
		conf.SetEnv = make(map[string]string)
	}
	conf.SetEnv[key] = value
}
