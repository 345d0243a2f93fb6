package busproxy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/google/uuid"

	"firelock.dev/launcher/container"
	"firelock.dev/launcher/helper"
	"firelock.dev/launcher/internal/sys"
)

// Handle is a launched proxy process together with the sync-pipe read end
// destined for the sandboxed application's --sync-fd.
type Handle struct {
	Kind       BusKind
	SocketPath string
	SyncFd     *os.File

	helper helper.Helper
}

// Wait blocks until the proxy process exits.
func (h *Handle) Wait() error { return h.helper.Wait() }

// Stop closes the sync pipe's read end. The proxy, still holding the
// write end, observes the resulting EOF on its side and shuts down; this
// is the same signal a torn-down application sandbox delivers once
// SyncFd has been handed to it as --sync-fd.
func (h *Handle) Stop() error {
	if h.SyncFd == nil {
		return nil
	}
	return h.SyncFd.Close()
}

// SocketDir returns the directory unique proxy sockets for one sandbox
// invocation are created under.
func SocketDir(runtimeDir string) string {
	return path.Join(runtimeDir, ".dbus-proxy")
}

// NewDownstream creates (if needed) the proxy socket directory under
// runtimeDir and picks a unique, not-yet-existing socket path for kind.
func NewDownstream(runtimeDir string, kind BusKind) (dir, sock string, err error) {
	dir = SocketDir(runtimeDir)
	if err = os.MkdirAll(dir, 0700); err != nil {
		return "", "", fmt.Errorf("busproxy: create proxy socket directory: %w", err)
	}
	sock = path.Join(dir, kind.String()+"-"+uuid.NewString())
	return dir, sock, nil
}

// Launch starts the filtering proxy described by cfg inside its own
// minimal wrapper sandbox built around the host root, waits synchronously
// for the proxy to report that its listening socket is ready, and returns
// a Handle carrying the read end of that readiness pipe. appInfo is
// embedded at /.flatpak-info inside the wrapper sandbox so the proxy
// presents the same app identity the sandboxed application will.
//
// Launch blocks until the proxy signals readiness or the helper's
// fulfillment deadline elapses; a failed or missing readiness signal is
// reported as an error and the launch must not proceed.
func Launch(
	ctx context.Context,
	os sys.State,
	msg container.Msg,
	proxyPath, socketDir string,
	kind BusKind,
	cfg *Config,
	appInfo []byte,
) (*Handle, error) {
	wrapperConf, err := buildWrapperSandbox(os, socketDir, appInfo)
	if err != nil {
		return nil, fmt.Errorf("busproxy: build wrapper sandbox: %w", err)
	}

	proxyArgs := cfg.Args()
	argF := func(_, statFd int) []string {
		a := make([]string, len(proxyArgs), len(proxyArgs)+1)
		copy(a, proxyArgs)
		return append(a, fmt.Sprintf("--fd=%d", statFd))
	}

	msg.Verbosef("starting %s bus proxy at %s", cfg.busLabel(), cfg.Downstream)

	h, err := helper.NewBwrap(ctx, proxyPath, nil, true, argF, nil, nil, wrapperConf, nil)
	if err != nil {
		return nil, fmt.Errorf("busproxy: create proxy helper: %w", err)
	}
	if err := h.Start(); err != nil {
		return nil, fmt.Errorf("busproxy: start proxy: %w", err)
	}

	syncFd, ok := h.StatFd()
	if !ok || syncFd == nil {
		return nil, errors.New("busproxy: proxy did not report readiness")
	}

	return &Handle{Kind: kind, SocketPath: cfg.Downstream, SyncFd: syncFd, helper: h}, nil
}

func (c *Config) busLabel() string {
	if c.A11y {
		return "a11y"
	}
	if c.AppID != "" {
		return "session"
	}
	return "system"
}
