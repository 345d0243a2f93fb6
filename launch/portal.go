package launch

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/godbus/dbus/v5"
)

// portalCallTimeout bounds every document-portal D-Bus call, matching the
// reply timeout budget the bus proxy package uses for its own D-Bus calls.
const portalCallTimeout = 30 * time.Second

const (
	portalBusName    = "org.freedesktop.portal.Documents"
	portalObjectPath = "/org/freedesktop/portal/documents"
)

// exportDocument adds localPath to the document portal and returns the
// document id the portal assigned it. Callers treat any error as
// non-fatal: the argument or mount naming localPath is simply left
// unrewritten.
func exportDocument(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", PortalUnavailable{Msg: err.Error()}
	}
	defer func() { _ = f.Close() }()

	conn, obj, err := dialPortal(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = conn.Close() }()

	var docID string
	err = obj.CallWithContext(ctx, "org.freedesktop.portal.Documents.Add", 0,
		dbus.UnixFD(f.Fd()), true, false).Store(&docID)
	if err != nil {
		return "", PortalUnavailable{Msg: fmt.Sprintf("launch: export %s: %v", localPath, err)}
	}
	if docID == "" {
		return "", PortalUnavailable{Msg: fmt.Sprintf("launch: export %s: no document id returned", localPath)}
	}
	return docID, nil
}

// portalMountPoint asks the document portal where its FUSE view is
// mounted on the host side, so step 8 of a launch can bind it into the
// sandbox at the fixed per-user location every launch expects.
func portalMountPoint(ctx context.Context) (string, error) {
	conn, obj, err := dialPortal(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = conn.Close() }()

	var mount []byte
	if err := obj.CallWithContext(ctx, "org.freedesktop.portal.Documents.GetMountPoint", 0).Store(&mount); err != nil {
		return "", PortalUnavailable{Msg: err.Error()}
	}
	return string(trimNul(mount)), nil
}

func trimNul(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == 0 {
		return b[:n-1]
	}
	return b
}

func dialPortal(ctx context.Context) (*dbus.Conn, dbus.BusObject, error) {
	ctx, cancel := context.WithTimeout(ctx, portalCallTimeout)
	defer cancel()

	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, nil, PortalUnavailable{Msg: err.Error()}
	}
	obj := conn.Object(portalBusName, dbus.ObjectPath(portalObjectPath))
	return conn, obj, nil
}

// attachDocumentPortal binds the document portal's per-app view into the
// sandbox at /run/user/<uid>/doc, per spec §4.10 step 8. Failure is
// logged and otherwise ignored: a launch proceeds without the
// document-portal mount rather than aborting over it.
func (s *launchState) attachDocumentPortal(ctx context.Context) error {
	mount, err := portalMountPoint(ctx)
	if err != nil || mount == "" {
		return err
	}
	byApp := path.Join(mount, "by-app", s.opt.Deploy.AppID)
	s.conf.Bind(byApp, docMountPath(s.uid), true)
	return nil
}
