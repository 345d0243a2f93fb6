package busproxy

import (
	"context"
	"errors"
	"time"

	"github.com/godbus/dbus/v5"
)

// a11yCallTimeout bounds the accessibility bus discovery call, matching the
// 30s reply timeout budget the rest of the launcher's D-Bus calls use.
const a11yCallTimeout = 30 * time.Second

// GetA11yAddress queries the user's session bus for the real address of
// the accessibility bus. A missing a11y bus (ServiceUnknown) is reported
// as ("", nil) rather than an error: the caller should simply skip
// starting an a11y proxy in that case, the same tolerance the proxy's
// upstream implementation applies.
func GetA11yAddress(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a11yCallTimeout)
	defer cancel()

	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return "", err
	}
	defer func() { _ = conn.Close() }()

	var address string
	obj := conn.Object("org.a11y.Bus", dbus.ObjectPath("/org/a11y/bus"))
	err = obj.CallWithContext(ctx, "org.a11y.Bus.GetAddress", 0).Store(&address)
	if err != nil {
		var derr dbus.Error
		if errors.As(err, &derr) && derr.Name == "org.freedesktop.DBus.Error.ServiceUnknown" {
			return "", nil
		}
		return "", err
	}
	return address, nil
}
