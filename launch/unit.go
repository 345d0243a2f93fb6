package launch

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const unitCallTimeout = 30 * time.Second

// placeTransientUnit asks the user session's systemd instance to adopt
// the sandboxed process into a transient scope named after the app id,
// per spec §4.10 step 12. Failure is non-fatal: the sandboxed process
// keeps running, just without the unit's resource accounting and the
// ability for a desktop shell to group it by app id.
func (s *launchState) placeTransientUnit(ctx context.Context, in *Instance) error {
	cmd := in.h.Unwrap()
	if cmd == nil || cmd.Process == nil {
		return TransientUnitUnavailable{Msg: "launch: sandbox process has no pid"}
	}

	ctx, cancel := context.WithTimeout(ctx, unitCallTimeout)
	defer cancel()

	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return TransientUnitUnavailable{Msg: err.Error()}
	}
	defer func() { _ = conn.Close() }()

	unitName := fmt.Sprintf("app-launch-%s-%d.scope", in.AppID, cmd.Process.Pid)
	props := []struct {
		Name  string
		Value dbus.Variant
	}{
		{"PIDs", dbus.MakeVariant([]uint32{uint32(cmd.Process.Pid)})},
		{"CollectMode", dbus.MakeVariant("inactive-or-failed")},
	}

	obj := conn.Object("org.freedesktop.systemd1", dbus.ObjectPath("/org/freedesktop/systemd1"))
	var job dbus.ObjectPath
	err = obj.CallWithContext(ctx, "org.freedesktop.systemd1.Manager.StartTransientUnit", 0,
		unitName, "fail", props, []struct {
			Name  string
			Value []struct {
				Name  string
				Value dbus.Variant
			}
		}{}).Store(&job)
	if err != nil {
		return TransientUnitUnavailable{Msg: err.Error()}
	}
	return nil
}
