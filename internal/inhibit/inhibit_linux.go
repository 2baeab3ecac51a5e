//go:build linux

// Package inhibit keeps the desktop session awake during playback.
//
// A replay that outlasts the idle timeout would otherwise race the
// screensaver or lock screen, and injected input landing on a lock
// screen both fails and types into the password field. On Linux this
// uses the org.freedesktop.ScreenSaver D-Bus interface; on other
// platforms it is a no-op.
package inhibit

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	screensaverDest = "org.freedesktop.ScreenSaver"
	screensaverPath = "/org/freedesktop/ScreenSaver"
)

// Inhibitor holds a screensaver inhibition cookie.
type Inhibitor struct {
	conn   *dbus.Conn
	cookie uint32
}

// Acquire inhibits the screensaver until Release. reason is shown to the
// user by some desktop environments.
func Acquire(reason string) (*Inhibitor, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("inhibit: connect session bus: %w", err)
	}

	obj := conn.Object(screensaverDest, dbus.ObjectPath(screensaverPath))
	var cookie uint32
	call := obj.Call(screensaverDest+".Inhibit", 0, "mimic", reason)
	if call.Err != nil {
		conn.Close()
		return nil, fmt.Errorf("inhibit: screensaver inhibit call: %w", call.Err)
	}
	if err := call.Store(&cookie); err != nil {
		conn.Close()
		return nil, fmt.Errorf("inhibit: decode inhibit cookie: %w", err)
	}
	return &Inhibitor{conn: conn, cookie: cookie}, nil
}

// Release lifts the inhibition and closes the bus connection.
func (i *Inhibitor) Release() error {
	obj := i.conn.Object(screensaverDest, dbus.ObjectPath(screensaverPath))
	call := obj.Call(screensaverDest+".UnInhibit", 0, i.cookie)
	closeErr := i.conn.Close()
	if call.Err != nil {
		return fmt.Errorf("inhibit: screensaver uninhibit call: %w", call.Err)
	}
	return closeErr
}
