//go:build linux

package platform

import (
	"github.com/godbus/dbus/v5"
)

const (
	notifyService = "org.freedesktop.Notifications"
	notifyPath    = "/org/freedesktop/Notifications"
)

// Notify sends a freedesktop notification over the session bus.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	hints := map[string]dbus.Variant{
		"urgency":  dbus.MakeVariant(byte(opts.Urgency)),
		"category": dbus.MakeVariant(opts.category()),
	}
	if opts.IconPath != "" {
		hints["image-path"] = dbus.MakeVariant(opts.IconPath)
	}
	call := conn.Object(notifyService, notifyPath).Call(notifyService+".Notify", 0,
		AppName, uint32(0), opts.IconPath, title, opts.body(body), []string{}, hints,
		int32(opts.timeout().Milliseconds()))
	return call.Err
}
