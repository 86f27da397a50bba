//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
)

// Notify posts to Notification Center through osascript. Failures play a
// sound; routine saves are silent.
func Notify(title, body string, opts Options) error {
	subtitle := opts.Subtitle
	if subtitle == "" {
		subtitle = AppName
	}
	script := fmt.Sprintf("display notification %q with title %q subtitle %q", body, title, subtitle)
	if opts.Urgency == UrgencyCritical {
		script += ` sound name "Basso"`
	}
	return exec.Command("osascript", "-e", script).Run()
}
