//go:build windows

package platform

import (
	"os/exec"
	"strings"
)

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// toastScript builds the PowerShell that shows a toast. An icon switches
// to the image template.
func toastScript(title, body, icon string) string {
	kind := "ToastText02"
	if icon != "" {
		kind = "ToastImageAndText02"
	}
	lines := []string{
		`[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=Windows Runtime] > $null`,
		`$t = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::` + kind + `)`,
		`$x = $t.GetElementsByTagName("text")`,
		`$x.Item(0).AppendChild($t.CreateTextNode(` + psQuote(title) + `)) > $null`,
		`$x.Item(1).AppendChild($t.CreateTextNode(` + psQuote(body) + `)) > $null`,
	}
	if icon != "" {
		lines = append(lines, `$t.GetElementsByTagName("image").Item(0).SetAttribute("src", `+psQuote(icon)+`)`)
	}
	lines = append(lines,
		`$n = [Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(`+psQuote(AppName)+`)`,
		`$n.Show([Windows.UI.Notifications.ToastNotification]::new($t))`,
	)
	return strings.Join(lines, "; ")
}

// Notify shows a toast through the Windows notification center.
func Notify(title, body string, opts Options) error {
	script := toastScript(title, opts.body(body), strings.TrimSpace(opts.IconPath))
	return exec.Command("powershell.exe", "-NoProfile", "-Command", script).Run()
}
