package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"unliker/pkg/config"
	"unliker/pkg/unlike"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	cmd := exec.Command("notify-send", title, message)
	return cmd.Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(message), escapeAppleScript(title))
	cmd := exec.Command("osascript", "-e", script)
	return cmd.Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("unliker").Show($toast)
	`, title, message)
	
	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	return cmd.Run()
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`)
}

// Notifier handles cross-platform notifications
type Notifier struct {
	sender NotificationSender
	out    io.Writer
}

// PlatformSender returns the desktop notification sender for this OS, or
// nil where none is supported
func PlatformSender() NotificationSender {
	switch runtime.GOOS {
	case "linux":
		return &LinuxNotificationSender{}
	case "darwin":
		return &MacOSNotificationSender{}
	case "windows":
		return &WindowsNotificationSender{}
	default:
		return nil
	}
}

// NewNotifier creates a Notifier for the current platform writing to stdout
func NewNotifier() *Notifier {
	return &Notifier{sender: PlatformSender(), out: os.Stdout}
}

// NewNotifierWithSender creates a Notifier with an explicit sender and
// console writer
func NewNotifierWithSender(sender NotificationSender, out io.Writer) *Notifier {
	return &Notifier{sender: sender, out: out}
}

// SendNotification sends a desktop notification and prints to console
func (n *Notifier) SendNotification(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Cyan(title), Yellow(message))
	n.send(title, message)
}

// SendError sends an error notification
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Red(title), Red(message))
	n.send(title, message)
}

// SendSuccess sends a success notification
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Green(title), Green(message))
	n.send(title, message)
}

func (n *Notifier) send(title, message string) {
	if n.sender != nil {
		// Ignore errors as notifications are not critical
		_ = n.sender.Send(title, message)
	}
}

// NotificationReporter sends a notification when a run ends
type NotificationReporter struct {
	notifier *Notifier
	cfg      config.NotificationConfig
}

// NewNotificationReporter creates a reporter honouring cfg
func NewNotificationReporter(n *Notifier, cfg config.NotificationConfig) *NotificationReporter {
	return &NotificationReporter{notifier: n, cfg: cfg}
}

func (r *NotificationReporter) Progress(unlike.Status) {}

func (r *NotificationReporter) Failure(unlike.Status, error) {}

func (r *NotificationReporter) RateLimited(unlike.Status, time.Duration) {}

func (r *NotificationReporter) Finished(sum unlike.Summary) {
	if !r.cfg.Enabled {
		return
	}

	if sum.Reason == unlike.ReasonError {
		if r.cfg.OnError {
			msg := "Run failed"
			if sum.Err != nil {
				msg = sum.Err.Error()
			}
			r.notifier.SendError("Unliker failed", msg)
		}
		return
	}

	if r.cfg.OnComplete {
		r.notifier.SendSuccess("Unliker finished",
			fmt.Sprintf("Unliked %d posts (%d this run, %.2fs)", sum.Total, sum.Performed, sum.Elapsed.Seconds()))
	}
}
