package watcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Alert levels, most severe first.
const (
	LevelCritical = "critical"
	LevelWarning  = "warning"
	LevelInfo     = "info"
)

// Notifier delivers alerts as desktop notifications. When the platform has
// no notification tool, or the tool fails, the alert is written to Fallback.
type Notifier struct {
	GOOS     string
	Fallback io.Writer

	lookPath func(file string) (string, error)
	run      func(name string, args ...string) error
}

// NewNotifier returns a Notifier for the running platform that falls back
// to stderr.
func NewNotifier() *Notifier {
	return &Notifier{
		GOOS:     runtime.GOOS,
		Fallback: os.Stderr,
		lookPath: exec.LookPath,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

var defaultNotifier = NewNotifier()

// Notify sends alert with the platform's default notifier.
func Notify(alert Alert) error {
	return defaultNotifier.Notify(alert)
}

// Notify sends alert via osascript on macOS or notify-send on Linux.
func (n *Notifier) Notify(alert Alert) error {
	name, args, ok := notifyCommand(n.GOOS, alert)
	if !ok {
		return n.fallback(alert)
	}
	if _, err := n.lookPath(name); err != nil {
		return n.fallback(alert)
	}
	if err := n.run(name, args...); err != nil {
		return n.fallback(alert)
	}
	return nil
}

// notifyCommand builds the notification command for goos. ok is false when
// the platform has no supported tool.
func notifyCommand(goos string, alert Alert) (name string, args []string, ok bool) {
	switch goos {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title "studiodesk" subtitle %q`,
			alert.Message, alert.Title)
		return "osascript", []string{"-e", script}, true
	case "linux", "freebsd", "openbsd":
		return "notify-send", []string{"-u", urgency(alert.Level), "studiodesk: " + alert.Title, alert.Message}, true
	default:
		return "", nil, false
	}
}

// urgency maps an alert level to a notify-send urgency.
func urgency(level string) string {
	switch level {
	case LevelCritical:
		return "critical"
	case LevelInfo:
		return "low"
	default:
		return "normal"
	}
}

func (n *Notifier) fallback(alert Alert) error {
	w := n.Fallback
	if w == nil {
		w = os.Stderr
	}
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", alert.Level, alert.Title, alert.Message)
	return err
}
