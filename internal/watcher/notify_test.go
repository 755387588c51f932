package watcher

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func testNotifier(goos string, lookErr, runErr error) (*Notifier, *bytes.Buffer, *[]string) {
	var out bytes.Buffer
	var calls []string
	n := &Notifier{
		GOOS:     goos,
		Fallback: &out,
		lookPath: func(file string) (string, error) { return "/usr/bin/" + file, lookErr },
		run: func(name string, args ...string) error {
			calls = append(calls, name+" "+strings.Join(args, " "))
			return runErr
		},
	}
	return n, &out, &calls
}

var overdueAlert = Alert{
	Level:   LevelCritical,
	Title:   "Overdue: museum",
	Message: "AT_RISK -> OVERDUE (score 4 -> 10): Deadline passed",
	Time:    time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
}

func TestNotifier_Linux(t *testing.T) {
	n, out, calls := testNotifier("linux", nil, nil)
	if err := n.Notify(overdueAlert); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	want := "notify-send -u critical studiodesk: Overdue: museum " + overdueAlert.Message
	if len(*calls) != 1 || (*calls)[0] != want {
		t.Errorf("calls = %q, want [%q]", *calls, want)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected fallback output %q", out.String())
	}
}

func TestNotifier_MacOS(t *testing.T) {
	n, _, calls := testNotifier("darwin", nil, nil)
	if err := n.Notify(overdueAlert); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(*calls) != 1 || !strings.HasPrefix((*calls)[0], "osascript -e display notification") {
		t.Fatalf("calls = %q", *calls)
	}
	if !strings.Contains((*calls)[0], `subtitle "Overdue: museum"`) {
		t.Errorf("script missing subtitle: %s", (*calls)[0])
	}
}

func TestNotifier_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		lookErr error
		runErr  error
	}{
		{name: "unsupported platform", goos: "windows"},
		{name: "tool missing", goos: "linux", lookErr: errors.New("not found")},
		{name: "tool fails", goos: "darwin", runErr: errors.New("exit status 1")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, out, _ := testNotifier(tc.goos, tc.lookErr, tc.runErr)
			if err := n.Notify(overdueAlert); err != nil {
				t.Fatalf("Notify: %v", err)
			}
			want := "[critical] Overdue: museum: " + overdueAlert.Message + "\n"
			if out.String() != want {
				t.Errorf("fallback = %q, want %q", out.String(), want)
			}
		})
	}
}

func TestNotifyCommand_Unsupported(t *testing.T) {
	if _, _, ok := notifyCommand("plan9", overdueAlert); ok {
		t.Error("expected no command for plan9")
	}
}

func TestUrgency(t *testing.T) {
	tests := map[string]string{
		LevelCritical: "critical",
		LevelWarning:  "normal",
		LevelInfo:     "low",
		"":            "normal",
	}
	for level, want := range tests {
		if got := urgency(level); got != want {
			t.Errorf("urgency(%q) = %q, want %q", level, got, want)
		}
	}
}
