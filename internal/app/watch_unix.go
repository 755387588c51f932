//go:build !windows

package app

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"time"
)

var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// stopDaemon sends SIGTERM to the daemon named in the PID file and waits
// briefly for it to exit.
func stopDaemon(out io.Writer) error {
	pid, err := readPID()
	if err != nil {
		return fmt.Errorf("no watch daemon running (could not read PID file: %v)", err)
	}
	if !processExists(pid) {
		_ = os.Remove(pidFilePath())
		return fmt.Errorf("no watch daemon running (PID %d is gone, removed stale PID file)", pid)
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("stopping watch daemon (PID %d): %w", pid, err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for processExists(pid) && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}
	_ = os.Remove(pidFilePath())
	fmt.Fprintf(out, "Stopped watch daemon (PID %d)\n", pid)
	return nil
}

// processExists reports whether pid is alive. Signal 0 only probes.
func processExists(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
