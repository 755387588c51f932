//go:build windows

package app

import (
	"fmt"
	"io"
	"os"
)

var shutdownSignals = []os.Signal{os.Interrupt}

// stopDaemon kills the daemon named in the PID file. Windows has no
// SIGTERM, so the daemon gets no chance to log its shutdown.
func stopDaemon(out io.Writer) error {
	pid, err := readPID()
	if err != nil {
		return fmt.Errorf("no watch daemon running (could not read PID file: %v)", err)
	}
	if !processExists(pid) {
		_ = os.Remove(pidFilePath())
		return fmt.Errorf("no watch daemon running (PID %d is gone, removed stale PID file)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding watch daemon (PID %d): %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("stopping watch daemon (PID %d): %w", pid, err)
	}
	_ = os.Remove(pidFilePath())
	fmt.Fprintf(out, "Stopped watch daemon (PID %d)\n", pid)
	return nil
}

// processExists reports whether pid is alive. FindProcess opens a handle
// and fails when the process is gone.
func processExists(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = proc.Release()
	return true
}
