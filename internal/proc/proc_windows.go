//go:build windows

package proc

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"syscall"

	"golang.org/x/sys/windows"
)

type windowsPlatform struct{}

// Native returns the process capability for this OS.
func Native() Platform {
	return windowsPlatform{}
}

// KillTree terminates the process and its child tree via taskkill.
func (windowsPlatform) KillTree(pid int) error {
	return exec.Command("taskkill", "/PID", strconv.Itoa(pid), "/F", "/T").Run()
}

// ListenersOnPort enumerates listeners by parsing the connection table
// from netstat.
func (windowsPlatform) ListenersOnPort(ctx context.Context, port int) ([]int, error) {
	cmd := exec.CommandContext(ctx, "netstat", "-ano")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("netstat failed: %w", err)
	}
	return parseNetstatListeners(string(out), port), nil
}

// Alive reports whether the process still exists.
func (windowsPlatform) Alive(pid int) bool {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(handle)

	var exitCode uint32
	if err := windows.GetExitCodeProcess(handle, &exitCode); err != nil {
		return false
	}

	// STILL_ACTIVE (259) means the process is still running
	return exitCode == 259
}

// SetProcAttr gives the child its own process group so console signals
// aimed at the parent don't reach it.
func SetProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
