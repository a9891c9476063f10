//go:build !windows

package proc

import (
	"context"
	"fmt"
	"os/exec"
	"syscall"
)

type unixPlatform struct{}

// Native returns the process capability for this OS.
func Native() Platform {
	return unixPlatform{}
}

// KillTree sends SIGKILL to the process group first (gets all children),
// then to the process directly in case the group kill fails.
func (unixPlatform) KillTree(pid int) error {
	if pgid, err := syscall.Getpgid(pid); err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
	}
	return syscall.Kill(pid, syscall.SIGKILL)
}

// ListenersOnPort enumerates listeners via lsof.
func (unixPlatform) ListenersOnPort(ctx context.Context, port int) ([]int, error) {
	cmd := exec.CommandContext(ctx, "lsof", "-t", fmt.Sprintf("-iTCP:%d", port), "-sTCP:LISTEN")
	out, err := cmd.Output()
	if err != nil {
		// lsof exits non-zero when nothing matches
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("lsof failed: %w", err)
	}
	return parsePIDLines(string(out)), nil
}

// Alive checks liveness by sending signal 0, which probes the process
// without actually signalling it.
func (unixPlatform) Alive(pid int) bool {
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}

// SetProcAttr places the child in its own process group so KillTree can
// terminate it together with any children it spawns.
func SetProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
