// Package proc provides the platform-specific process operations used by
// the launch supervisor: forced tree termination, enumeration of listeners
// on a TCP port, and liveness checks.
package proc

import (
	"context"
	"strconv"
	"strings"
)

// Platform is the OS capability consumed by the supervisor. One
// implementation exists per OS family; Native returns the right one.
type Platform interface {
	// KillTree forcefully terminates the process and its children.
	// Errors are advisory: the process may already be gone.
	KillTree(pid int) error

	// ListenersOnPort returns the PIDs of processes listening on the
	// given TCP port. The context bounds the enumeration command.
	ListenersOnPort(ctx context.Context, port int) ([]int, error)

	// Alive reports whether the process still exists.
	Alive(pid int) bool
}

// parsePIDLines parses newline-separated decimal PIDs (lsof -t output).
func parsePIDLines(out string) []int {
	var pids []int
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pid, err := strconv.Atoi(line)
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}

// parseNetstatListeners extracts owning PIDs from `netstat -ano` output for
// TCP entries bound to the given port in LISTENING state.
func parseNetstatListeners(out string, port int) []int {
	suffix := ":" + strconv.Itoa(port)
	seen := make(map[int]bool)
	var pids []int

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		// TCP <local> <remote> LISTENING <pid>
		if len(fields) < 5 || !strings.EqualFold(fields[0], "TCP") {
			continue
		}
		if !strings.HasSuffix(fields[1], suffix) {
			continue
		}
		if !strings.EqualFold(fields[3], "LISTENING") {
			continue
		}
		pid, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil || pid <= 0 || seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}

	return pids
}
