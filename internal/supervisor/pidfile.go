package supervisor

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/clinicboard/medassist/internal/debug"
)

// ErrNoSidecar is returned when the sidecar file does not exist.
var ErrNoSidecar = errors.New("no recorded process id")

// ReadPIDFile reads the recorded process id from the sidecar file.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNoSidecar
		}
		return 0, fmt.Errorf("failed to read pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pid file %s does not contain a process id", path)
	}

	return pid, nil
}

// WritePIDFile records a process id, overwriting any previous content.
func WritePIDFile(path string, pid int) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

// RemovePIDFile deletes the sidecar file. Best-effort.
func RemovePIDFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		debug.Warn("supervisor", "failed to remove pid file %s: %v", path, err)
	}
}
