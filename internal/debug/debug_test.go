package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnableDisable(t *testing.T) {
	prev := IsEnabled()
	t.Cleanup(func() { enabled.Store(prev) })

	Enable()
	if !IsEnabled() {
		t.Error("IsEnabled = false after Enable")
	}

	Disable()
	if IsEnabled() {
		t.Error("IsEnabled = true after Disable")
	}
}

func TestLogFileSink(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	prev := IsEnabled()
	t.Cleanup(func() { enabled.Store(prev) })
	t.Cleanup(func() {
		Close()
		if err := SetLogFile(""); err != nil {
			t.Errorf("resetting log output: %v", err)
		}
	})

	const name = "sink-test.log"
	if err := SetLogFile(name); err != nil {
		t.Fatalf("SetLogFile failed: %v", err)
	}

	Enable()
	Log("test", "gated message %d", 1)
	Disable()
	Log("test", "suppressed message")
	Info("test", "always message")

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	path := filepath.Join(cacheDir, "medassist", "logs", name)
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)

	if !strings.Contains(out, "[DEBUG] [test] gated message 1") {
		t.Errorf("log file missing debug line:\n%s", out)
	}
	if !strings.Contains(out, "[INFO] [test] always message") {
		t.Errorf("log file missing info line:\n%s", out)
	}
	if strings.Contains(out, "suppressed message") {
		t.Errorf("log file contains a message logged while disabled:\n%s", out)
	}
}
