package supervisor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPIDFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".rag_pid")

	if err := WritePIDFile(path, 12345); err != nil {
		t.Fatalf("WritePIDFile failed: %v", err)
	}

	pid, err := ReadPIDFile(path)
	if err != nil {
		t.Fatalf("ReadPIDFile failed: %v", err)
	}
	if pid != 12345 {
		t.Errorf("pid = %d; want 12345", pid)
	}

	// Overwrite, not append
	if err := WritePIDFile(path, 678); err != nil {
		t.Fatalf("WritePIDFile failed: %v", err)
	}
	pid, err = ReadPIDFile(path)
	if err != nil {
		t.Fatalf("ReadPIDFile failed: %v", err)
	}
	if pid != 678 {
		t.Errorf("pid after overwrite = %d; want 678", pid)
	}
}

func TestReadPIDFileMissing(t *testing.T) {
	_, err := ReadPIDFile(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrNoSidecar) {
		t.Errorf("err = %v; want ErrNoSidecar", err)
	}
}

func TestReadPIDFileGarbage(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"text", "not a pid\n"},
		{"negative", "-4\n"},
		{"zero", "0"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".rag_pid")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := ReadPIDFile(path); err == nil {
				t.Errorf("ReadPIDFile accepted %q", tt.content)
			}
		})
	}
}

func TestRemovePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".rag_pid")
	if err := WritePIDFile(path, 1); err != nil {
		t.Fatal(err)
	}

	RemovePIDFile(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("pid file still present after remove")
	}

	// Removing a missing file is fine
	RemovePIDFile(path)
}

func TestResolveHosted(t *testing.T) {
	for _, mode := range []string{"on", "true"} {
		if !ResolveHosted(mode) {
			t.Errorf("ResolveHosted(%q) = false", mode)
		}
	}
	for _, mode := range []string{"off", "false"} {
		if ResolveHosted(mode) {
			t.Errorf("ResolveHosted(%q) = true", mode)
		}
	}

	// Anything else defers to environment detection
	t.Setenv(HostedEnvVar, "1")
	if !ResolveHosted("auto") {
		t.Errorf(`ResolveHosted("auto") = false with %s=1`, HostedEnvVar)
	}
}

func TestDetectHostedEnvVar(t *testing.T) {
	t.Setenv(HostedEnvVar, "true")
	if !DetectHosted() {
		t.Errorf("DetectHosted = false with %s=true", HostedEnvVar)
	}

	// An explicit false overrides container markers
	t.Setenv(HostedEnvVar, "false")
	if DetectHosted() {
		t.Errorf("DetectHosted = true with %s=false", HostedEnvVar)
	}
}
