package supervisor

import (
	"os"
	"strconv"
)

// HostedEnvVar forces hosted/managed-environment mode when set to a true
// boolean value. In hosted mode an external orchestrator owns process
// lifecycle and port allocation, so the aggressive port sweep is skipped
// and cleanup failures are suppressed.
const HostedEnvVar = "MEDASSIST_HOSTED"

// containerMarkers are filesystem paths whose presence indicates a
// container runtime.
var containerMarkers = []string{"/.dockerenv", "/run/.containerenv"}

// DetectHosted reports whether the process appears to run in a hosted or
// managed environment, based on the environment variable and container
// filesystem markers.
func DetectHosted() bool {
	if v := os.Getenv(HostedEnvVar); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}

	for _, marker := range containerMarkers {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}

	return false
}

// ResolveHosted maps a config setting ("on", "off", "auto") to the
// effective hosted flag. "true" and "false" are accepted aliases for
// "on" and "off".
func ResolveHosted(mode string) bool {
	switch mode {
	case "on", "true":
		return true
	case "off", "false":
		return false
	default:
		return DetectHosted()
	}
}
