package telemetry

import (
	"os"
)

const defaultArtifactsDir = ".agent"

var observeEnabled bool

func init() {
	// Read once at process start. Mid-run environment changes have no effect
	// except the explicit "1" override in ObserveEnabled.
	observeEnabled = os.Getenv("SEARCHAGENT_OBSERVE_JSON") == "1"
}

// ObserveEnabled reports whether JSONL emission is on.
func ObserveEnabled() bool {
	// Allow tests to enable mid-run via env override.
	if os.Getenv("SEARCHAGENT_OBSERVE_JSON") == "1" {
		return true
	}
	return observeEnabled
}

// ArtifactsDir is where events.jsonl is written.
func ArtifactsDir() string {
	if d := os.Getenv("SEARCHAGENT_ARTIFACTS_DIR"); d != "" {
		return d
	}
	return defaultArtifactsDir
}
