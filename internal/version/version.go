package version

import (
	"fmt"
	"runtime/debug"
)

// Version is the release version, set at build time:
// go build -ldflags "-X github.com/56quarters/cadence-crater/internal/version.Version=v0.4.0".
var Version = "unknown"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Resolved returns Version, falling back to the main module version recorded
// by the Go toolchain when the binary was built with go install.
func Resolved() string {
	if Version != "unknown" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// String formats the version and build metadata on one line.
func String() string {
	return fmt.Sprintf("crater %s (commit %s, built %s)", Resolved(), GitCommit, BuildTime)
}
