package version

import "fmt"

var (
	// Version is the release of the autoclicker, set with -ldflags "-X".
	Version = "0.1.0-dev"
	// Commit is the short git SHA of the build, or "none".
	Commit = "none"
	// BuildTime is the UTC build timestamp, or "unknown".
	BuildTime = "unknown"
)

// Short returns the release alone, as logged by the daemon at startup.
func Short() string {
	return Version
}

// Full returns the release with its commit and build time.
func Full() string {
	return fmt.Sprintf("autoclicker %s (commit %s, built %s)", Version, Commit, BuildTime)
}
