// Package version reports which build of histextract is running.
package version

import "fmt"

// Overridden with -ldflags "-X hsv-hist/internal/version.Version=...".
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown" // UTC
)

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("histextract %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
