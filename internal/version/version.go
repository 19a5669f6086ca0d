// Package version holds build information, set with -ldflags -X.
package version

import "fmt"

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("vector-editor %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
