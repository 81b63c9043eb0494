// Package version holds build metadata, set with -ldflags at release time:
//
//	-X github.com/mj1618/visual-runner/internal/version.Version=v1.2.0
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// String formats the metadata for --version output.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + BuildDate + ")"
}
