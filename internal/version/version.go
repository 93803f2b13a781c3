// Package version reports the ivmd build.
package version

// Set with -ldflags, for example:
//
//	-X github.com/open-cli-collective/intervirt-md/internal/version.Version=v0.3.0
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
