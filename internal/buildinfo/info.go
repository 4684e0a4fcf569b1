// Package buildinfo exposes the release metadata stamped in by the linker:
//
//	-ldflags "-X github.com/chameleoncloud/trovi/internal/buildinfo.Version=v1.2.3"
package buildinfo

import "fmt"

// Release metadata. The defaults identify a local build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const product = "trovi-cli"

// String describes the build for --version output and the command log.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}

// GetUserAgent is sent on every request to Trovi and the identity provider.
func GetUserAgent() string {
	return product + "/" + Version
}

// GetCreator is recorded as the generator of RO-Crate packages.
func GetCreator() string {
	return product + " " + Version
}
