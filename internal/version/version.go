// Package version reports which draftmd build is running.
package version

import "runtime/debug"

// Name identifies draftmd to other services.
const Name = "draftmd"

// Version is stamped at build time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/draftmd/internal/version.Version=v0.3.0"
//
// Binaries built with go install carry their module version instead, which
// Current falls back to.
var Version = "unknown"

// Build metadata, stamped the same way as Version.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// Current returns the stamped version, or the main module version recorded
// in the binary when nothing was stamped.
func Current() string {
	if Version != "" && Version != "unknown" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "unknown"
}

// Commit returns the stamped commit, or the VCS revision the toolchain
// recorded.
func Commit() string {
	if GitCommit != "" && GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := readBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return "unknown"
}

// String returns a one-line description for --version output.
func String() string {
	return Current() + " (commit " + Commit() + ", built " + BuildTime + ")"
}

// UserAgent names this build to peers, for example "draftmd/v0.3.0".
func UserAgent() string {
	return Name + "/" + Current()
}
