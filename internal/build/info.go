// Package build exposes build-time metadata injected via ldflags and
// printed by `blockprompt version`.
package build

// Version, Commit, and Branch are set at build time by:
//
//	-ldflags "-X github.com/joestump/blockprompt/internal/build.Version=... -X github.com/joestump/blockprompt/internal/build.Commit=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Branch  = "unknown"
)
