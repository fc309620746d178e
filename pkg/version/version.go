// Package version exposes the pdfingest binary's version derived from
// build metadata.
//
// Go 1.18+ automatically embeds VCS info (git commit, dirty flag, etc.)
// into the binary via runtime/debug.BuildInfo. No -ldflags required.
//
// Usage:
//
//	version.GitCommit  // "a3f8c2d1" or "dev"
//	version.Full()      // "pdfingest/a3f8c2d1" or "pdfingest/dev"
//	version.UserAgent() // same string, for outbound HTTP clients
package version

import "runtime/debug"

// AppName is the application name used in version strings.
const AppName = "pdfingest"

// GitCommit is the short git commit hash (8 chars) from build info.
// Set to "dev" when build info is unavailable (e.g., `go test`, non-git builds).
var GitCommit = initGitCommit()

func initGitCommit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 8 {
				return s.Value[:8]
			}
			return s.Value
		}
	}
	return "dev"
}

// Full returns "pdfingest/<commit>", printed by the CLI's --version flag
// and attached to every startup log line.
func Full() string {
	return AppName + "/" + GitCommit
}

// UserAgent returns Full(), named separately for call sites that send it as
// an HTTP User-Agent header rather than print it — the search package's
// Elasticsearch client is one such caller.
func UserAgent() string {
	return Full()
}
