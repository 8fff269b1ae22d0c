// Package buildinfo derives the installer's own version string from Go
// build metadata.
package buildinfo

import (
	"runtime/debug"
)

// Version returns the version string for the current orca-install build.
//
// Builds installed from a tagged release report the tag (e.g. "v0.2.0").
// Development builds report "dev-<hash>", with a "-dirty" suffix when
// the tree had uncommitted changes, or plain "dev" without VCS info.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion(info.Settings)
}

func devVersion(settings []debug.BuildSetting) string {
	var revision string
	var modified bool
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}

	v := "dev-" + revision
	if modified {
		v += "-dirty"
	}
	return v
}
