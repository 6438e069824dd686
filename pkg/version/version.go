// Package version reports the build version of the changanya binary.
package version

import (
	"runtime/debug"
)

// Build metadata, set with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	develVersion = "(devel)"
	vcsRevision  = "vcs.revision"
	vcsTime      = "vcs.time"
	shortCommit  = 12
)

// InitBinaryVersion fills values left at their defaults from the module
// build info, so `go install` builds still report something useful.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != develVersion {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case vcsRevision:
			if Commit == "none" {
				Commit = setting.Value[:min(len(setting.Value), shortCommit)]
			}
		case vcsTime:
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}

// String renders the version line printed by the CLI.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
