package config

import "runtime/debug"

// set with -ldflags "-X github.com/orbs-network/orbs-tally/config.SemanticVersion=..." on release builds
var SemanticVersion string
var CommitVersion string

type Version struct {
	Semantic string
	Commit   string
}

// GetVersion falls back to the module version and vcs revision recorded by the go toolchain
func GetVersion() Version {
	return versionFrom(SemanticVersion, CommitVersion, readBuildInfo)
}

func readBuildInfo() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}

func versionFrom(semantic string, commit string, buildInfo func() (*debug.BuildInfo, bool)) Version {
	v := Version{Semantic: semantic, Commit: commit}
	if v.Semantic != "" && v.Commit != "" {
		return v
	}

	info, ok := buildInfo()
	if !ok {
		return v
	}
	if v.Semantic == "" && info.Main.Version != "(devel)" {
		v.Semantic = info.Main.Version
	}
	if v.Commit == "" {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				v.Commit = setting.Value
			}
		}
	}
	return v
}

func (v Version) String() string {
	return v.Semantic + "\n" + v.Commit
}
