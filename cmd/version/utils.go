package version

import (
	"runtime/debug"
	"time"
)

// These variables can be overridden at build time with ldflags.
var (
	// SDKVersion is set via -X github.com/geoattest/sdk-go/cmd/version.SDKVersion=...
	SDKVersion string
	// SDKCommit is set via -X github.com/geoattest/sdk-go/cmd/version.SDKCommit=...
	SDKCommit string
	// SDKBuildTime is set via -X github.com/geoattest/sdk-go/cmd/version.SDKBuildTime=...
	SDKBuildTime string
)

// getVersion returns the ldflags version if set, otherwise the module
// version recorded by the Go toolchain.
func getVersion() string {
	if SDKVersion != "" {
		return SDKVersion
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit returns the ldflags commit if set, otherwise the VCS revision
// stamped into the binary. Short form for readability.
func getCommit() string {
	commit := SDKCommit
	if commit == "" {
		commit = buildSetting("vcs.revision")
	}
	const shortHashLength = 9
	if len(commit) > shortHashLength {
		return commit[:shortHashLength]
	}
	return commit
}

func getBuildTime() time.Time {
	if SDKBuildTime != "" {
		if t, err := time.Parse(time.RFC3339, SDKBuildTime); err == nil {
			return t
		}
	}
	if stamp := buildSetting("vcs.time"); stamp != "" {
		if t, err := time.Parse(time.RFC3339, stamp); err == nil {
			return t
		}
	}
	return time.Time{}
}

func getBuildTimeDisplay() string {
	buildTime := getBuildTime()
	if buildTime.IsZero() {
		return "unknown"
	}
	return buildTime.Format(time.RFC3339)
}

func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}
