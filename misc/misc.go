// Package misc provides build metadata helpers used for logging and naming.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "u2b"

// Set at build time via -ldflags when releasing.
var (
	version = "dev"
	gitHash = ""
)

var readBuildInfo = sync.OnceValue(func() *debug.BuildInfo {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return bi
})

// GetAppName returns short program name used in logs, temp paths and reports.
func GetAppName() string {
	return appName
}

// GetVersion returns program version - either set by the linker or derived
// from module build information.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if bi := readBuildInfo(); bi != nil && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}

// GetGitHash returns VCS revision recorded in build information.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if bi := readBuildInfo(); bi != nil {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				if len(s.Value) > 12 {
					return s.Value[:12]
				}
				return s.Value
			}
		}
	}
	return "unknown"
}
