// Package buildconfig reports what binary is running.
//
//	go build -ldflags "-X github.com/Harshitk-cp/credence/internal/buildconfig.version=v0.3.0"
//
// Without ldflags the commit falls back to the VCS stamp the go tool embeds.
package buildconfig

import (
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	version = "dev"
	commit  = ""
)

var resolveCommit = sync.OnceValue(func() string {
	if commit != "" {
		return commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return "unknown"
})

func Version() string { return version }

func Commit() string { return resolveCommit() }

// VersionInfo is reported by /health and `credence version`.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  Commit(),
		"go":      runtime.Version(),
	}
}
