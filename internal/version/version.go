// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version describes the running build of the dashboard.
package version

import (
	"runtime/debug"
	"strings"
)

// Info holds the values injected with -ldflags at build time.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
}

// unset reports whether s is a placeholder left by a plain go build.
func unset(s string) bool {
	return s == "" || s == "unknown"
}

// Resolve fills fields missing from the ldflags with the VCS stamps of the
// Go build info, when present.
func (i Info) Resolve() Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}
	return i.resolveFrom(bi)
}

func (i Info) resolveFrom(bi *debug.BuildInfo) Info {
	if (unset(i.Version) || i.Version == "dev") && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if unset(i.GitCommit) && s.Value != "" {
				i.GitCommit = s.Value
				if len(i.GitCommit) > 7 {
					i.GitCommit = i.GitCommit[:7]
				}
			}
		case "vcs.time":
			if unset(i.BuildTime) {
				i.BuildTime = s.Value
			}
		}
	}
	return i
}

// Label is the version shown in health output. Empty means a dev build.
func (i Info) Label() string {
	if unset(i.Version) {
		return "dev"
	}
	return i.Version
}

// String returns "version (commit, built time)", omitting unknown parts.
func (i Info) String() string {
	var extra []string
	if !unset(i.GitCommit) {
		extra = append(extra, i.GitCommit)
	}
	if !unset(i.BuildTime) {
		extra = append(extra, "built "+i.BuildTime)
	}
	if len(extra) == 0 {
		return i.Label()
	}
	return i.Label() + " (" + strings.Join(extra, ", ") + ")"
}
