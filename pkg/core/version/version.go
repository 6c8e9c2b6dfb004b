// ============================================================================
// skriptc - Skript-zu-C Compiler
// ============================================================================
//
// Package:     version
// Description: Central version information for the tool and its formats
// Author:      Mike Stoffels
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants
const (
	// Tool is the skriptc release
	Tool = "0.1.0"

	// Format versions
	BackendFormat = "1.0.0"
	HistorySchema = "1.0.0"
)

// Set at link time with -ldflags "-X github.com/msto63/skriptc/pkg/core/version.GitCommit=..."
var (
	GitCommit = "development"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a named component
func ComponentVersion(name string) string {
	switch name {
	case "backend":
		return BackendFormat
	case "history":
		return HistorySchema
	default:
		return Tool
	}
}

// Info describes the running binary
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
	Platform  string
}

// Get returns the build information of the running binary
func Get() Info {
	return Info{
		Version:   Tool,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
