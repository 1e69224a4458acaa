// Package version holds build-time version info for acms.
// Set via main using Set(), read from anywhere via Get().
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Build information, populated by Set() at startup.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Set stores build-time version info. Call once from main.
func Set(v, c, d string) {
	if v != "" {
		version = v
	}
	if c != "" {
		commit = c
	}
	if d != "" {
		buildDate = d
	}
}

// Version returns the build version string.
func Version() string { return version }

// Commit returns the build commit hash.
func Commit() string { return commit }

// BuildDate returns the build date string.
func BuildDate() string { return buildDate }

// Satisfies reports whether a runtime version string meets a semver constraint
// such as ">= 24.0". An empty constraint is always satisfied.
func Satisfies(runtimeVersion, constraint string) (bool, error) {
	if strings.TrimSpace(constraint) == "" {
		return true, nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}

	v, err := semver.NewVersion(strings.TrimPrefix(runtimeVersion, "v"))
	if err != nil {
		return false, fmt.Errorf("invalid runtime version %q: %w", runtimeVersion, err)
	}

	return c.Check(v), nil
}
