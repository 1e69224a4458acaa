package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Container, network and volume names share the runtime naming rules.
var resourceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// MaxResourceNameLength is the maximum allowed length for resource names.
const MaxResourceNameLength = 128

// ValidateResourceName validates a container, network or volume name.
func ValidateResourceName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > MaxResourceNameLength {
		return fmt.Errorf("name too long: %d chars (max %d)", len(name), MaxResourceNameLength)
	}
	if !resourceNameRegex.MatchString(name) {
		return fmt.Errorf("invalid name %q: must start with a letter or digit and contain only [a-zA-Z0-9_.-]", name)
	}
	return nil
}

// ValidateMountPath validates an absolute mount path inside a container.
func ValidateMountPath(path string) error {
	if path == "" {
		return fmt.Errorf("mount path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("mount path %q must be absolute", path)
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("mount path contains path traversal sequence")
	}
	return nil
}

// ValidatePathWithinRoot validates that a constructed path stays within the root directory.
func ValidatePathWithinRoot(rootDir, fullPath string) error {
	cleanRoot := filepath.Clean(rootDir)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator)) && cleanPath != cleanRoot {
		return fmt.Errorf("path escapes root directory")
	}

	return nil
}
