// Package validation provides input validation for request parameters:
// image references, resource names and batch target sets.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bnema/acms/internal/domain"
)

// Repository path component per the distribution spec:
// lowercase letters, digits, and single separators (., _, -, __).
var repoComponentRegex = regexp.MustCompile(`^[a-z0-9]+(?:(?:[._]|__|[-]+)[a-z0-9]+)*$`)

// Registry host with optional port, e.g. "ghcr.io" or "localhost:5000".
var registryHostRegex = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9.-]*[a-zA-Z0-9])?(?::[0-9]+)?$`)

// Tag per the distribution spec: max 128 chars, starts with a word character.
var tagRegex = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9._-]{0,127}$`)

// Digest validation for content-addressable references.
var digestRegex = regexp.MustCompile(`^(sha256:[a-f0-9]{64}|sha512:[a-f0-9]{128})$`)

// MaxRepositoryNameLength is the maximum allowed length for repository names.
const MaxRepositoryNameLength = 256

// ParseImageReference parses an image reference into name and tag/digest.
// Supports formats:
//   - image:tag (default tag is "latest")
//   - image@sha256:... (digest)
//   - image (defaults to "latest")
//   - registry.example.com:5000/image:tag
func ParseImageReference(imageRef string) (string, string) {
	if idx := strings.Index(imageRef, "@"); idx != -1 {
		return imageRef[:idx], imageRef[idx+1:]
	}

	// The tag separator is the last colon after the last slash; earlier
	// colons belong to a registry port.
	lastSlash := strings.LastIndex(imageRef, "/")
	if idx := strings.LastIndex(imageRef, ":"); idx > lastSlash {
		return imageRef[:idx], imageRef[idx+1:]
	}

	return imageRef, "latest"
}

// NormalizeImageReference returns the canonical store key for an image
// reference: "nginx" becomes "nginx:latest", digests are kept as is.
func NormalizeImageReference(imageRef string) string {
	name, ref := ParseImageReference(strings.TrimSpace(imageRef))
	if strings.HasPrefix(ref, "sha256:") || strings.HasPrefix(ref, "sha512:") {
		return name + "@" + ref
	}
	return name + ":" + ref
}

// ValidateImageReference validates a full image reference.
func ValidateImageReference(imageRef string) error {
	if strings.TrimSpace(imageRef) == "" {
		return fmt.Errorf("%w: reference cannot be empty", domain.ErrInvalidImageFormat)
	}

	name, ref := ParseImageReference(imageRef)
	if err := ValidateRepositoryName(name); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidImageFormat, err)
	}
	if err := ValidateReference(ref); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidImageFormat, err)
	}
	return nil
}

// ValidateRepositoryName validates a repository name, with an optional
// registry host as first component.
func ValidateRepositoryName(name string) error {
	if name == "" {
		return fmt.Errorf("repository name cannot be empty")
	}

	if len(name) > MaxRepositoryNameLength {
		return fmt.Errorf("repository name too long: %d chars (max %d)", len(name), MaxRepositoryNameLength)
	}

	if strings.Contains(name, "..") {
		return fmt.Errorf("repository name contains path traversal sequence")
	}

	components := strings.Split(name, "/")
	if len(components) > 1 && looksLikeRegistryHost(components[0]) {
		if !registryHostRegex.MatchString(components[0]) {
			return fmt.Errorf("invalid registry host %q", components[0])
		}
		components = components[1:]
	}

	for _, c := range components {
		if !repoComponentRegex.MatchString(c) {
			return fmt.Errorf("invalid repository name format: must contain only lowercase letters, digits, and separators (., _, -)")
		}
	}

	return nil
}

func looksLikeRegistryHost(component string) bool {
	return strings.ContainsAny(component, ".:") || component == "localhost"
}

// ValidateReference validates a tag or digest.
func ValidateReference(reference string) error {
	if reference == "" {
		return fmt.Errorf("reference cannot be empty")
	}

	if digestRegex.MatchString(reference) {
		return nil
	}

	if !tagRegex.MatchString(reference) {
		return fmt.Errorf("invalid reference format: must be a valid tag or digest")
	}

	return nil
}

// IsDigest checks if a string is a valid content digest.
func IsDigest(digest string) bool {
	return digestRegex.MatchString(digest)
}
