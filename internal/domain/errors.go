package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors represent business-level errors that can occur in the system.
// These errors are used across layers to communicate specific failure conditions.
var (
	// Container errors
	ErrContainerNotFound   = errors.New("container not found")
	ErrContainerExists     = errors.New("container already exists")
	ErrContainerNotRunning = errors.New("container is not running")
	ErrContainerRunning    = errors.New("container is running, stop or kill it first")
	ErrContainerNotStarted = errors.New("container cannot be started from its current state")
	ErrAmbiguousID         = errors.New("identifier matches more than one container")

	// Image errors
	ErrImageNotFound      = errors.New("image not found")
	ErrImageExists        = errors.New("image reference already exists")
	ErrImageInUse         = errors.New("image is referenced by an existing container")
	ErrInvalidImageFormat = errors.New("invalid image format")

	// Network errors
	ErrNetworkNotFound = errors.New("network not found")
	ErrNetworkExists   = errors.New("network already exists")
	ErrNetworkInUse    = errors.New("network has attached containers")

	// Volume errors
	ErrVolumeNotFound = errors.New("volume not found")
	ErrVolumeExists   = errors.New("volume already exists")
	ErrVolumeInUse    = errors.New("volume has attached containers")

	// Builder errors
	ErrBuilderRunning    = errors.New("builder is already running")
	ErrBuilderStarting   = errors.New("builder is starting")
	ErrBuilderStopped    = errors.New("builder is not running")
	ErrBuilderNotCreated = errors.New("builder does not exist")

	// System errors
	ErrProtectedResource = errors.New("resource is protected")
	ErrDNSNotConfigured  = errors.New("no default DNS domain configured")
	ErrLogsNotConfigured = errors.New("log file not configured")
	ErrTimeout           = errors.New("operation timed out")
	ErrUnauthorized      = errors.New("unauthorized")
)

// ErrorKind classifies an error for callers that report outcomes.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindPreconditionFailed ErrorKind = "precondition_failed"
	KindValidation         ErrorKind = "validation_error"
	KindTimeout            ErrorKind = "timeout"
	KindInternal           ErrorKind = "internal_error"
)

var notFoundErrors = []error{
	ErrContainerNotFound,
	ErrImageNotFound,
	ErrNetworkNotFound,
	ErrVolumeNotFound,
	ErrBuilderNotCreated,
	ErrDNSNotConfigured,
}

var preconditionErrors = []error{
	ErrContainerExists,
	ErrContainerNotRunning,
	ErrContainerRunning,
	ErrContainerNotStarted,
	ErrImageExists,
	ErrImageInUse,
	ErrNetworkExists,
	ErrNetworkInUse,
	ErrVolumeExists,
	ErrVolumeInUse,
	ErrBuilderRunning,
	ErrBuilderStarting,
	ErrBuilderStopped,
	ErrProtectedResource,
	ErrLogsNotConfigured,
}

// KindOf maps an error chain onto one of the reporting kinds.
// Unknown errors are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	if errors.As(err, &verr) || errors.Is(err, ErrInvalidImageFormat) || errors.Is(err, ErrAmbiguousID) {
		return KindValidation
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return KindNotFound
		}
	}
	for _, target := range preconditionErrors {
		if errors.Is(err, target) {
			return KindPreconditionFailed
		}
	}
	return KindInternal
}

// ValidationError reports a malformed request parameter.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid request: %s", e.Reason)
	}
	return fmt.Sprintf("invalid value for %s (%v): %s", e.Field, e.Value, e.Reason)
}

// NewValidationError creates a validation error for the given field.
func NewValidationError(field string, value any, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
