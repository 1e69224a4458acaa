// Package out defines output ports (interfaces) for infrastructure.
// These interfaces define the contract between use cases and driven adapters
// (container engine, resource store, event bus).
package out

import (
	"context"
	"io"
	"time"

	"github.com/bnema/acms/internal/domain"
)

// ContainerRuntime defines the contract for container runtime operations.
// This interface abstracts the underlying engine (Docker or the in-process sandbox).
// Implementations wrap domain not-found sentinels so callers can classify errors.
type ContainerRuntime interface {
	// Runtime information
	Name() string
	Ping(ctx context.Context) error
	Version(ctx context.Context) (string, error)

	// Container lifecycle
	CreateContainer(ctx context.Context, config *domain.ContainerConfig) (*domain.RuntimeContainer, error)
	StartContainer(ctx context.Context, containerID string) error
	StopContainer(ctx context.Context, containerID string, grace time.Duration) error
	KillContainer(ctx context.Context, containerID string) error
	RemoveContainer(ctx context.Context, containerID string, force bool) error

	// Container inspection
	InspectContainer(ctx context.Context, containerID string) (*domain.RuntimeContainer, error)
	ContainerLogs(ctx context.Context, containerID string, tail int) (io.ReadCloser, error)

	// In-container operations
	ExecInContainer(ctx context.Context, containerID string, cmd []string) (*domain.ExecResult, error)

	// Image operations
	PullImage(ctx context.Context, imageRef string) (*domain.ImageInfo, error)
	InspectImage(ctx context.Context, imageRef string) (*domain.ImageInfo, error)
	TagImage(ctx context.Context, sourceRef, targetRef string) error
	RemoveImage(ctx context.Context, imageRef string, force bool) error

	// Network management
	CreateNetwork(ctx context.Context, config domain.NetworkConfig) (string, error)
	RemoveNetwork(ctx context.Context, name string) error

	// Volume management, CreateVolume returns the host mount point.
	CreateVolume(ctx context.Context, config domain.VolumeConfig) (string, error)
	RemoveVolume(ctx context.Context, name string, force bool) error
}
