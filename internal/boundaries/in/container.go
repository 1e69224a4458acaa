// Package in defines input ports (interfaces) for use cases.
// These interfaces define the contract between driving adapters (HTTP, CLI)
// and the business logic (use cases).
package in

import (
	"context"
	"time"

	"github.com/bnema/acms/internal/domain"
)

// ContainerService defines the contract for container lifecycle operations.
// Identifiers accept a full ID, a name, or a unique ID prefix.
type ContainerService interface {
	// Create registers a container in the created state.
	Create(ctx context.Context, config domain.ContainerConfig) (*domain.Container, error)

	// Run creates and starts a container, removing it again if start fails.
	Run(ctx context.Context, config domain.ContainerConfig) (*domain.Container, error)

	// Start starts a created or stopped container.
	Start(ctx context.Context, ident string) (*domain.Container, error)

	// Stop gracefully stops each target. A zero grace uses the configured default.
	Stop(ctx context.Context, targets domain.TargetSet, grace time.Duration) (domain.BatchResult, error)

	// Kill immediately terminates each target.
	Kill(ctx context.Context, targets domain.TargetSet) (domain.BatchResult, error)

	// Delete removes each target. Running containers are refused.
	Delete(ctx context.Context, targets domain.TargetSet) (domain.BatchResult, error)

	// List returns running containers, or every container when all is set.
	List(ctx context.Context, all bool) ([]*domain.Container, error)

	// Inspect returns a container.
	Inspect(ctx context.Context, ident string) (*domain.Container, error)

	// Logs returns the last tail output lines, all lines when tail <= 0.
	Logs(ctx context.Context, ident string, tail int) ([]string, error)

	// Exec runs a command in a running container. A zero timeout uses the
	// configured maximum; larger values are capped to it.
	Exec(ctx context.Context, ident string, cmd []string, timeout time.Duration) (*domain.ExecResult, error)

	// Reconcile marks containers whose runtime process is gone as stopped.
	Reconcile(ctx context.Context) error
}
