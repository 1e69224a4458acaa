package in

import (
	"context"

	"github.com/bnema/acms/internal/domain"
)

// BuilderService defines the contract for the singleton build engine.
type BuilderService interface {
	// Status always succeeds and reports the current state and last error.
	Status(ctx context.Context) *domain.Builder

	// Start begins starting the builder and returns without waiting for it.
	Start(ctx context.Context) (*domain.Builder, error)

	// Stop stops a running builder.
	Stop(ctx context.Context) (*domain.Builder, error)

	// Delete removes the builder container. A running builder needs force.
	Delete(ctx context.Context, force bool) error

	// Wait blocks until any background start has finished.
	Wait()
}
