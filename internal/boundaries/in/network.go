package in

import (
	"context"

	"github.com/bnema/acms/internal/domain"
)

// NetworkService defines the contract for network operations.
type NetworkService interface {
	List(ctx context.Context) ([]*domain.Network, error)
	Create(ctx context.Context, config domain.NetworkConfig) (*domain.Network, error)
	Inspect(ctx context.Context, name string) (*domain.Network, error)

	// Delete removes each target. Protected and in-use networks are refused.
	Delete(ctx context.Context, targets domain.TargetSet) (domain.BatchResult, error)

	// EnsureDefaults creates the protected default networks if missing.
	EnsureDefaults(ctx context.Context) error
}
