package in

import (
	"context"

	"github.com/bnema/acms/internal/domain"
)

// VolumeService defines the contract for volume operations.
type VolumeService interface {
	List(ctx context.Context) ([]*domain.Volume, error)
	Create(ctx context.Context, config domain.VolumeConfig) (*domain.Volume, error)
	Inspect(ctx context.Context, name string) (*domain.Volume, error)

	// Delete removes each target. Protected and mounted volumes are refused.
	Delete(ctx context.Context, targets domain.TargetSet) (domain.BatchResult, error)
}
