package in

import (
	"context"

	"github.com/bnema/acms/internal/domain"
)

// ImageService defines the contract for image operations.
type ImageService interface {
	// Pull fetches an image and records it under its normalized reference.
	Pull(ctx context.Context, ref string) (*domain.Image, error)

	// List returns all pulled images.
	List(ctx context.Context) ([]*domain.Image, error)

	// Inspect returns a pulled image.
	Inspect(ctx context.Context, ref string) (*domain.Image, error)

	// Tag adds newRef as an alias of ref. newRef must not exist.
	Tag(ctx context.Context, ref, newRef string) (*domain.Image, error)

	// Delete removes each target. Images used by containers need force.
	Delete(ctx context.Context, targets domain.TargetSet, force bool) (domain.BatchResult, error)

	// Prune removes every image no container references.
	Prune(ctx context.Context) (*domain.PruneReport, error)
}
