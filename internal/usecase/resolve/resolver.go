// Package resolve turns request target sets into concrete store keys.
package resolve

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/pkg/validation"
)

// Resolver expands target sets against the resource store.
type Resolver struct {
	store out.ResourceStore
}

// NewResolver creates a resolver over store.
func NewResolver(store out.ResourceStore) *Resolver {
	return &Resolver{store: store}
}

// Expand returns the identifiers a target set names. Explicit identifiers
// pass through verbatim, duplicates and unknown names included, so every
// requested target gets its own outcome. All expands to every entity of the
// kind except protected ones.
func (r *Resolver) Expand(ctx context.Context, kind domain.Kind, targets domain.TargetSet) ([]string, error) {
	if !targets.IsAll() {
		return targets.Targets(), nil
	}

	switch kind {
	case domain.KindContainer:
		return r.ExpandContainers(ctx, targets, nil)
	case domain.KindImage:
		images, err := r.store.ListImages(ctx)
		if err != nil {
			return nil, err
		}
		return lo.Map(images, func(img *domain.Image, _ int) string { return img.Reference }), nil
	case domain.KindNetwork:
		networks, err := r.store.ListNetworks(ctx)
		if err != nil {
			return nil, err
		}
		return lo.FilterMap(networks, func(n *domain.Network, _ int) (string, bool) {
			return n.Name, !n.Protected
		}), nil
	case domain.KindVolume:
		volumes, err := r.store.ListVolumes(ctx)
		if err != nil {
			return nil, err
		}
		return lo.FilterMap(volumes, func(v *domain.Volume, _ int) (string, bool) {
			return v.Name, !v.Protected
		}), nil
	}
	return nil, fmt.Errorf("kind %q has no batch targets", kind)
}

// ExpandContainers is Expand for containers with an optional filter applied
// when the set is All. Explicit identifiers are never filtered.
func (r *Resolver) ExpandContainers(ctx context.Context, targets domain.TargetSet, keep func(*domain.Container) bool) ([]string, error) {
	if !targets.IsAll() {
		return targets.Targets(), nil
	}
	containers, err := r.store.ListContainers(ctx)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(containers, func(c *domain.Container, _ int) (string, bool) {
		return c.ID, keep == nil || keep(c)
	}), nil
}

// Lookup maps a user identifier to the store key for kind.
func (r *Resolver) Lookup(ctx context.Context, kind domain.Kind, ident string) (string, error) {
	switch kind {
	case domain.KindContainer:
		c, err := r.store.FindContainer(ctx, ident)
		if err != nil {
			return "", err
		}
		return c.ID, nil
	case domain.KindImage:
		return validation.NormalizeImageReference(ident), nil
	}
	return ident, nil
}
