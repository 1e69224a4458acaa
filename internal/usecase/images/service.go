// Package images implements the image management use case.
package images

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/samber/lo"

	"github.com/bnema/acms/internal/boundaries/in"
	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/internal/usecase/batch"
	"github.com/bnema/acms/internal/usecase/resolve"
	"github.com/bnema/acms/pkg/validation"
)

// Ensure Service implements in.ImageService.
var _ in.ImageService = (*Service)(nil)

// Service implements pull, tag, delete and prune over the image store.
type Service struct {
	runtime  out.ContainerRuntime
	store    out.ResourceStore
	eventBus out.EventPublisher
	resolver *resolve.Resolver
	batch    *batch.Executor
}

// NewService creates a new images service.
func NewService(
	runtime out.ContainerRuntime,
	store out.ResourceStore,
	eventBus out.EventPublisher,
	executor *batch.Executor,
) *Service {
	return &Service{
		runtime:  runtime,
		store:    store,
		eventBus: eventBus,
		resolver: resolve.NewResolver(store),
		batch:    executor,
	}
}

func usecaseCtx(ctx context.Context, action, ref string) context.Context {
	fields := map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: action,
	}
	if ref != "" {
		fields["image"] = ref
	}
	return zerowrap.CtxWithFields(ctx, fields)
}

// Pull fetches an image and records it under its normalized reference.
// Pulling a known reference refreshes its metadata.
func (s *Service) Pull(ctx context.Context, ref string) (*domain.Image, error) {
	ctx = usecaseCtx(ctx, "PullImage", ref)
	log := zerowrap.FromCtx(ctx)

	if err := validation.ValidateImageReference(ref); err != nil {
		return nil, err
	}
	ref = validation.NormalizeImageReference(ref)

	unlock := s.store.Lock(domain.KindImage, ref)
	img, err := s.pull(ctx, ref)
	unlock()
	if err != nil {
		return nil, log.WrapErr(err, "failed to pull image")
	}

	s.publish(ctx, domain.EventImagePulled, ref)
	log.Info().Str("digest", img.Digest).Int64("size", img.Size).Msg("image pulled")
	return img, nil
}

func (s *Service) pull(ctx context.Context, ref string) (*domain.Image, error) {
	info, err := s.runtime.PullImage(ctx, ref)
	if err != nil {
		return nil, err
	}
	img := &domain.Image{
		Reference: ref,
		Digest:    info.Digest,
		Size:      info.Size,
		CreatedAt: info.CreatedAt,
		PulledAt:  time.Now(),
	}
	if err := s.store.PutImage(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// List returns all pulled images.
func (s *Service) List(ctx context.Context) ([]*domain.Image, error) {
	return s.store.ListImages(ctx)
}

// Inspect returns a pulled image.
func (s *Service) Inspect(ctx context.Context, ref string) (*domain.Image, error) {
	return s.store.GetImage(ctx, validation.NormalizeImageReference(ref))
}

// Tag adds newRef as an alias of ref. newRef must not exist.
func (s *Service) Tag(ctx context.Context, ref, newRef string) (*domain.Image, error) {
	ctx = usecaseCtx(ctx, "TagImage", ref)
	log := zerowrap.FromCtx(ctx)

	if err := validation.ValidateImageReference(newRef); err != nil {
		return nil, err
	}
	ref = validation.NormalizeImageReference(ref)
	newRef = validation.NormalizeImageReference(newRef)

	src, err := s.store.GetImage(ctx, ref)
	if err != nil {
		return nil, err
	}

	unlock := s.store.Lock(domain.KindImage, newRef)
	tagged, err := s.tag(ctx, src, newRef)
	unlock()
	if err != nil {
		return nil, log.WrapErr(err, "failed to tag image")
	}

	s.publish(ctx, domain.EventImageTagged, newRef)
	log.Info().Str("target", newRef).Msg("image tagged")
	return tagged, nil
}

func (s *Service) tag(ctx context.Context, src *domain.Image, newRef string) (*domain.Image, error) {
	if _, err := s.store.GetImage(ctx, newRef); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrImageExists, newRef)
	}
	if err := s.runtime.TagImage(ctx, src.Reference, newRef); err != nil {
		return nil, err
	}
	tagged := *src
	tagged.Reference = newRef
	if err := s.store.PutImage(ctx, &tagged); err != nil {
		return nil, err
	}
	return &tagged, nil
}

// Delete removes each target. Images referenced by a container need force.
func (s *Service) Delete(ctx context.Context, targets domain.TargetSet, force bool) (domain.BatchResult, error) {
	ctx = usecaseCtx(ctx, "DeleteImages", "")

	refs, err := s.resolver.Expand(ctx, domain.KindImage, targets)
	if err != nil {
		return domain.BatchResult{}, zerowrap.FromCtx(ctx).WrapErr(err, "failed to expand targets")
	}

	return s.batch.Run(ctx, "image_delete", refs, func(ctx context.Context, target string) error {
		ref, err := s.resolver.Lookup(ctx, domain.KindImage, target)
		if err != nil {
			return err
		}

		unlock := s.store.Lock(domain.KindImage, ref)
		err = s.remove(ctx, ref, force)
		unlock()
		if err != nil {
			return err
		}

		s.publish(ctx, domain.EventImageDeleted, ref)
		return nil
	}), nil
}

// remove deletes one image. The caller holds the image lock.
func (s *Service) remove(ctx context.Context, ref string, force bool) error {
	if _, err := s.store.GetImage(ctx, ref); err != nil {
		return err
	}
	if !force {
		users, err := s.users(ctx, ref)
		if err != nil {
			return err
		}
		if len(users) > 0 {
			return fmt.Errorf("%w: %s is used by %v", domain.ErrImageInUse, ref, users)
		}
	}
	if err := s.runtime.RemoveImage(ctx, ref, force); err != nil && !errors.Is(err, domain.ErrImageNotFound) {
		return err
	}
	return s.store.DeleteImage(ctx, ref)
}

// users returns the names of containers created from ref.
func (s *Service) users(ctx context.Context, ref string) ([]string, error) {
	containers, err := s.store.ListContainers(ctx)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(containers, func(c *domain.Container, _ int) (string, bool) {
		return c.Name, c.Image == ref
	}), nil
}

// Prune removes every image no container references. A second prune with
// nothing new to reclaim returns an empty report.
func (s *Service) Prune(ctx context.Context) (*domain.PruneReport, error) {
	ctx = usecaseCtx(ctx, "PruneImages", "")
	log := zerowrap.FromCtx(ctx)

	images, err := s.store.ListImages(ctx)
	if err != nil {
		return nil, log.WrapErr(err, "failed to list images")
	}

	report := &domain.PruneReport{Reclaimed: []string{}}
	for _, img := range images {
		unlock := s.store.Lock(domain.KindImage, img.Reference)
		reclaimed, err := s.pruneOne(ctx, img.Reference)
		unlock()
		if err != nil {
			return nil, log.WrapErr(err, "failed to prune image")
		}
		if reclaimed != nil {
			report.Reclaimed = append(report.Reclaimed, reclaimed.Reference)
			report.SpaceReclaimed += reclaimed.Size
		}
	}

	if len(report.Reclaimed) > 0 {
		s.publish(ctx, domain.EventImagePruned, "")
	}
	log.Info().Int(zerowrap.FieldCount, len(report.Reclaimed)).Int64("space_reclaimed", report.SpaceReclaimed).Msg("images pruned")
	return report, nil
}

// pruneOne removes ref if it is still unused. It returns nil when the image
// was kept or is already gone. Only store errors are returned.
func (s *Service) pruneOne(ctx context.Context, ref string) (*domain.Image, error) {
	img, err := s.store.GetImage(ctx, ref)
	if errors.Is(err, domain.ErrImageNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	users, err := s.users(ctx, ref)
	if err != nil || len(users) > 0 {
		return nil, err
	}
	// The runtime may still hold containers the store does not track, such
	// as the builder. Those images are kept rather than failing the prune.
	if err := s.runtime.RemoveImage(ctx, ref, false); err != nil && !errors.Is(err, domain.ErrImageNotFound) {
		log := zerowrap.FromCtx(ctx)
		log.Debug().Err(err).Str("image", ref).Msg("image kept by prune")
		return nil, nil
	}
	if err := s.store.DeleteImage(ctx, ref); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *Service) publish(ctx context.Context, event domain.EventType, ref string) {
	if s.eventBus == nil {
		return
	}
	payload := domain.ResourceEventPayload{Kind: domain.KindImage, EntityID: ref, Action: string(event)}
	if err := s.eventBus.Publish(event, payload); err != nil {
		log := zerowrap.FromCtx(ctx)
		log.Warn().Err(err).Str(zerowrap.FieldEvent, string(event)).Msg("failed to publish event")
	}
}
