// Package volumes implements the volume management use case.
package volumes

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

// Ensure Service implements in.VolumeService.
var _ in.VolumeService = (*Service)(nil)

// Config holds configuration needed by the volume service.
type Config struct {
	// Protected volumes can be created but never deleted.
	Protected []string
}

// Service implements volume create, inspect and delete.
type Service struct {
	runtime  out.ContainerRuntime
	store    out.ResourceStore
	eventBus out.EventPublisher
	resolver *resolve.Resolver
	batch    *batch.Executor
	config   Config
}

// NewService creates a new volume service.
func NewService(
	runtime out.ContainerRuntime,
	store out.ResourceStore,
	eventBus out.EventPublisher,
	executor *batch.Executor,
	config Config,
) *Service {
	return &Service{
		runtime:  runtime,
		store:    store,
		eventBus: eventBus,
		resolver: resolve.NewResolver(store),
		batch:    executor,
		config:   config,
	}
}

// List returns all volumes.
func (s *Service) List(ctx context.Context) ([]*domain.Volume, error) {
	return s.store.ListVolumes(ctx)
}

// Inspect returns a volume by name.
func (s *Service) Inspect(ctx context.Context, name string) (*domain.Volume, error) {
	return s.store.GetVolume(ctx, name)
}

// Create creates a volume.
func (s *Service) Create(ctx context.Context, config domain.VolumeConfig) (*domain.Volume, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "CreateVolume",
		"volume":              config.Name,
	})
	log := zerowrap.FromCtx(ctx)

	if err := validation.ValidateResourceName(config.Name); err != nil {
		return nil, domain.NewValidationError("name", config.Name, err.Error())
	}
	if config.Size < 0 {
		return nil, domain.NewValidationError("size", config.Size, "size cannot be negative")
	}

	unlock := s.store.Lock(domain.KindVolume, config.Name)
	v, err := s.create(ctx, config)
	unlock()
	if err != nil {
		return nil, log.WrapErr(err, "failed to create volume")
	}

	s.publish(ctx, domain.EventVolumeCreated, v.Name)
	log.Info().Str("path", v.Path).Bool("protected", v.Protected).Msg("volume created")
	return v, nil
}

func (s *Service) create(ctx context.Context, config domain.VolumeConfig) (*domain.Volume, error) {
	if _, err := s.store.GetVolume(ctx, config.Name); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrVolumeExists, config.Name)
	}

	path, err := s.runtime.CreateVolume(ctx, config)
	if err != nil {
		return nil, err
	}

	v := &domain.Volume{
		Name:      config.Name,
		Size:      config.Size,
		Path:      path,
		Labels:    config.Labels,
		Protected: lo.Contains(s.config.Protected, config.Name),
		CreatedAt: time.Now(),
	}
	if err := s.store.PutVolume(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes each target. Protected volumes and volumes mounted by a
// container are refused.
func (s *Service) Delete(ctx context.Context, targets domain.TargetSet) (domain.BatchResult, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "DeleteVolumes",
	})

	names, err := s.resolver.Expand(ctx, domain.KindVolume, targets)
	if err != nil {
		return domain.BatchResult{}, zerowrap.FromCtx(ctx).WrapErr(err, "failed to expand targets")
	}

	return s.batch.Run(ctx, "volume_delete", names, func(ctx context.Context, name string) error {
		unlock := s.store.Lock(domain.KindVolume, name)
		err := s.remove(ctx, name)
		unlock()
		if err != nil {
			return err
		}
		s.publish(ctx, domain.EventVolumeDeleted, name)
		return nil
	}), nil
}

func (s *Service) remove(ctx context.Context, name string) error {
	v, err := s.store.GetVolume(ctx, name)
	if err != nil {
		return err
	}
	if v.Protected {
		return fmt.Errorf("%w: volume %s", domain.ErrProtectedResource, name)
	}

	containers, err := s.store.ListContainers(ctx)
	if err != nil {
		return err
	}
	attached := lo.FilterMap(containers, func(c *domain.Container, _ int) (string, bool) {
		return c.Name, c.UsesVolume(name)
	})
	if len(attached) > 0 {
		return fmt.Errorf("%w: %s is mounted by %v", domain.ErrVolumeInUse, name, attached)
	}

	if err := s.runtime.RemoveVolume(ctx, name, false); err != nil && !errors.Is(err, domain.ErrVolumeNotFound) {
		return err
	}
	return s.store.DeleteVolume(ctx, name)
}

func (s *Service) publish(ctx context.Context, event domain.EventType, name string) {
	if s.eventBus == nil {
		return
	}
	payload := domain.ResourceEventPayload{Kind: domain.KindVolume, EntityID: name, Action: string(event)}
	if err := s.eventBus.Publish(event, payload); err != nil {
		log := zerowrap.FromCtx(ctx)
		log.Warn().Err(err).Str(zerowrap.FieldEvent, string(event)).Msg("failed to publish event")
	}
}
