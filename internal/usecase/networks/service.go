// Package networks implements the network management use case.
package networks

import (
	"context"
	"errors"
	"fmt"
	"net"
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

// Ensure Service implements in.NetworkService.
var _ in.NetworkService = (*Service)(nil)

// Config holds configuration needed by the network service.
type Config struct {
	// Defaults are created at boot and can never be deleted.
	Defaults []string
}

// Service implements network create, inspect and delete.
type Service struct {
	runtime  out.ContainerRuntime
	store    out.ResourceStore
	eventBus out.EventPublisher
	resolver *resolve.Resolver
	batch    *batch.Executor
	config   Config
}

// NewService creates a new network service.
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

func (s *Service) isDefault(name string) bool {
	return lo.Contains(s.config.Defaults, name)
}

// List returns all networks.
func (s *Service) List(ctx context.Context) ([]*domain.Network, error) {
	return s.store.ListNetworks(ctx)
}

// Inspect returns a network by name.
func (s *Service) Inspect(ctx context.Context, name string) (*domain.Network, error) {
	return s.store.GetNetwork(ctx, name)
}

// Create creates a network.
func (s *Service) Create(ctx context.Context, config domain.NetworkConfig) (*domain.Network, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "CreateNetwork",
		"network":             config.Name,
	})
	log := zerowrap.FromCtx(ctx)

	if err := validation.ValidateResourceName(config.Name); err != nil {
		return nil, domain.NewValidationError("name", config.Name, err.Error())
	}
	if config.Subnet != "" {
		if _, _, err := net.ParseCIDR(config.Subnet); err != nil {
			return nil, domain.NewValidationError("subnet", config.Subnet, "must be a CIDR such as 10.0.0.0/24")
		}
	}
	if config.Driver == "" {
		config.Driver = "bridge"
	}

	unlock := s.store.Lock(domain.KindNetwork, config.Name)
	n, err := s.create(ctx, config, s.isDefault(config.Name))
	unlock()
	if err != nil {
		return nil, log.WrapErr(err, "failed to create network")
	}

	s.publish(ctx, domain.EventNetworkCreated, n.Name)
	log.Info().Str("driver", n.Driver).Msg("network created")
	return n, nil
}

// create records a new network. The caller holds the network lock.
func (s *Service) create(ctx context.Context, config domain.NetworkConfig, protected bool) (*domain.Network, error) {
	if _, err := s.store.GetNetwork(ctx, config.Name); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNetworkExists, config.Name)
	}

	id, err := s.runtime.CreateNetwork(ctx, config)
	if err != nil {
		// Engine-provided networks such as docker's bridge already exist.
		if !protected || !errors.Is(err, domain.ErrNetworkExists) {
			return nil, err
		}
		id = config.Name
	}

	n := &domain.Network{
		Name:      config.Name,
		ID:        id,
		Driver:    config.Driver,
		Subnet:    config.Subnet,
		Labels:    config.Labels,
		Protected: protected,
		CreatedAt: time.Now(),
	}
	if err := s.store.PutNetwork(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// EnsureDefaults creates the protected default networks if missing and marks
// existing ones protected.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "EnsureDefaultNetworks",
	})
	log := zerowrap.FromCtx(ctx)

	for _, name := range s.config.Defaults {
		unlock := s.store.Lock(domain.KindNetwork, name)
		err := s.ensureDefault(ctx, name)
		unlock()
		if err != nil {
			return log.WrapErrWithFields(err, "failed to ensure default network", map[string]any{"network": name})
		}
	}

	log.Info().Strs("networks", s.config.Defaults).Msg("default networks ready")
	return nil
}

func (s *Service) ensureDefault(ctx context.Context, name string) error {
	existing, err := s.store.GetNetwork(ctx, name)
	if err == nil {
		if existing.Protected {
			return nil
		}
		existing.Protected = true
		return s.store.PutNetwork(ctx, existing)
	}
	_, err = s.create(ctx, domain.NetworkConfig{Name: name, Driver: "bridge"}, true)
	return err
}

// Delete removes each target. Protected networks and networks with attached
// containers are refused.
func (s *Service) Delete(ctx context.Context, targets domain.TargetSet) (domain.BatchResult, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "DeleteNetworks",
	})

	names, err := s.resolver.Expand(ctx, domain.KindNetwork, targets)
	if err != nil {
		return domain.BatchResult{}, zerowrap.FromCtx(ctx).WrapErr(err, "failed to expand targets")
	}

	return s.batch.Run(ctx, "network_delete", names, func(ctx context.Context, name string) error {
		unlock := s.store.Lock(domain.KindNetwork, name)
		err := s.remove(ctx, name)
		unlock()
		if err != nil {
			return err
		}
		s.publish(ctx, domain.EventNetworkDeleted, name)
		return nil
	}), nil
}

func (s *Service) remove(ctx context.Context, name string) error {
	n, err := s.store.GetNetwork(ctx, name)
	if err != nil {
		return err
	}
	if n.Protected || s.isDefault(name) {
		return fmt.Errorf("%w: network %s is a system default", domain.ErrProtectedResource, name)
	}

	containers, err := s.store.ListContainers(ctx)
	if err != nil {
		return err
	}
	attached := lo.FilterMap(containers, func(c *domain.Container, _ int) (string, bool) {
		return c.Name, c.Network == name
	})
	if len(attached) > 0 {
		return fmt.Errorf("%w: %s has %v", domain.ErrNetworkInUse, name, attached)
	}

	if err := s.runtime.RemoveNetwork(ctx, name); err != nil && !errors.Is(err, domain.ErrNetworkNotFound) {
		return err
	}
	return s.store.DeleteNetwork(ctx, name)
}

func (s *Service) publish(ctx context.Context, event domain.EventType, name string) {
	if s.eventBus == nil {
		return
	}
	payload := domain.ResourceEventPayload{Kind: domain.KindNetwork, EntityID: name, Action: string(event)}
	if err := s.eventBus.Publish(event, payload); err != nil {
		log := zerowrap.FromCtx(ctx)
		log.Warn().Err(err).Str(zerowrap.FieldEvent, string(event)).Msg("failed to publish event")
	}
}
