// Package builder implements the singleton build engine lifecycle.
package builder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/cenkalti/backoff/v4"

	"github.com/bnema/acms/internal/boundaries/in"
	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/domain"
)

// Ensure Service implements in.BuilderService.
var _ in.BuilderService = (*Service)(nil)

const (
	defaultStartTimeout = 60 * time.Second
	stopGrace           = 10 * time.Second
	builderKey          = "builder"
)

// Config holds configuration needed by the builder service.
type Config struct {
	Name         string
	Image        string
	StartTimeout time.Duration
	// PollInterval is the first readiness poll delay; later polls back off.
	PollInterval time.Duration
}

// Service manages the builder container through the runtime.
type Service struct {
	runtime  out.ContainerRuntime
	store    out.ResourceStore
	eventBus out.EventPublisher
	config   Config
	wg       sync.WaitGroup
}

// NewService creates a new builder service.
func NewService(runtime out.ContainerRuntime, store out.ResourceStore, eventBus out.EventPublisher, config Config) *Service {
	if config.StartTimeout <= 0 {
		config.StartTimeout = defaultStartTimeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 100 * time.Millisecond
	}
	return &Service{
		runtime:  runtime,
		store:    store,
		eventBus: eventBus,
		config:   config,
	}
}

func usecaseCtx(ctx context.Context, action string) context.Context {
	return zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: action,
	})
}

// current returns the stored builder, or a fresh stopped one.
func (s *Service) current(ctx context.Context) (*domain.Builder, error) {
	b, err := s.store.GetBuilder(ctx)
	if errors.Is(err, domain.ErrBuilderNotCreated) {
		return &domain.Builder{
			Name:  s.config.Name,
			Image: s.config.Image,
			State: domain.BuilderStateStopped,
		}, nil
	}
	return b, err
}

// Status always succeeds and reports the current state and last error.
func (s *Service) Status(ctx context.Context) *domain.Builder {
	b, err := s.current(ctx)
	if err != nil {
		return &domain.Builder{Name: s.config.Name, Image: s.config.Image, State: domain.BuilderStateStopped, LastError: err.Error()}
	}
	return b
}

func (s *Service) save(ctx context.Context, b *domain.Builder, state domain.BuilderState) error {
	b.State = state
	b.UpdatedAt = time.Now()
	return s.store.PutBuilder(ctx, b)
}

// Start moves the builder to starting and boots it in the background. It is
// rejected while the builder is starting or running.
func (s *Service) Start(ctx context.Context) (*domain.Builder, error) {
	ctx = usecaseCtx(ctx, "StartBuilder")
	log := zerowrap.FromCtx(ctx)

	unlock := s.store.Lock(domain.KindBuilder, builderKey)
	b, err := s.current(ctx)
	if err == nil {
		err = rejectStart(b.State)
	}
	if err == nil {
		b.LastError = ""
		err = s.save(ctx, b, domain.BuilderStateStarting)
	}
	unlock()
	if err != nil {
		return nil, err
	}

	s.publish(ctx, b)
	log.Info().Str("image", b.Image).Msg("builder starting")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.boot(context.WithoutCancel(ctx))
	}()
	return b, nil
}

func rejectStart(state domain.BuilderState) error {
	switch state {
	case domain.BuilderStateStarting:
		return domain.ErrBuilderStarting
	case domain.BuilderStateRunning:
		return domain.ErrBuilderRunning
	case domain.BuilderStateStopping:
		return fmt.Errorf("%w: builder is stopping", domain.ErrBuilderRunning)
	}
	return nil
}

// boot brings the builder container up and lands on running, or on stopped
// with the failure recorded.
func (s *Service) boot(ctx context.Context) {
	log := zerowrap.FromCtx(ctx)

	bootCtx, cancel := context.WithTimeout(ctx, s.config.StartTimeout)
	defer cancel()

	containerID, bootErr := s.bootContainer(bootCtx)
	if bootErr != nil && errors.Is(bootCtx.Err(), context.DeadlineExceeded) {
		bootErr = fmt.Errorf("%w: builder not ready after %s: %v", domain.ErrTimeout, s.config.StartTimeout, bootErr)
	}

	unlock := s.store.Lock(domain.KindBuilder, builderKey)
	b, err := s.current(ctx)
	if err != nil {
		unlock()
		log.Error().Err(err).Msg("failed to read builder state")
		return
	}
	if containerID != "" {
		b.ContainerID = containerID
	}
	state := domain.BuilderStateRunning
	if bootErr != nil {
		state = domain.BuilderStateStopped
		b.LastError = bootErr.Error()
	}
	err = s.save(ctx, b, state)
	unlock()
	if err != nil {
		log.Error().Err(err).Msg("failed to record builder state")
		return
	}

	if bootErr != nil {
		log.Warn().Err(bootErr).Msg("builder failed to start")
	} else {
		log.Info().Str(zerowrap.FieldEntityID, containerID).Msg("builder running")
	}
	s.publish(ctx, b)
}

func (s *Service) bootContainer(ctx context.Context) (string, error) {
	if _, err := s.runtime.InspectImage(ctx, s.config.Image); err != nil {
		if _, err := s.runtime.PullImage(ctx, s.config.Image); err != nil {
			return "", fmt.Errorf("pull builder image: %w", err)
		}
	}

	b, err := s.current(ctx)
	if err != nil {
		return "", err
	}

	containerID := b.ContainerID
	if containerID != "" {
		if _, err := s.runtime.InspectContainer(ctx, containerID); err != nil {
			containerID = ""
		}
	}
	if containerID == "" {
		rc, err := s.runtime.CreateContainer(ctx, &domain.ContainerConfig{
			Image:  s.config.Image,
			Name:   s.config.Name,
			Labels: map[string]string{domain.LabelBuilder: "true"},
		})
		if err != nil {
			return "", fmt.Errorf("create builder container: %w", err)
		}
		containerID = rc.ID
	}

	if err := s.runtime.StartContainer(ctx, containerID); err != nil {
		return containerID, fmt.Errorf("start builder container: %w", err)
	}
	return containerID, s.waitReady(ctx, containerID)
}

// waitReady polls the runtime until the builder container reports running.
func (s *Service) waitReady(ctx context.Context, containerID string) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.config.PollInterval
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = s.config.StartTimeout

	return backoff.Retry(func() error {
		rc, err := s.runtime.InspectContainer(ctx, containerID)
		if err != nil {
			if errors.Is(err, domain.ErrContainerNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		if !rc.Running {
			return fmt.Errorf("builder container exited with code %d", rc.ExitCode)
		}
		return nil
	}, backoff.WithContext(policy, ctx))
}

// Stop stops a running builder. It is rejected unless the builder is running.
func (s *Service) Stop(ctx context.Context) (*domain.Builder, error) {
	ctx = usecaseCtx(ctx, "StopBuilder")
	log := zerowrap.FromCtx(ctx)

	unlock := s.store.Lock(domain.KindBuilder, builderKey)
	defer unlock()

	b, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	switch b.State {
	case domain.BuilderStateStopped, domain.BuilderStateStopping:
		return nil, domain.ErrBuilderStopped
	case domain.BuilderStateStarting:
		return nil, domain.ErrBuilderStarting
	}

	if err := s.save(ctx, b, domain.BuilderStateStopping); err != nil {
		return nil, err
	}
	s.publish(ctx, b)

	if err := s.stopContainer(ctx, b.ContainerID); err != nil {
		b.LastError = err.Error()
		log.Warn().Err(err).Msg("failed to stop builder container")
	}
	if err := s.save(ctx, b, domain.BuilderStateStopped); err != nil {
		return nil, log.WrapErr(err, "failed to record builder state")
	}
	s.publish(ctx, b)

	log.Info().Msg("builder stopped")
	return b, nil
}

func (s *Service) stopContainer(ctx context.Context, containerID string) error {
	if containerID == "" {
		return nil
	}
	err := s.runtime.StopContainer(ctx, containerID, stopGrace)
	if errors.Is(err, domain.ErrContainerNotRunning) || errors.Is(err, domain.ErrContainerNotFound) {
		return nil
	}
	return err
}

// Delete removes the builder container. A running builder needs force and is
// stopped first.
func (s *Service) Delete(ctx context.Context, force bool) error {
	ctx = usecaseCtx(ctx, "DeleteBuilder")
	log := zerowrap.FromCtx(ctx)

	unlock := s.store.Lock(domain.KindBuilder, builderKey)
	defer unlock()

	b, err := s.store.GetBuilder(ctx)
	if err != nil {
		return err
	}
	if b.ContainerID == "" {
		return domain.ErrBuilderNotCreated
	}
	switch b.State {
	case domain.BuilderStateStarting:
		return domain.ErrBuilderStarting
	case domain.BuilderStateRunning, domain.BuilderStateStopping:
		if !force {
			return fmt.Errorf("%w: use force to delete a running builder", domain.ErrBuilderRunning)
		}
		if err := s.stopContainer(ctx, b.ContainerID); err != nil {
			return log.WrapErr(err, "failed to stop builder container")
		}
	}

	if err := s.runtime.RemoveContainer(ctx, b.ContainerID, true); err != nil && !errors.Is(err, domain.ErrContainerNotFound) {
		return log.WrapErr(err, "failed to remove builder container")
	}

	b.ContainerID = ""
	b.LastError = ""
	if err := s.save(ctx, b, domain.BuilderStateStopped); err != nil {
		return log.WrapErr(err, "failed to record builder state")
	}
	s.publish(ctx, b)

	log.Info().Msg("builder deleted")
	return nil
}

// Reconcile repairs builder state left by a previous process. A builder
// caught mid-transition lands on stopped, and a running builder whose
// container is gone or exited is marked stopped too. Either way LastError
// says why.
func (s *Service) Reconcile(ctx context.Context) error {
	ctx = usecaseCtx(ctx, "ReconcileBuilder")
	log := zerowrap.FromCtx(ctx)

	unlock := s.store.Lock(domain.KindBuilder, builderKey)
	defer unlock()

	b, err := s.store.GetBuilder(ctx)
	if errors.Is(err, domain.ErrBuilderNotCreated) {
		return nil
	}
	if err != nil {
		return log.WrapErr(err, "failed to read builder state")
	}

	switch b.State {
	case domain.BuilderStateStarting, domain.BuilderStateStopping:
		b.LastError = fmt.Sprintf("interrupted while %s", b.State)
	case domain.BuilderStateRunning:
		reason, err := s.lostReason(ctx, b.ContainerID)
		if err != nil {
			return log.WrapErr(err, "failed to inspect builder container")
		}
		if reason == "" {
			return nil
		}
		b.LastError = reason
	default:
		return nil
	}

	if err := s.save(ctx, b, domain.BuilderStateStopped); err != nil {
		return log.WrapErr(err, "failed to record builder state")
	}
	s.publish(ctx, b)
	log.Warn().Str("reason", b.LastError).Msg("builder state reconciled")
	return nil
}

// lostReason explains why a builder recorded as running is not, or returns
// "" when its container is still up.
func (s *Service) lostReason(ctx context.Context, containerID string) (string, error) {
	if containerID == "" {
		return "builder container is missing", nil
	}
	rc, err := s.runtime.InspectContainer(ctx, containerID)
	switch {
	case errors.Is(err, domain.ErrContainerNotFound):
		return "builder container is missing", nil
	case err != nil:
		return "", err
	case !rc.Running:
		return fmt.Sprintf("builder container exited with code %d", rc.ExitCode), nil
	}
	return "", nil
}

// Wait blocks until any background start has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) publish(ctx context.Context, b *domain.Builder) {
	if s.eventBus == nil {
		return
	}
	payload := domain.BuilderEventPayload{State: b.State, LastError: b.LastError}
	if err := s.eventBus.Publish(domain.EventBuilderState, payload); err != nil {
		log := zerowrap.FromCtx(ctx)
		log.Warn().Err(err).Str(zerowrap.FieldEvent, string(domain.EventBuilderState)).Msg("failed to publish event")
	}
}
