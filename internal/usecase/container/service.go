// Package container implements the container lifecycle use case.
package container

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/bnema/acms/internal/boundaries/in"
	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/internal/usecase/batch"
	"github.com/bnema/acms/internal/usecase/resolve"
	"github.com/bnema/acms/pkg/validation"
)

// Ensure Service implements in.ContainerService.
var _ in.ContainerService = (*Service)(nil)

// Config holds configuration needed by the container service.
type Config struct {
	StopGrace      time.Duration
	ExecTimeout    time.Duration
	StartTimeout   time.Duration
	AutoPull       bool
	DefaultNetwork string
	// MonitorInterval is how often running containers are checked for exit.
	MonitorInterval time.Duration
}

// ImagePuller pulls missing images when auto pull is enabled.
type ImagePuller interface {
	Pull(ctx context.Context, ref string) (*domain.Image, error)
}

// Service implements the ContainerService interface.
type Service struct {
	runtime  out.ContainerRuntime
	store    out.ResourceStore
	eventBus out.EventPublisher
	resolver *resolve.Resolver
	batch    *batch.Executor
	puller   ImagePuller
	config   Config
	monitor  *Monitor
}

// NewService creates a new container service.
func NewService(
	runtime out.ContainerRuntime,
	store out.ResourceStore,
	eventBus out.EventPublisher,
	executor *batch.Executor,
	puller ImagePuller,
	config Config,
) *Service {
	if config.DefaultNetwork == "" {
		config.DefaultNetwork = "default"
	}
	s := &Service{
		runtime:  runtime,
		store:    store,
		eventBus: eventBus,
		resolver: resolve.NewResolver(store),
		batch:    executor,
		puller:   puller,
		config:   config,
	}
	s.monitor = newMonitor(s)
	return s
}

func usecaseCtx(ctx context.Context, action string, fields map[string]any) context.Context {
	all := map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: action,
	}
	for k, v := range fields {
		all[k] = v
	}
	return zerowrap.CtxWithFields(ctx, all)
}

// Create registers a container in the created state.
func (s *Service) Create(ctx context.Context, config domain.ContainerConfig) (*domain.Container, error) {
	ctx = usecaseCtx(ctx, "CreateContainer", map[string]any{"image": config.Image, "container_name": config.Name})
	log := zerowrap.FromCtx(ctx)

	c, err := s.create(ctx, config)
	if err != nil {
		return nil, log.WrapErr(err, "failed to create container")
	}

	s.publish(ctx, domain.EventContainerCreated, c.ID)
	log.Info().Str(zerowrap.FieldEntityID, c.ID).Msg("container created")
	return c, nil
}

func (s *Service) create(ctx context.Context, config domain.ContainerConfig) (*domain.Container, error) {
	if err := s.validate(&config); err != nil {
		return nil, err
	}
	if err := s.ensureImage(ctx, config.Image); err != nil {
		return nil, err
	}

	unlock := s.lockDependencies(config)
	defer unlock()

	if _, err := s.store.GetImage(ctx, config.Image); err != nil {
		return nil, err
	}
	if _, err := s.store.GetNetwork(ctx, config.Network); err != nil {
		return nil, err
	}
	for _, m := range config.Mounts {
		if _, err := s.store.GetVolume(ctx, m.Volume); err != nil {
			return nil, err
		}
	}
	if config.Name == "" {
		config.Name = generateName(config.Image)
	}

	rc, err := s.runtime.CreateContainer(ctx, &config)
	if err != nil {
		return nil, err
	}

	c := &domain.Container{
		ID:        rc.ID,
		Name:      config.Name,
		Image:     config.Image,
		State:     domain.ContainerStateCreated,
		Command:   config.Command,
		Env:       config.Env,
		Ports:     config.Ports,
		Mounts:    config.Mounts,
		Network:   config.Network,
		Labels:    config.Labels,
		CreatedAt: time.Now(),
	}
	if err := s.store.PutContainer(ctx, c); err != nil {
		if rmErr := s.runtime.RemoveContainer(ctx, rc.ID, true); rmErr != nil {
			log := zerowrap.FromCtx(ctx)
			log.Warn().Err(rmErr).Str(zerowrap.FieldEntityID, rc.ID).Msg("failed to remove orphaned runtime container")
		}
		return nil, err
	}
	return c, nil
}

// lockDependencies holds the image, network and volume locks of a new
// container until its record is stored, so a concurrent delete of any of them
// sees the container as a user. Locks are taken in kind order, volumes sorted.
func (s *Service) lockDependencies(config domain.ContainerConfig) func() {
	volumes := lo.Uniq(lo.Map(config.Mounts, func(m domain.Mount, _ int) string { return m.Volume }))
	slices.Sort(volumes)

	unlocks := []func(){
		s.store.Lock(domain.KindImage, config.Image),
		s.store.Lock(domain.KindNetwork, config.Network),
	}
	for _, v := range volumes {
		unlocks = append(unlocks, s.store.Lock(domain.KindVolume, v))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

func (s *Service) validate(config *domain.ContainerConfig) error {
	if err := validation.ValidateImageReference(config.Image); err != nil {
		return err
	}
	config.Image = validation.NormalizeImageReference(config.Image)

	if config.Name != "" {
		if err := validation.ValidateResourceName(config.Name); err != nil {
			return domain.NewValidationError("name", config.Name, err.Error())
		}
	}
	if config.Network == "" {
		config.Network = s.config.DefaultNetwork
	}
	for _, m := range config.Mounts {
		if err := validation.ValidateResourceName(m.Volume); err != nil {
			return domain.NewValidationError("mounts", m.Volume, err.Error())
		}
		if err := validation.ValidateMountPath(m.Path); err != nil {
			return domain.NewValidationError("mounts", m.Path, err.Error())
		}
	}
	for _, p := range config.Ports {
		if p.ContainerPort < 1 || p.ContainerPort > 65535 || p.HostPort < 0 || p.HostPort > 65535 {
			return domain.NewValidationError("ports", fmt.Sprintf("%d:%d", p.HostPort, p.ContainerPort), "port out of range")
		}
	}
	return nil
}

func (s *Service) ensureImage(ctx context.Context, ref string) error {
	_, err := s.store.GetImage(ctx, ref)
	if err == nil || !errors.Is(err, domain.ErrImageNotFound) || !s.config.AutoPull || s.puller == nil {
		return err
	}
	log := zerowrap.FromCtx(ctx)
	log.Info().Str("image", ref).Msg("image missing, pulling")
	_, err = s.puller.Pull(ctx, ref)
	return err
}

// generateName derives a readable unique name from the image repository.
func generateName(imageRef string) string {
	name, _ := validation.ParseImageReference(imageRef)
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	return fmt.Sprintf("%s-%s", name, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Run creates and starts a container as one operation. If start fails the
// created container is removed again.
func (s *Service) Run(ctx context.Context, config domain.ContainerConfig) (*domain.Container, error) {
	ctx = usecaseCtx(ctx, "RunContainer", map[string]any{"image": config.Image, "container_name": config.Name})
	log := zerowrap.FromCtx(ctx)

	if s.config.StartTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.StartTimeout)
		defer cancel()
	}

	c, err := s.create(ctx, config)
	if err != nil {
		return nil, log.WrapErr(s.timeoutErr(ctx, err, "run"), "failed to create container")
	}

	unlock := s.store.Lock(domain.KindContainer, c.ID)
	err = s.start(ctx, c)
	if err != nil {
		s.rollback(context.WithoutCancel(ctx), c.ID)
	}
	unlock()
	if err != nil {
		return nil, log.WrapErr(s.timeoutErr(ctx, err, "run"), "failed to start container")
	}

	s.publish(ctx, domain.EventContainerCreated, c.ID)
	s.publish(ctx, domain.EventContainerStarted, c.ID)
	log.Info().Str(zerowrap.FieldEntityID, c.ID).Msg("container running")
	return c, nil
}

func (s *Service) rollback(ctx context.Context, id string) {
	log := zerowrap.FromCtx(ctx)
	if err := s.runtime.RemoveContainer(ctx, id, true); err != nil && !errors.Is(err, domain.ErrContainerNotFound) {
		log.Warn().Err(err).Str(zerowrap.FieldEntityID, id).Msg("failed to remove container after failed start")
	}
	if err := s.store.DeleteContainer(ctx, id); err != nil {
		log.Warn().Err(err).Str(zerowrap.FieldEntityID, id).Msg("failed to forget container after failed start")
	}
}

func (s *Service) timeoutErr(ctx context.Context, err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s did not finish in time: %v", domain.ErrTimeout, op, err)
	}
	return err
}

// start runs a created or stopped container. The caller holds the entity lock.
func (s *Service) start(ctx context.Context, c *domain.Container) error {
	if !c.State.Startable() {
		if c.State == domain.ContainerStateRunning {
			return fmt.Errorf("%w: %s", domain.ErrContainerRunning, c.ID)
		}
		return fmt.Errorf("%w: %s is %s", domain.ErrContainerNotStarted, c.ID, c.State)
	}
	if _, err := s.store.GetImage(ctx, c.Image); err != nil {
		return err
	}
	if err := s.runtime.StartContainer(ctx, c.ID); err != nil {
		return err
	}

	c.State = domain.ContainerStateRunning
	c.StartedAt = time.Now()
	c.FinishedAt = time.Time{}
	c.ExitCode = 0
	return s.store.PutContainer(ctx, c)
}

// Start starts a created or stopped container.
func (s *Service) Start(ctx context.Context, ident string) (*domain.Container, error) {
	ctx = usecaseCtx(ctx, "StartContainer", map[string]any{zerowrap.FieldEntityID: ident})
	log := zerowrap.FromCtx(ctx)

	c, err := s.transition(ctx, ident, func(ctx context.Context, c *domain.Container) (domain.EventType, error) {
		return domain.EventContainerStarted, s.start(ctx, c)
	})
	if err != nil {
		return nil, log.WrapErr(err, "failed to start container")
	}
	return c, nil
}

// transitionFunc applies one state change while the entity lock is held.
type transitionFunc func(ctx context.Context, c *domain.Container) (domain.EventType, error)

// transition resolves ident, takes the entity lock, re-reads the record and
// applies fn. The event is published after the lock is released.
func (s *Service) transition(ctx context.Context, ident string, fn transitionFunc) (*domain.Container, error) {
	id, err := s.resolver.Lookup(ctx, domain.KindContainer, ident)
	if err != nil {
		return nil, err
	}

	unlock := s.store.Lock(domain.KindContainer, id)
	c, err := s.store.GetContainer(ctx, id)
	if err != nil {
		unlock()
		return nil, err
	}
	event, err := fn(ctx, c)
	unlock()
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event, id)
	return c, nil
}

// Stop gracefully stops each target. Stopping all targets only the running
// containers.
func (s *Service) Stop(ctx context.Context, targets domain.TargetSet, grace time.Duration) (domain.BatchResult, error) {
	ctx = usecaseCtx(ctx, "StopContainers", nil)
	if grace <= 0 {
		grace = s.config.StopGrace
	}

	ids, err := s.resolver.ExpandContainers(ctx, targets, isRunning)
	if err != nil {
		return domain.BatchResult{}, zerowrap.FromCtx(ctx).WrapErr(err, "failed to expand targets")
	}

	return s.batch.Run(ctx, "container_stop", ids, func(ctx context.Context, ident string) error {
		_, err := s.transition(ctx, ident, func(ctx context.Context, c *domain.Container) (domain.EventType, error) {
			if c.State != domain.ContainerStateRunning {
				return "", fmt.Errorf("%w: %s is %s", domain.ErrContainerNotRunning, c.ID, c.State)
			}
			if err := s.runtime.StopContainer(ctx, c.ID, grace); err != nil && !errors.Is(err, domain.ErrContainerNotRunning) {
				return "", err
			}
			return domain.EventContainerStopped, s.finish(ctx, c, domain.ContainerStateStopped)
		})
		return err
	}), nil
}

// Kill immediately terminates each target. Killing all targets only the
// running containers.
func (s *Service) Kill(ctx context.Context, targets domain.TargetSet) (domain.BatchResult, error) {
	ctx = usecaseCtx(ctx, "KillContainers", nil)

	ids, err := s.resolver.ExpandContainers(ctx, targets, isRunning)
	if err != nil {
		return domain.BatchResult{}, zerowrap.FromCtx(ctx).WrapErr(err, "failed to expand targets")
	}

	return s.batch.Run(ctx, "container_kill", ids, func(ctx context.Context, ident string) error {
		_, err := s.transition(ctx, ident, func(ctx context.Context, c *domain.Container) (domain.EventType, error) {
			if c.State != domain.ContainerStateRunning {
				return "", fmt.Errorf("%w: %s is %s", domain.ErrContainerNotRunning, c.ID, c.State)
			}
			if err := s.runtime.KillContainer(ctx, c.ID); err != nil && !errors.Is(err, domain.ErrContainerNotRunning) {
				return "", err
			}
			return domain.EventContainerKilled, s.finish(ctx, c, domain.ContainerStateKilled)
		})
		return err
	}), nil
}

// finish records a terminal state and the exit code the runtime reports.
func (s *Service) finish(ctx context.Context, c *domain.Container, state domain.ContainerState) error {
	c.State = state
	c.FinishedAt = time.Now()
	if rc, err := s.runtime.InspectContainer(ctx, c.ID); err == nil {
		c.ExitCode = rc.ExitCode
	} else if state == domain.ContainerStateKilled {
		c.ExitCode = 137
	}
	return s.store.PutContainer(ctx, c)
}

// Delete removes each target. Running containers are refused, never
// stopped on the caller's behalf. Deleting all targets only containers that
// may be deleted.
func (s *Service) Delete(ctx context.Context, targets domain.TargetSet) (domain.BatchResult, error) {
	ctx = usecaseCtx(ctx, "DeleteContainers", nil)

	ids, err := s.resolver.ExpandContainers(ctx, targets, func(c *domain.Container) bool {
		return c.State.Deletable()
	})
	if err != nil {
		return domain.BatchResult{}, zerowrap.FromCtx(ctx).WrapErr(err, "failed to expand targets")
	}

	return s.batch.Run(ctx, "container_delete", ids, func(ctx context.Context, ident string) error {
		_, err := s.transition(ctx, ident, func(ctx context.Context, c *domain.Container) (domain.EventType, error) {
			if !c.State.Deletable() {
				return "", fmt.Errorf("%w: %s", domain.ErrContainerRunning, c.ID)
			}
			if err := s.runtime.RemoveContainer(ctx, c.ID, false); err != nil && !errors.Is(err, domain.ErrContainerNotFound) {
				return "", err
			}
			if err := s.store.DeleteContainer(ctx, c.ID); err != nil {
				return "", err
			}
			c.State = domain.ContainerStateDeleted
			return domain.EventContainerDeleted, nil
		})
		return err
	}), nil
}

func isRunning(c *domain.Container) bool {
	return c.State == domain.ContainerStateRunning
}

// List returns running containers, or every container when all is set.
func (s *Service) List(ctx context.Context, all bool) ([]*domain.Container, error) {
	containers, err := s.store.ListContainers(ctx)
	if err != nil {
		return nil, err
	}
	if all {
		return containers, nil
	}
	return lo.Filter(containers, func(c *domain.Container, _ int) bool { return isRunning(c) }), nil
}

// Inspect returns a container.
func (s *Service) Inspect(ctx context.Context, ident string) (*domain.Container, error) {
	return s.store.FindContainer(ctx, ident)
}

// Logs returns the last tail output lines, all lines when tail <= 0.
func (s *Service) Logs(ctx context.Context, ident string, tail int) ([]string, error) {
	ctx = usecaseCtx(ctx, "ContainerLogs", map[string]any{zerowrap.FieldEntityID: ident})
	log := zerowrap.FromCtx(ctx)

	c, err := s.store.FindContainer(ctx, ident)
	if err != nil {
		return nil, err
	}

	rc, err := s.runtime.ContainerLogs(ctx, c.ID, tail)
	if err != nil {
		return nil, log.WrapErr(err, "failed to read container logs")
	}
	defer rc.Close()

	lines := []string{}
	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, log.WrapErr(err, "failed to read container logs")
	}
	if tail > 0 && len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}
	return lines, nil
}

// Exec runs a command in a running container, bounded by the configured
// exec timeout or the smaller requested one.
func (s *Service) Exec(ctx context.Context, ident string, cmd []string, timeout time.Duration) (*domain.ExecResult, error) {
	ctx = usecaseCtx(ctx, "ExecContainer", map[string]any{zerowrap.FieldEntityID: ident})
	log := zerowrap.FromCtx(ctx)

	if len(cmd) == 0 || strings.TrimSpace(cmd[0]) == "" {
		return nil, domain.NewValidationError("command", cmd, "command cannot be empty")
	}

	c, err := s.store.FindContainer(ctx, ident)
	if err != nil {
		return nil, err
	}
	if c.State != domain.ContainerStateRunning {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrContainerNotRunning, c.ID, c.State)
	}

	limit := s.config.ExecTimeout
	if timeout > 0 && (limit <= 0 || timeout < limit) {
		limit = timeout
	}
	if limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	result, err := s.runtime.ExecInContainer(ctx, c.ID, cmd)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: exec exceeded %s", domain.ErrTimeout, limit)
		}
		return nil, log.WrapErr(err, "failed to exec in container")
	}

	log.Debug().Int("exit_code", result.ExitCode).Msg("exec finished")
	return result, nil
}

// Reconcile marks containers whose runtime process is gone as stopped.
func (s *Service) Reconcile(ctx context.Context) error {
	ctx = usecaseCtx(ctx, "ReconcileContainers", nil)
	log := zerowrap.FromCtx(ctx)

	containers, err := s.store.ListContainers(ctx)
	if err != nil {
		return log.WrapErr(err, "failed to list containers")
	}

	reconciled := 0
	for _, c := range containers {
		if c.State != domain.ContainerStateRunning {
			continue
		}
		if s.monitor.checkContainer(ctx, c.ID) {
			reconciled++
		}
	}

	log.Info().Int(zerowrap.FieldCount, reconciled).Msg("containers reconciled")
	return nil
}

// StartMonitor begins watching running containers for exits.
func (s *Service) StartMonitor(ctx context.Context) {
	s.monitor.Start(ctx)
}

// StopMonitor stops the exit watcher.
func (s *Service) StopMonitor() {
	s.monitor.Stop()
}

func (s *Service) publish(ctx context.Context, event domain.EventType, id string) {
	if s.eventBus == nil {
		return
	}
	payload := domain.ResourceEventPayload{
		Kind:     domain.KindContainer,
		EntityID: id,
		Action:   strings.TrimPrefix(string(event), "container."),
	}
	if err := s.eventBus.Publish(event, payload); err != nil {
		log := zerowrap.FromCtx(ctx)
		log.Warn().Err(err).Str(zerowrap.FieldEvent, string(event)).Msg("failed to publish event")
	}
}
