// Package docker drives a Docker-compatible engine as the ACMS runtime.
package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/zerowrap"
	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/domain"
)

// Ensure Runtime implements out.ContainerRuntime.
var _ out.ContainerRuntime = (*Runtime)(nil)

// imageCacheSize bounds the image metadata cache.
const imageCacheSize = 256

// Runtime is the out.ContainerRuntime backed by the Docker Engine API.
type Runtime struct {
	client *client.Client
	images *lru.Cache[string, domain.ImageInfo]
}

// NewRuntime creates a new Docker runtime instance from the environment
// (DOCKER_HOST and friends).
func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return NewRuntimeWithClient(cli), nil
}

// NewRuntimeWithClient wraps an existing client, e.g. one pointed at a test server.
func NewRuntimeWithClient(cli *client.Client) *Runtime {
	cache, _ := lru.New[string, domain.ImageInfo](imageCacheSize)
	return &Runtime{
		client: cli,
		images: cache,
	}
}

// Name returns the driver name.
func (r *Runtime) Name() string {
	return "docker"
}

func adapterCtx(ctx context.Context, action string, fields map[string]any) context.Context {
	all := map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  action,
	}
	for k, v := range fields {
		all[k] = v
	}
	return zerowrap.CtxWithFields(ctx, all)
}

// classify maps engine errors onto domain sentinels so callers can report kinds.
func classify(err error, notFound, conflict error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return err
	case cerrdefs.IsNotFound(err) && notFound != nil:
		return fmt.Errorf("%w: %v", notFound, err)
	case (cerrdefs.IsConflict(err) || cerrdefs.IsAlreadyExists(err)) && conflict != nil:
		return fmt.Errorf("%w: %v", conflict, err)
	}
	return err
}

// Ping fails when the engine socket does not answer.
func (r *Runtime) Ping(ctx context.Context) error {
	ctx = adapterCtx(ctx, "Ping", nil)
	log := zerowrap.FromCtx(ctx)

	if _, err := r.client.Ping(ctx); err != nil {
		return log.WrapErr(err, "Docker ping failed")
	}
	return nil
}

// Version returns the engine version, checked against runtime.min_version at boot.
func (r *Runtime) Version(ctx context.Context) (string, error) {
	ctx = adapterCtx(ctx, "Version", nil)
	log := zerowrap.FromCtx(ctx)

	version, err := r.client.ServerVersion(ctx)
	if err != nil {
		return "", log.WrapErr(err, "failed to get Docker version")
	}
	return version.Version, nil
}

// CreateContainer creates the engine container backing an ACMS record.
func (r *Runtime) CreateContainer(ctx context.Context, config *domain.ContainerConfig) (*domain.RuntimeContainer, error) {
	ctx = adapterCtx(ctx, "CreateContainer", map[string]any{
		"container_name": config.Name,
		"image":          config.Image,
	})
	log := zerowrap.FromCtx(ctx)

	exposedPorts := make(nat.PortSet)
	portBindings := make(nat.PortMap)
	for _, p := range config.Ports {
		proto := p.Protocol
		if proto == "" {
			proto = "tcp"
		}
		containerPort := nat.Port(fmt.Sprintf("%d/%s", p.ContainerPort, proto))
		exposedPorts[containerPort] = struct{}{}

		hostPort := ""
		if p.HostPort > 0 {
			hostPort = strconv.Itoa(p.HostPort)
		}
		portBindings[containerPort] = []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: hostPort}}
	}

	binds := make([]string, 0, len(config.Mounts))
	for _, m := range config.Mounts {
		binds = append(binds, fmt.Sprintf("%s:%s", m.Volume, m.Path))
		log.Debug().Str("volume", m.Volume).Str("mount_path", m.Path).Msg("adding volume mount")
	}

	labels := map[string]string{domain.LabelManaged: "true"}
	for k, v := range config.Labels {
		labels[k] = v
	}
	if config.Name != "" {
		labels[domain.LabelName] = config.Name
	}

	containerConfig := &container.Config{
		Image:        config.Image,
		Env:          config.Env,
		ExposedPorts: exposedPorts,
		Cmd:          config.Command,
		Labels:       labels,
	}
	hostConfig := &container.HostConfig{
		PortBindings: portBindings,
		Binds:        binds,
	}
	if config.Network != "" {
		hostConfig.NetworkMode = container.NetworkMode(config.Network)
	}

	resp, err := r.client.ContainerCreate(ctx, containerConfig, hostConfig, &network.NetworkingConfig{}, nil, config.Name)
	if err != nil {
		return nil, log.WrapErr(classify(err, domain.ErrImageNotFound, domain.ErrContainerExists), "failed to create container")
	}

	log.Info().Str(zerowrap.FieldEntityID, resp.ID).Msg("container created")
	return r.InspectContainer(ctx, resp.ID)
}

// StartContainer starts a created or stopped container.
func (r *Runtime) StartContainer(ctx context.Context, containerID string) error {
	ctx = adapterCtx(ctx, "StartContainer", map[string]any{zerowrap.FieldEntityID: containerID})
	log := zerowrap.FromCtx(ctx)

	if err := r.client.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return log.WrapErr(classify(err, domain.ErrContainerNotFound, nil), "failed to start container")
	}

	log.Info().Msg("container started")
	return nil
}

// StopContainer sends SIGTERM and escalates to SIGKILL after grace.
func (r *Runtime) StopContainer(ctx context.Context, containerID string, grace time.Duration) error {
	ctx = adapterCtx(ctx, "StopContainer", map[string]any{
		zerowrap.FieldEntityID: containerID,
		"grace":                grace.String(),
	})
	log := zerowrap.FromCtx(ctx)

	timeout := int(grace.Seconds())
	if err := r.client.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		return log.WrapErr(classify(err, domain.ErrContainerNotFound, nil), "failed to stop container")
	}

	log.Info().Msg("container stopped")
	return nil
}

// KillContainer sends SIGKILL.
func (r *Runtime) KillContainer(ctx context.Context, containerID string) error {
	ctx = adapterCtx(ctx, "KillContainer", map[string]any{zerowrap.FieldEntityID: containerID})
	log := zerowrap.FromCtx(ctx)

	if err := r.client.ContainerKill(ctx, containerID, "SIGKILL"); err != nil {
		return log.WrapErr(classify(err, domain.ErrContainerNotFound, domain.ErrContainerNotRunning), "failed to kill container")
	}

	log.Info().Msg("container killed")
	return nil
}

// RemoveContainer deletes the engine container, killing it first when force is set.
func (r *Runtime) RemoveContainer(ctx context.Context, containerID string, force bool) error {
	ctx = adapterCtx(ctx, "RemoveContainer", map[string]any{
		zerowrap.FieldEntityID: containerID,
		"force":                force,
	})
	log := zerowrap.FromCtx(ctx)

	if err := r.client.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: force}); err != nil {
		return log.WrapErr(classify(err, domain.ErrContainerNotFound, domain.ErrContainerRunning), "failed to remove container")
	}

	log.Info().Msg("container removed")
	return nil
}

// InspectContainer reads live state and exit code from the engine.
func (r *Runtime) InspectContainer(ctx context.Context, containerID string) (*domain.RuntimeContainer, error) {
	ctx = adapterCtx(ctx, "InspectContainer", map[string]any{zerowrap.FieldEntityID: containerID})
	log := zerowrap.FromCtx(ctx)

	resp, err := r.client.ContainerInspect(ctx, containerID)
	if err != nil {
		return nil, log.WrapErr(classify(err, domain.ErrContainerNotFound, nil), "failed to inspect container")
	}

	rc := &domain.RuntimeContainer{
		ID:   resp.ID,
		Name: strings.TrimPrefix(resp.Name, "/"),
	}
	if resp.Config != nil {
		rc.Image = resp.Config.Image
	}
	if resp.State != nil {
		rc.Running = resp.State.Running
		rc.ExitCode = resp.State.ExitCode
	}
	return rc, nil
}

// ContainerLogs returns demultiplexed stdout and stderr, the last tail lines
// when tail > 0.
func (r *Runtime) ContainerLogs(ctx context.Context, containerID string, tail int) (io.ReadCloser, error) {
	ctx = adapterCtx(ctx, "ContainerLogs", map[string]any{zerowrap.FieldEntityID: containerID})
	log := zerowrap.FromCtx(ctx)

	opts := container.LogsOptions{ShowStdout: true, ShowStderr: true, Tail: "all"}
	if tail > 0 {
		opts.Tail = strconv.Itoa(tail)
	}

	raw, err := r.client.ContainerLogs(ctx, containerID, opts)
	if err != nil {
		return nil, log.WrapErr(classify(err, domain.ErrContainerNotFound, nil), "failed to get container logs")
	}

	pr, pw := io.Pipe()
	go func() {
		defer raw.Close()
		_, err := stdcopy.StdCopy(pw, pw, raw)
		pw.CloseWithError(err)
	}()
	return pr, nil
}

// ExecInContainer runs cmd inside a running container and collects its output.
func (r *Runtime) ExecInContainer(ctx context.Context, containerID string, cmd []string) (*domain.ExecResult, error) {
	if len(cmd) == 0 {
		return nil, fmt.Errorf("exec command cannot be empty")
	}

	ctx = adapterCtx(ctx, "ExecInContainer", map[string]any{
		zerowrap.FieldEntityID: containerID,
		"cmd":                  strings.Join(cmd, " "),
	})
	log := zerowrap.FromCtx(ctx)

	created, err := r.client.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, log.WrapErr(classify(err, domain.ErrContainerNotFound, domain.ErrContainerNotRunning), "failed to create exec")
	}

	attach, err := r.client.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, log.WrapErr(err, "failed to attach to exec")
	}
	defer attach.Close()

	type output struct {
		stdout, stderr []byte
		err            error
	}
	done := make(chan output, 1)
	go func() {
		stdout, stderr, err := parseExecOutput(attach.Reader)
		done <- output{stdout, stderr, err}
	}()

	var res output
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, log.WrapErr(res.err, "failed to read exec output")
	}

	inspect, err := r.client.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return nil, log.WrapErr(err, "failed to inspect exec")
	}

	return &domain.ExecResult{
		ExitCode: inspect.ExitCode,
		Stdout:   res.stdout,
		Stderr:   res.stderr,
	}, nil
}

// parseExecOutput splits a multiplexed Docker stream into stdout and stderr.
func parseExecOutput(r io.Reader) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, r); err != nil {
		return nil, nil, err
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

// PullImage pulls an image and returns its metadata.
func (r *Runtime) PullImage(ctx context.Context, imageRef string) (*domain.ImageInfo, error) {
	ctx = adapterCtx(ctx, "PullImage", map[string]any{"image": imageRef})
	log := zerowrap.FromCtx(ctx)

	log.Info().Msg("pulling image")

	reader, err := r.client.ImagePull(ctx, imageRef, image.PullOptions{})
	if err != nil {
		return nil, log.WrapErr(classify(err, domain.ErrImageNotFound, nil), "failed to pull image")
	}
	defer reader.Close()

	// The pull only finishes once the progress stream is drained.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return nil, log.WrapErr(err, "failed to read pull response")
	}

	r.images.Remove(imageRef)
	log.Info().Msg("image pulled successfully")
	return r.InspectImage(ctx, imageRef)
}

// InspectImage returns image metadata, served from cache when possible.
func (r *Runtime) InspectImage(ctx context.Context, imageRef string) (*domain.ImageInfo, error) {
	if info, ok := r.images.Get(imageRef); ok {
		return &info, nil
	}

	ctx = adapterCtx(ctx, "InspectImage", map[string]any{"image": imageRef})
	log := zerowrap.FromCtx(ctx)

	resp, err := r.client.ImageInspect(ctx, imageRef)
	if err != nil {
		return nil, log.WrapErr(classify(err, domain.ErrImageNotFound, nil), "failed to inspect image")
	}

	info := domain.ImageInfo{
		Digest: resp.ID,
		Size:   resp.Size,
	}
	if created, err := time.Parse(time.RFC3339Nano, resp.Created); err == nil {
		info.CreatedAt = created
	}
	r.images.Add(imageRef, info)
	return &info, nil
}

// TagImage tags sourceRef as targetRef.
func (r *Runtime) TagImage(ctx context.Context, sourceRef, targetRef string) error {
	ctx = adapterCtx(ctx, "TagImage", map[string]any{"source": sourceRef, "target": targetRef})
	log := zerowrap.FromCtx(ctx)

	if err := r.client.ImageTag(ctx, sourceRef, targetRef); err != nil {
		return log.WrapErr(classify(err, domain.ErrImageNotFound, nil), "failed to tag image")
	}
	r.images.Remove(targetRef)

	log.Info().Msg("image tagged")
	return nil
}

// RemoveImage untags and deletes an image and drops it from the inspect cache.
func (r *Runtime) RemoveImage(ctx context.Context, imageRef string, force bool) error {
	ctx = adapterCtx(ctx, "RemoveImage", map[string]any{"image": imageRef, "force": force})
	log := zerowrap.FromCtx(ctx)

	if _, err := r.client.ImageRemove(ctx, imageRef, image.RemoveOptions{Force: force}); err != nil {
		return log.WrapErr(classify(err, domain.ErrImageNotFound, domain.ErrImageInUse), "failed to remove image")
	}
	r.images.Remove(imageRef)

	log.Info().Msg("image removed")
	return nil
}

// CreateNetwork creates a network and returns its engine ID.
func (r *Runtime) CreateNetwork(ctx context.Context, config domain.NetworkConfig) (string, error) {
	ctx = adapterCtx(ctx, "CreateNetwork", map[string]any{"network": config.Name})
	log := zerowrap.FromCtx(ctx)

	driver := config.Driver
	if driver == "" {
		driver = "bridge"
	}

	labels := map[string]string{domain.LabelManaged: "true"}
	for k, v := range config.Labels {
		labels[k] = v
	}

	opts := network.CreateOptions{
		Driver: driver,
		Labels: labels,
	}
	if config.Subnet != "" {
		opts.IPAM = &network.IPAM{Config: []network.IPAMConfig{{Subnet: config.Subnet}}}
	}

	resp, err := r.client.NetworkCreate(ctx, config.Name, opts)
	if err != nil {
		// Predefined networks (bridge, host, none) are reported as forbidden.
		if cerrdefs.IsPermissionDenied(err) || cerrdefs.IsConflict(err) || cerrdefs.IsAlreadyExists(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrNetworkExists, config.Name)
		}
		return "", log.WrapErr(err, "failed to create network")
	}

	log.Info().Str("driver", driver).Msg("network created")
	return resp.ID, nil
}

// RemoveNetwork removes a network.
func (r *Runtime) RemoveNetwork(ctx context.Context, name string) error {
	ctx = adapterCtx(ctx, "RemoveNetwork", map[string]any{"network": name})
	log := zerowrap.FromCtx(ctx)

	if err := r.client.NetworkRemove(ctx, name); err != nil {
		return log.WrapErr(classify(err, domain.ErrNetworkNotFound, domain.ErrNetworkInUse), "failed to remove network")
	}

	log.Info().Msg("network removed")
	return nil
}

// CreateVolume creates a volume and returns its mount point.
func (r *Runtime) CreateVolume(ctx context.Context, config domain.VolumeConfig) (string, error) {
	ctx = adapterCtx(ctx, "CreateVolume", map[string]any{"volume": config.Name})
	log := zerowrap.FromCtx(ctx)

	labels := map[string]string{domain.LabelManaged: "true"}
	for k, v := range config.Labels {
		labels[k] = v
	}

	opts := volume.CreateOptions{
		Name:   config.Name,
		Labels: labels,
	}
	if config.Size > 0 {
		opts.DriverOpts = map[string]string{"size": strconv.FormatInt(config.Size, 10)}
	}

	vol, err := r.client.VolumeCreate(ctx, opts)
	if err != nil {
		return "", log.WrapErr(classify(err, nil, domain.ErrVolumeExists), "failed to create volume")
	}

	log.Info().Msg("volume created")
	return vol.Mountpoint, nil
}

// RemoveVolume removes a volume.
func (r *Runtime) RemoveVolume(ctx context.Context, name string, force bool) error {
	ctx = adapterCtx(ctx, "RemoveVolume", map[string]any{"volume": name, "force": force})
	log := zerowrap.FromCtx(ctx)

	if err := r.client.VolumeRemove(ctx, name, force); err != nil {
		return log.WrapErr(classify(err, domain.ErrVolumeNotFound, domain.ErrVolumeInUse), "failed to remove volume")
	}

	log.Info().Msg("volume removed")
	return nil
}
