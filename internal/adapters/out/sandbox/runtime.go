// Package sandbox implements an in-process container runtime. Containers are
// goroutines with captured output; images, networks and volumes are records.
// It backs the default "sandbox" driver and the test suites.
package sandbox

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/pkg/validation"
)

// Ensure Runtime implements out.ContainerRuntime.
var _ out.ContainerRuntime = (*Runtime)(nil)

// Version is the engine version reported by the sandbox.
const Version = "1.0.0"

// Exit codes reported for signalled processes.
const (
	exitCodeStopped = 0
	exitCodeKilled  = 137
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithPullDelay makes every pull take at least d.
func WithPullDelay(d time.Duration) Option {
	return func(r *Runtime) { r.pullDelay = d }
}

// WithStartDelay makes every container start take at least d.
func WithStartDelay(d time.Duration) Option {
	return func(r *Runtime) { r.startDelay = d }
}

// WithUnavailableImages makes pulls of these references fail as not found.
func WithUnavailableImages(refs ...string) Option {
	return func(r *Runtime) {
		for _, ref := range refs {
			r.unavailable[validation.NormalizeImageReference(ref)] = true
		}
	}
}

// WithDataDir sets the directory volume mount points are reported under.
func WithDataDir(dir string) Option {
	return func(r *Runtime) { r.dataDir = dir }
}

// Runtime is the in-process container runtime.
type Runtime struct {
	mu         sync.Mutex
	containers map[string]*process
	images     map[string]domain.ImageInfo
	networks   map[string]string
	volumes    map[string]string

	unavailable map[string]bool
	pullDelay   time.Duration
	startDelay  time.Duration
	dataDir     string
}

// process is one sandboxed container.
type process struct {
	id      string
	name    string
	image   string
	cmd     []string
	env     []string
	network string

	running  bool
	exitCode int
	cancel   context.CancelFunc
	done     chan struct{}
	logs     *logBuffer
}

// NewRuntime creates an empty sandbox runtime.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		containers:  make(map[string]*process),
		images:      make(map[string]domain.ImageInfo),
		networks:    make(map[string]string),
		volumes:     make(map[string]string),
		unavailable: make(map[string]bool),
		dataDir:     "/var/lib/acms",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the driver name.
func (r *Runtime) Name() string {
	return "sandbox"
}

// Ping always succeeds.
func (r *Runtime) Ping(_ context.Context) error {
	return nil
}

// Version returns the sandbox engine version.
func (r *Runtime) Version(_ context.Context) (string, error) {
	return Version, nil
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CreateContainer registers a container in the created state.
func (r *Runtime) CreateContainer(ctx context.Context, config *domain.ContainerConfig) (*domain.RuntimeContainer, error) {
	log := zerowrap.FromCtx(ctx)

	ref := validation.NormalizeImageReference(config.Image)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[ref]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrImageNotFound, ref)
	}
	if config.Network != "" {
		if _, ok := r.networks[config.Network]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrNetworkNotFound, config.Network)
		}
	}
	for _, m := range config.Mounts {
		if _, ok := r.volumes[m.Volume]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrVolumeNotFound, m.Volume)
		}
	}
	if config.Name != "" {
		for _, p := range r.containers {
			if p.name == config.Name {
				return nil, fmt.Errorf("%w: %s", domain.ErrContainerExists, config.Name)
			}
		}
	}

	p := &process{
		id:      newID(),
		name:    config.Name,
		image:   ref,
		cmd:     append([]string(nil), config.Command...),
		env:     append([]string(nil), config.Env...),
		network: config.Network,
		logs:    newLogBuffer(),
	}
	r.containers[p.id] = p

	log.Debug().
		Str(zerowrap.FieldAdapter, "sandbox").
		Str(zerowrap.FieldEntityID, p.id).
		Str("image", ref).
		Msg("sandbox container created")

	return p.snapshot(), nil
}

func (p *process) snapshot() *domain.RuntimeContainer {
	return &domain.RuntimeContainer{
		ID:       p.id,
		Name:     p.name,
		Image:    p.image,
		Running:  p.running,
		ExitCode: p.exitCode,
	}
}

func (r *Runtime) lookup(containerID string) (*process, error) {
	p, ok := r.containers[containerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrContainerNotFound, containerID)
	}
	return p, nil
}

// StartContainer launches the container's main process.
func (r *Runtime) StartContainer(ctx context.Context, containerID string) error {
	if r.startDelay > 0 {
		select {
		case <-time.After(r.startDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.lookup(containerID)
	if err != nil {
		return err
	}
	if p.running {
		return nil
	}
	if _, ok := r.images[p.image]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrImageNotFound, p.image)
	}

	procCtx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.exitCode = 0
	p.cancel = cancel
	p.done = make(chan struct{})

	go r.runMain(procCtx, p, p.done)
	return nil
}

// runMain is the container's main process. Without a command, or with a
// server image, it idles until signalled. Finite commands exit on their own.
func (r *Runtime) runMain(ctx context.Context, p *process, done chan struct{}) {
	defer close(done)

	for _, line := range bannerFor(p.image) {
		p.logs.WriteLine(line)
	}

	if len(p.cmd) == 0 {
		<-ctx.Done()
		return
	}

	res, err := execute(ctx, p, p.cmd)
	if err != nil {
		// Signalled while running; Stop/Kill record the exit code.
		return
	}
	p.logs.Write(res.Stdout)
	p.logs.Write(res.Stderr)

	r.mu.Lock()
	if p.done == done && p.running {
		p.running = false
		p.exitCode = res.ExitCode
	}
	r.mu.Unlock()
}

func (r *Runtime) signal(containerID string, exitCode int) (chan struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.lookup(containerID)
	if err != nil {
		return nil, err
	}
	if !p.running {
		return nil, fmt.Errorf("%w: %s", domain.ErrContainerNotRunning, containerID)
	}
	p.running = false
	p.exitCode = exitCode
	p.cancel()
	return p.done, nil
}

// StopContainer terminates the main process, waiting at most grace.
func (r *Runtime) StopContainer(ctx context.Context, containerID string, grace time.Duration) error {
	done, err := r.signal(containerID, exitCodeStopped)
	if err != nil {
		return err
	}
	if grace <= 0 {
		return nil
	}
	select {
	case <-done:
	case <-time.After(grace):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// KillContainer terminates the main process immediately.
func (r *Runtime) KillContainer(_ context.Context, containerID string) error {
	_, err := r.signal(containerID, exitCodeKilled)
	return err
}

// RemoveContainer deletes a container. Running containers need force.
func (r *Runtime) RemoveContainer(_ context.Context, containerID string, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.lookup(containerID)
	if err != nil {
		return err
	}
	if p.running {
		if !force {
			return fmt.Errorf("%w: %s", domain.ErrContainerRunning, containerID)
		}
		p.running = false
		p.cancel()
	}
	delete(r.containers, containerID)
	return nil
}

// InspectContainer reports the process state.
func (r *Runtime) InspectContainer(_ context.Context, containerID string) (*domain.RuntimeContainer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.lookup(containerID)
	if err != nil {
		return nil, err
	}
	return p.snapshot(), nil
}

// ContainerLogs returns the last tail lines of output, all lines when tail <= 0.
func (r *Runtime) ContainerLogs(_ context.Context, containerID string, tail int) (io.ReadCloser, error) {
	r.mu.Lock()
	p, err := r.lookup(containerID)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	lines := p.logs.Lines()
	if tail > 0 && len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}

	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return io.NopCloser(&buf), nil
}

// ExecInContainer runs a command from the sandbox command table.
func (r *Runtime) ExecInContainer(ctx context.Context, containerID string, cmd []string) (*domain.ExecResult, error) {
	if len(cmd) == 0 {
		return nil, fmt.Errorf("exec command cannot be empty")
	}

	r.mu.Lock()
	p, err := r.lookup(containerID)
	running := err == nil && p.running
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !running {
		return nil, fmt.Errorf("%w: %s", domain.ErrContainerNotRunning, containerID)
	}

	return execute(ctx, p, cmd)
}

// PullImage records the image. References marked unavailable fail as not found.
func (r *Runtime) PullImage(ctx context.Context, imageRef string) (*domain.ImageInfo, error) {
	ref := validation.NormalizeImageReference(imageRef)

	if r.pullDelay > 0 {
		select {
		case <-time.After(r.pullDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unavailable[ref] {
		return nil, fmt.Errorf("%w: manifest for %s not found", domain.ErrImageNotFound, ref)
	}

	info, ok := r.images[ref]
	if !ok {
		sum := sha256.Sum256([]byte(ref))
		info = domain.ImageInfo{
			Digest:    "sha256:" + hex.EncodeToString(sum[:]),
			Size:      int64(len(ref)) << 20,
			CreatedAt: time.Now().UTC(),
		}
		r.images[ref] = info
	}
	return &info, nil
}

// InspectImage returns a pulled image's metadata.
func (r *Runtime) InspectImage(_ context.Context, imageRef string) (*domain.ImageInfo, error) {
	ref := validation.NormalizeImageReference(imageRef)

	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.images[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrImageNotFound, ref)
	}
	return &info, nil
}

// TagImage adds targetRef as another name for sourceRef.
func (r *Runtime) TagImage(_ context.Context, sourceRef, targetRef string) error {
	src := validation.NormalizeImageReference(sourceRef)
	dst := validation.NormalizeImageReference(targetRef)

	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.images[src]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrImageNotFound, src)
	}
	r.images[dst] = info
	return nil
}

// RemoveImage deletes an image reference. References used by a container need force.
func (r *Runtime) RemoveImage(_ context.Context, imageRef string, force bool) error {
	ref := validation.NormalizeImageReference(imageRef)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[ref]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrImageNotFound, ref)
	}
	inUse := lo.ContainsBy(lo.Values(r.containers), func(p *process) bool {
		return p.image == ref
	})
	if inUse && !force {
		return fmt.Errorf("%w: %s", domain.ErrImageInUse, ref)
	}
	delete(r.images, ref)
	return nil
}

// CreateNetwork registers a network and returns its ID.
func (r *Runtime) CreateNetwork(_ context.Context, config domain.NetworkConfig) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.networks[config.Name]; ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNetworkExists, config.Name)
	}
	id := newID()
	r.networks[config.Name] = id
	return id, nil
}

// RemoveNetwork deletes a network.
func (r *Runtime) RemoveNetwork(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.networks[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNetworkNotFound, name)
	}
	delete(r.networks, name)
	return nil
}

// CreateVolume registers a volume and returns its mount point.
func (r *Runtime) CreateVolume(_ context.Context, config domain.VolumeConfig) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.volumes[config.Name]; ok {
		return "", fmt.Errorf("%w: %s", domain.ErrVolumeExists, config.Name)
	}
	path := filepath.Join(r.dataDir, "volumes", config.Name, "_data")
	r.volumes[config.Name] = path
	return path, nil
}

// RemoveVolume deletes a volume. Attachment checks belong to the caller.
func (r *Runtime) RemoveVolume(_ context.Context, name string, _ bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.volumes[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrVolumeNotFound, name)
	}
	delete(r.volumes, name)
	return nil
}
