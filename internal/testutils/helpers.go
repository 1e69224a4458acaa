// Package testutils holds fixtures shared by use case and adapter tests.
package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/adapters/out/sandbox"
	"github.com/bnema/acms/internal/adapters/out/store"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/pkg/validation"
)

// TestContext creates a logger-carrying test context with timeout.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return zerowrap.WithCtx(ctx, zerowrap.Default())
}

// Fixture wires an in-memory store to a sandbox runtime.
type Fixture struct {
	t       *testing.T
	Ctx     context.Context
	Store   *store.Store
	Runtime *sandbox.Runtime
}

// NewFixture creates a fixture with the "default" network in place.
func NewFixture(t *testing.T, opts ...sandbox.Option) *Fixture {
	t.Helper()
	f := &Fixture{
		t:       t,
		Ctx:     TestContext(t),
		Store:   store.New(nil),
		Runtime: sandbox.NewRuntime(append([]sandbox.Option{sandbox.WithDataDir(t.TempDir())}, opts...)...),
	}
	f.Network("default", true)
	return f
}

// Image pulls ref into the runtime and records it in the store.
func (f *Fixture) Image(ref string) *domain.Image {
	f.t.Helper()
	ref = validation.NormalizeImageReference(ref)
	info, err := f.Runtime.PullImage(f.Ctx, ref)
	require.NoError(f.t, err)

	img := &domain.Image{
		Reference: ref,
		Digest:    info.Digest,
		Size:      info.Size,
		CreatedAt: info.CreatedAt,
		PulledAt:  time.Now(),
	}
	require.NoError(f.t, f.Store.PutImage(f.Ctx, img))
	return img
}

// Network creates a network in the runtime and the store.
func (f *Fixture) Network(name string, protected bool) *domain.Network {
	f.t.Helper()
	id, err := f.Runtime.CreateNetwork(f.Ctx, domain.NetworkConfig{Name: name})
	require.NoError(f.t, err)

	n := &domain.Network{Name: name, ID: id, Driver: "bridge", Protected: protected, CreatedAt: time.Now()}
	require.NoError(f.t, f.Store.PutNetwork(f.Ctx, n))
	return n
}

// Volume creates a volume in the runtime and the store.
func (f *Fixture) Volume(name string, protected bool) *domain.Volume {
	f.t.Helper()
	path, err := f.Runtime.CreateVolume(f.Ctx, domain.VolumeConfig{Name: name})
	require.NoError(f.t, err)

	v := &domain.Volume{Name: name, Path: path, Protected: protected, CreatedAt: time.Now()}
	require.NoError(f.t, f.Store.PutVolume(f.Ctx, v))
	return v
}

// Eventually retries a condition until it's true or times out.
func Eventually(t *testing.T, condition func() bool, message string) {
	t.Helper()
	require.Eventually(t, condition, 5*time.Second, 10*time.Millisecond, message)
}
