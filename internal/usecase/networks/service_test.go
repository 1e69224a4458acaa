package networks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/adapters/out/sandbox"
	"github.com/bnema/acms/internal/adapters/out/store"
	"github.com/bnema/acms/internal/boundaries/out/mocks"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/internal/testutils"
	"github.com/bnema/acms/internal/usecase/batch"
)

func newService(t *testing.T) (*Service, *store.Store, *sandbox.Runtime) {
	t.Helper()
	events := mocks.NewMockEventPublisher(t)
	events.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Maybe()

	s := store.New(nil)
	rt := sandbox.NewRuntime()
	svc := NewService(rt, s, events, batch.NewExecutor(4), Config{Defaults: []string{"default", "bridge"}})
	require.NoError(t, svc.EnsureDefaults(testutils.TestContext(t)))
	return svc, s, rt
}

func TestService_EnsureDefaults(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := testutils.TestContext(t)

	networks, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, networks, 2)
	for _, n := range networks {
		assert.True(t, n.Protected, n.Name)
	}

	require.NoError(t, svc.EnsureDefaults(ctx), "second boot is a no-op")
}

func TestService_Create(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := testutils.TestContext(t)

	n, err := svc.Create(ctx, domain.NetworkConfig{Name: "backend", Subnet: "10.1.0.0/24", Labels: map[string]string{"team": "api"}})
	require.NoError(t, err)
	assert.Equal(t, "bridge", n.Driver)
	assert.False(t, n.Protected)

	got, err := svc.Inspect(ctx, "backend")
	require.NoError(t, err)
	assert.Equal(t, "10.1.0.0/24", got.Subnet)
	assert.Equal(t, "api", got.Labels["team"])

	_, err = svc.Create(ctx, domain.NetworkConfig{Name: "backend"})
	assert.ErrorIs(t, err, domain.ErrNetworkExists)

	_, err = svc.Create(ctx, domain.NetworkConfig{Name: "bad name"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = svc.Create(ctx, domain.NetworkConfig{Name: "other", Subnet: "10.1.0.0"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestService_Delete_ProtectedAlwaysRefused(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := testutils.TestContext(t)
	_, err := svc.Create(ctx, domain.NetworkConfig{Name: "backend"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		targets domain.TargetSet
	}{
		{name: "bare string", targets: domain.Single("bridge")},
		{name: "singleton array", targets: domain.Many("bridge")},
		{name: "inside a larger batch", targets: domain.Many("default", "bridge")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Delete(ctx, tt.targets)
			require.NoError(t, err)
			for _, entry := range result.Entries {
				assert.Equal(t, domain.OutcomePreconditionFailed, entry.Outcome, entry.Target)
			}
		})
	}

	_, err = svc.Inspect(ctx, "bridge")
	assert.NoError(t, err)
}

func TestService_Delete_All_SkipsProtected(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := testutils.TestContext(t)
	for _, name := range []string{"a", "b"} {
		_, err := svc.Create(ctx, domain.NetworkConfig{Name: name})
		require.NoError(t, err)
	}

	result, err := svc.Delete(ctx, domain.All())

	require.NoError(t, err)
	assert.Len(t, result.Entries, 2)
	assert.Equal(t, 2, result.Succeeded())
	networks, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, networks, 2)
}

func TestService_Delete_InUse(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := testutils.TestContext(t)
	_, err := svc.Create(ctx, domain.NetworkConfig{Name: "backend"})
	require.NoError(t, err)
	require.NoError(t, s.PutContainer(ctx, &domain.Container{ID: "c1", Name: "api", Network: "backend", State: domain.ContainerStateStopped}))

	result, err := svc.Delete(ctx, domain.Many("backend", "ghost"))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePreconditionFailed, result.Entries[0].Outcome)
	assert.Contains(t, result.Entries[0].Detail, "api")
	assert.Equal(t, domain.OutcomeNotFound, result.Entries[1].Outcome)

	require.NoError(t, s.DeleteContainer(ctx, "c1"))
	result, err = svc.Delete(ctx, domain.Single("backend"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOK, result.Entries[0].Outcome)
}
