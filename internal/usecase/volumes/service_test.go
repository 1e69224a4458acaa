package volumes

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/boundaries/out/mocks"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/internal/testutils"
	"github.com/bnema/acms/internal/usecase/batch"
)

func newService(t *testing.T, f *testutils.Fixture) *Service {
	t.Helper()
	events := mocks.NewMockEventPublisher(t)
	events.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewService(f.Runtime, f.Store, events, batch.NewExecutor(4), Config{Protected: []string{"registry-data"}})
}

func TestService_Create(t *testing.T) {
	f := testutils.NewFixture(t)
	svc := newService(t, f)

	v, err := svc.Create(f.Ctx, domain.VolumeConfig{Name: "data", Size: 1 << 30})

	require.NoError(t, err)
	assert.Equal(t, "data", filepath.Base(filepath.Dir(v.Path)))
	assert.Equal(t, int64(1<<30), v.Size)
	assert.False(t, v.Protected)

	_, err = svc.Create(f.Ctx, domain.VolumeConfig{Name: "data"})
	assert.ErrorIs(t, err, domain.ErrVolumeExists)

	_, err = svc.Create(f.Ctx, domain.VolumeConfig{Name: "../etc"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = svc.Create(f.Ctx, domain.VolumeConfig{Name: "neg", Size: -1})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestService_Delete(t *testing.T) {
	f := testutils.NewFixture(t)
	svc := newService(t, f)
	for _, name := range []string{"data", "cache", "registry-data"} {
		_, err := svc.Create(f.Ctx, domain.VolumeConfig{Name: name})
		require.NoError(t, err)
	}
	require.NoError(t, f.Store.PutContainer(f.Ctx, &domain.Container{
		ID:     "c1",
		Name:   "db",
		State:  domain.ContainerStateStopped,
		Mounts: []domain.Mount{{Volume: "cache", Path: "/cache"}},
	}))

	result, err := svc.Delete(f.Ctx, domain.Many("data", "cache", "registry-data", "ghost"))

	require.NoError(t, err)
	outcomes := make([]domain.Outcome, 0, len(result.Entries))
	for _, e := range result.Entries {
		outcomes = append(outcomes, e.Outcome)
	}
	assert.Equal(t, []domain.Outcome{
		domain.OutcomeOK,
		domain.OutcomePreconditionFailed,
		domain.OutcomePreconditionFailed,
		domain.OutcomeNotFound,
	}, outcomes)
	assert.Contains(t, result.Entries[1].Detail, "db")
}

func TestService_Delete_All(t *testing.T) {
	f := testutils.NewFixture(t)
	svc := newService(t, f)
	for _, name := range []string{"a", "b", "registry-data"} {
		_, err := svc.Create(f.Ctx, domain.VolumeConfig{Name: name})
		require.NoError(t, err)
	}

	result, err := svc.Delete(f.Ctx, domain.All())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded())
	left, err := svc.List(f.Ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "registry-data", left[0].Name)
	assert.True(t, left[0].Protected)
}
