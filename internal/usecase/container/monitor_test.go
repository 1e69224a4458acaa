package container

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/adapters/out/store"
	"github.com/bnema/acms/internal/boundaries/out/mocks"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/internal/testutils"
	"github.com/bnema/acms/internal/usecase/batch"
)

func newMonitorService(t *testing.T, runtime *mocks.MockContainerRuntime, events *mocks.MockEventPublisher) (*Service, *store.Store) {
	t.Helper()
	s := store.New(nil)
	svc := NewService(runtime, s, events, batch.NewExecutor(1), nil, Config{MonitorInterval: 10 * time.Millisecond})
	return svc, s
}

func putRunning(t *testing.T, s *store.Store, id string) {
	t.Helper()
	require.NoError(t, s.PutContainer(testutils.TestContext(t), &domain.Container{
		ID:    id,
		Name:  id,
		State: domain.ContainerStateRunning,
	}))
}

func TestMonitor_RecordsExit(t *testing.T) {
	runtime := mocks.NewMockContainerRuntime(t)
	events := mocks.NewMockEventPublisher(t)
	svc, s := newMonitorService(t, runtime, events)
	putRunning(t, s, "ctr-1")
	ctx := testutils.TestContext(t)

	runtime.EXPECT().InspectContainer(mock.Anything, "ctr-1").Return(&domain.RuntimeContainer{ID: "ctr-1", ExitCode: 1}, nil)
	events.EXPECT().Publish(domain.EventContainerStopped, mock.Anything).Return(nil).Once()

	svc.monitor.check(ctx)

	c, err := s.GetContainer(ctx, "ctr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerStateStopped, c.State)
	assert.Equal(t, 1, c.ExitCode)
	assert.False(t, c.FinishedAt.IsZero())
}

func TestMonitor_SkipsRunningContainer(t *testing.T) {
	runtime := mocks.NewMockContainerRuntime(t)
	events := mocks.NewMockEventPublisher(t)
	svc, s := newMonitorService(t, runtime, events)
	putRunning(t, s, "ctr-1")
	ctx := testutils.TestContext(t)

	runtime.EXPECT().InspectContainer(mock.Anything, "ctr-1").Return(&domain.RuntimeContainer{ID: "ctr-1", Running: true}, nil)

	svc.monitor.check(ctx)

	c, err := s.GetContainer(ctx, "ctr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerStateRunning, c.State)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestMonitor_MissingProcessIsStopped(t *testing.T) {
	runtime := mocks.NewMockContainerRuntime(t)
	events := mocks.NewMockEventPublisher(t)
	svc, s := newMonitorService(t, runtime, events)
	putRunning(t, s, "ctr-1")
	ctx := testutils.TestContext(t)

	runtime.EXPECT().InspectContainer(mock.Anything, "ctr-1").Return(nil, domain.ErrContainerNotFound)
	events.EXPECT().Publish(domain.EventContainerStopped, mock.Anything).Return(nil)

	require.NoError(t, svc.Reconcile(ctx))

	c, err := s.GetContainer(ctx, "ctr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerStateStopped, c.State)
}

func TestMonitor_IgnoresInspectFailures(t *testing.T) {
	runtime := mocks.NewMockContainerRuntime(t)
	events := mocks.NewMockEventPublisher(t)
	svc, s := newMonitorService(t, runtime, events)
	putRunning(t, s, "ctr-1")
	ctx := testutils.TestContext(t)

	runtime.EXPECT().InspectContainer(mock.Anything, "ctr-1").Return(nil, assert.AnError)

	svc.monitor.check(ctx)

	c, err := s.GetContainer(ctx, "ctr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerStateRunning, c.State)
}

func TestMonitor_StartStop(t *testing.T) {
	runtime := mocks.NewMockContainerRuntime(t)
	events := mocks.NewMockEventPublisher(t)
	svc, s := newMonitorService(t, runtime, events)
	putRunning(t, s, "ctr-1")

	runtime.EXPECT().InspectContainer(mock.Anything, "ctr-1").Return(&domain.RuntimeContainer{ID: "ctr-1"}, nil).Once()
	events.EXPECT().Publish(domain.EventContainerStopped, mock.Anything).Return(nil).Once()

	svc.StartMonitor(testutils.TestContext(t))
	testutils.Eventually(t, func() bool {
		c, err := s.GetContainer(testutils.TestContext(t), "ctr-1")
		return err == nil && c.State == domain.ContainerStateStopped
	}, "monitor records the exit")
	svc.StopMonitor()
	svc.StopMonitor()
}
