package container

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/adapters/out/sandbox"
	"github.com/bnema/acms/internal/boundaries/out/mocks"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/internal/testutils"
	"github.com/bnema/acms/internal/usecase/batch"
)

func testConfig() Config {
	return Config{
		StopGrace:    time.Second,
		ExecTimeout:  5 * time.Second,
		StartTimeout: 5 * time.Second,
	}
}

func newService(t *testing.T, f *testutils.Fixture, config Config) *Service {
	t.Helper()
	events := mocks.NewMockEventPublisher(t)
	events.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewService(f.Runtime, f.Store, events, batch.NewExecutor(4), nil, config)
}

func runNginx(t *testing.T, f *testutils.Fixture, svc *Service, name string) *domain.Container {
	t.Helper()
	c, err := svc.Run(f.Ctx, domain.ContainerConfig{Image: "nginx", Name: name})
	require.NoError(t, err)
	return c
}

func state(t *testing.T, f *testutils.Fixture, id string) domain.ContainerState {
	t.Helper()
	c, err := f.Store.GetContainer(f.Ctx, id)
	require.NoError(t, err)
	return c.State
}

type fakePuller struct {
	f    *testutils.Fixture
	refs []string
}

func (p *fakePuller) Pull(_ context.Context, ref string) (*domain.Image, error) {
	p.refs = append(p.refs, ref)
	return p.f.Image(ref), nil
}

func TestService_Create(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())

	c, err := svc.Create(f.Ctx, domain.ContainerConfig{Image: "nginx", Name: "web"})

	require.NoError(t, err)
	assert.Equal(t, domain.ContainerStateCreated, c.State)
	assert.Equal(t, "nginx:latest", c.Image)
	assert.Equal(t, "default", c.Network)
	assert.Equal(t, domain.ContainerStateCreated, state(t, f, c.ID))
}

func TestService_Create_GeneratesName(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("library/redis:7")
	svc := newService(t, f, testConfig())

	c, err := svc.Create(f.Ctx, domain.ContainerConfig{Image: "library/redis:7"})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.Name, "redis-"), c.Name)
}

func TestService_Create_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config domain.ContainerConfig
		kind   domain.ErrorKind
	}{
		{name: "image not pulled", config: domain.ContainerConfig{Image: "redis"}, kind: domain.KindNotFound},
		{name: "invalid image", config: domain.ContainerConfig{Image: "Not Valid"}, kind: domain.KindValidation},
		{name: "invalid name", config: domain.ContainerConfig{Image: "nginx", Name: "-bad"}, kind: domain.KindValidation},
		{name: "missing network", config: domain.ContainerConfig{Image: "nginx", Network: "nowhere"}, kind: domain.KindNotFound},
		{name: "missing volume", config: domain.ContainerConfig{Image: "nginx", Mounts: []domain.Mount{{Volume: "data", Path: "/data"}}}, kind: domain.KindNotFound},
		{name: "relative mount", config: domain.ContainerConfig{Image: "nginx", Mounts: []domain.Mount{{Volume: "data", Path: "data"}}}, kind: domain.KindValidation},
		{name: "port out of range", config: domain.ContainerConfig{Image: "nginx", Ports: []domain.PortMapping{{ContainerPort: 70000}}}, kind: domain.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutils.NewFixture(t)
			f.Image("nginx")
			svc := newService(t, f, testConfig())

			_, err := svc.Create(f.Ctx, tt.config)

			require.Error(t, err)
			assert.Equal(t, tt.kind, domain.KindOf(err))
		})
	}
}

func TestService_Create_DuplicateName(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())

	_, err := svc.Create(f.Ctx, domain.ContainerConfig{Image: "nginx", Name: "web"})
	require.NoError(t, err)
	_, err = svc.Create(f.Ctx, domain.ContainerConfig{Image: "nginx", Name: "web"})

	assert.ErrorIs(t, err, domain.ErrContainerExists)
	all, _ := svc.List(f.Ctx, true)
	assert.Len(t, all, 1)
}

func TestService_Create_AutoPull(t *testing.T) {
	f := testutils.NewFixture(t)
	events := mocks.NewMockEventPublisher(t)
	events.EXPECT().Publish(domain.EventContainerCreated, mock.Anything).Return(nil).Once()
	puller := &fakePuller{f: f}
	config := testConfig()
	config.AutoPull = true
	svc := NewService(f.Runtime, f.Store, events, batch.NewExecutor(1), puller, config)

	c, err := svc.Create(f.Ctx, domain.ContainerConfig{Image: "alpine"})

	require.NoError(t, err)
	assert.Equal(t, []string{"alpine:latest"}, puller.refs)
	assert.Equal(t, "alpine:latest", c.Image)
}

func TestService_Lifecycle(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())
	ctx := f.Ctx

	c, err := svc.Create(ctx, domain.ContainerConfig{Image: "nginx", Name: "web"})
	require.NoError(t, err)

	started, err := svc.Start(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerStateRunning, started.State)
	assert.False(t, started.StartedAt.IsZero())

	_, err = svc.Start(ctx, "web")
	assert.Equal(t, domain.KindPreconditionFailed, domain.KindOf(err), "start of a running container")

	result, err := svc.Stop(ctx, domain.Single("web"), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOK, result.Entries[0].Outcome)
	assert.Equal(t, domain.ContainerStateStopped, state(t, f, c.ID))

	_, err = svc.Start(ctx, c.ID)
	require.NoError(t, err)

	result, err = svc.Kill(ctx, domain.Single(c.ID[:6]))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOK, result.Entries[0].Outcome)
	killed, err := f.Store.GetContainer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerStateKilled, killed.State)
	assert.Equal(t, 137, killed.ExitCode)

	_, err = svc.Start(ctx, "web")
	assert.ErrorIs(t, err, domain.ErrContainerNotStarted, "killed containers are not restartable")

	result, err = svc.Delete(ctx, domain.Single("web"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOK, result.Entries[0].Outcome)

	_, err = svc.Inspect(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrContainerNotFound)
}

func TestService_Delete_RunningIsRefused(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())
	c := runNginx(t, f, svc, "web")

	result, err := svc.Delete(f.Ctx, domain.Single("web"))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePreconditionFailed, result.Entries[0].Outcome)
	assert.Equal(t, domain.ContainerStateRunning, state(t, f, c.ID), "delete must not stop the container")
}

func TestService_Stop_NotRunning(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())
	_, err := svc.Create(f.Ctx, domain.ContainerConfig{Image: "nginx", Name: "idle"})
	require.NoError(t, err)

	result, err := svc.Stop(f.Ctx, domain.Single("idle"), 0)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePreconditionFailed, result.Entries[0].Outcome)
}

func TestService_Stop_MixedTargetsKeepOrder(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())
	runNginx(t, f, svc, "a")
	runNginx(t, f, svc, "b")

	result, err := svc.Stop(f.Ctx, domain.Many("b", "ghost", "a", "a"), time.Second)

	require.NoError(t, err)
	require.Len(t, result.Entries, 4)
	assert.Equal(t, "b", result.Entries[0].Target)
	assert.Equal(t, domain.OutcomeOK, result.Entries[0].Outcome)
	assert.Equal(t, domain.OutcomeNotFound, result.Entries[1].Outcome)
	assert.Equal(t, "a", result.Entries[2].Target)
	// The same container requested twice: one stop wins, the other sees it stopped.
	outcomes := []domain.Outcome{result.Entries[2].Outcome, result.Entries[3].Outcome}
	assert.ElementsMatch(t, []domain.Outcome{domain.OutcomeOK, domain.OutcomePreconditionFailed}, outcomes)
	assert.Equal(t, 2, result.Succeeded())
}

func TestService_StopAll_TargetsRunningOnly(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())
	runNginx(t, f, svc, "a")
	runNginx(t, f, svc, "b")
	_, err := svc.Create(f.Ctx, domain.ContainerConfig{Image: "nginx", Name: "idle"})
	require.NoError(t, err)

	result, err := svc.Stop(f.Ctx, domain.All(), 0)

	require.NoError(t, err)
	assert.Len(t, result.Entries, 2)
	assert.Equal(t, 2, result.Succeeded())
	running, err := svc.List(f.Ctx, false)
	require.NoError(t, err)
	assert.Empty(t, running)
}

func TestService_Delete_ConcurrentSameContainer(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())
	c, err := svc.Create(f.Ctx, domain.ContainerConfig{Image: "nginx", Name: "web"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	outcomes := make([]domain.Outcome, 2)
	for i := range outcomes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Delete(f.Ctx, domain.Single(c.ID))
			if err == nil {
				outcomes[i] = result.Entries[0].Outcome
			}
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []domain.Outcome{domain.OutcomeOK, domain.OutcomeNotFound}, outcomes)
}

func TestService_Run_RollsBackOnTimeout(t *testing.T) {
	f := testutils.NewFixture(t, sandbox.WithStartDelay(time.Second))
	f.Image("nginx")
	config := testConfig()
	config.StartTimeout = 50 * time.Millisecond
	svc := newService(t, f, config)

	_, err := svc.Run(f.Ctx, domain.ContainerConfig{Image: "nginx", Name: "slow"})

	require.Error(t, err)
	assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
	all, err := svc.List(f.Ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all, "the created container is removed again")
}

func TestService_Exec(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())
	runNginx(t, f, svc, "web")

	result, err := svc.Exec(f.Ctx, "web", []string{"nginx", "-v"}, 0)

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, string(result.Stderr), sandbox.NginxVersion)
}

func TestService_Exec_Errors(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())
	runNginx(t, f, svc, "web")
	_, err := svc.Create(f.Ctx, domain.ContainerConfig{Image: "nginx", Name: "idle"})
	require.NoError(t, err)

	_, err = svc.Exec(f.Ctx, "idle", []string{"true"}, 0)
	assert.Equal(t, domain.KindPreconditionFailed, domain.KindOf(err))

	_, err = svc.Exec(f.Ctx, "web", nil, 0)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = svc.Exec(f.Ctx, "ghost", []string{"true"}, 0)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	start := time.Now()
	_, err = svc.Exec(f.Ctx, "web", []string{"sleep", "5"}, 50*time.Millisecond)
	assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestService_Logs(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())
	runNginx(t, f, svc, "web")

	testutils.Eventually(t, func() bool {
		lines, err := svc.Logs(f.Ctx, "web", 0)
		return err == nil && len(lines) >= 4
	}, "nginx banner is logged")

	lines, err := svc.Logs(f.Ctx, "web", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"nginx: start worker processes"}, lines)
}

func TestService_List(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	svc := newService(t, f, testConfig())
	runNginx(t, f, svc, "web")
	_, err := svc.Create(f.Ctx, domain.ContainerConfig{Image: "nginx", Name: "idle"})
	require.NoError(t, err)

	running, err := svc.List(f.Ctx, false)
	require.NoError(t, err)
	all, err := svc.List(f.Ctx, true)
	require.NoError(t, err)

	require.Len(t, running, 1)
	assert.Equal(t, "web", running[0].Name)
	assert.Len(t, all, 2)
}

func TestService_Reconcile_MarksExitedContainersStopped(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("alpine")
	svc := newService(t, f, testConfig())

	c, err := svc.Run(f.Ctx, domain.ContainerConfig{Image: "alpine", Name: "job", Command: []string{"sh", "-c", "echo done; exit 3"}})
	require.NoError(t, err)
	testutils.Eventually(t, func() bool {
		rc, err := f.Runtime.InspectContainer(f.Ctx, c.ID)
		return err == nil && !rc.Running
	}, "job exits")

	require.NoError(t, svc.Reconcile(f.Ctx))

	got, err := f.Store.GetContainer(f.Ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContainerStateStopped, got.State)
	assert.Equal(t, 3, got.ExitCode)
}
