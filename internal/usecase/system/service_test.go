package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/adapters/out/sandbox"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/internal/testutils"
)

type staticBuilder domain.BuilderState

func (b staticBuilder) Status(_ context.Context) *domain.Builder {
	return &domain.Builder{State: domain.BuilderState(b)}
}

func TestService_Status(t *testing.T) {
	f := testutils.NewFixture(t)
	f.Image("nginx")
	started := time.Now().Add(-90 * time.Second)
	svc := NewService(f.Runtime, f.Store, staticBuilder(domain.BuilderStateRunning), Config{
		Version:     "1.2.3",
		Commit:      "abc123",
		StartedAt:   started,
		Persistence: "memory",
	})

	status, err := svc.Status(f.Ctx)

	require.NoError(t, err)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, "sandbox", status.Runtime)
	assert.Equal(t, sandbox.Version, status.RuntimeVersion)
	assert.Equal(t, "memory", status.Persistence)
	assert.Equal(t, 1, status.Counts[domain.KindImage])
	assert.Equal(t, 1, status.Counts[domain.KindNetwork])
	assert.Equal(t, domain.BuilderStateRunning, status.Builder)
	assert.GreaterOrEqual(t, status.Uptime, 90*time.Second)
}

func writeLog(t *testing.T, now time.Time) string {
	t.Helper()
	lines := []string{
		fmt.Sprintf(`{"level":"info","time":%q,"message":"old"}`, now.Add(-2*time.Hour).Format(time.RFC3339)),
		fmt.Sprintf(`{"level":"warn","time":%q,"message":"recent"}`, now.Add(-2*time.Minute).Format(time.RFC3339)),
		`not json`,
		fmt.Sprintf(`{"level":"debug","time":%d,"message":"unix"}`, now.Add(-30*time.Second).Unix()),
	}
	path := filepath.Join(t.TempDir(), "acms.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestService_Logs_Window(t *testing.T) {
	f := testutils.NewFixture(t)
	now := time.Now()
	svc := NewService(f.Runtime, f.Store, nil, Config{LogFile: writeLog(t, now)})
	svc.now = func() time.Time { return now }

	tests := []struct {
		last string
		want []string
	}{
		{last: "1m", want: []string{"unix"}},
		{last: "5m", want: []string{"recent", "unix"}},
		{last: "1d", want: []string{"old", "recent", "unix"}},
	}

	for _, tt := range tests {
		t.Run(tt.last, func(t *testing.T) {
			entries, err := svc.Logs(f.Ctx, tt.last)
			require.NoError(t, err)
			got := make([]string, 0, len(entries))
			for _, e := range entries {
				got = append(got, e.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Logs_Errors(t *testing.T) {
	f := testutils.NewFixture(t)

	unconfigured := NewService(f.Runtime, f.Store, nil, Config{})
	_, err := unconfigured.Logs(f.Ctx, "5m")
	assert.Equal(t, domain.KindPreconditionFailed, domain.KindOf(err))

	configured := NewService(f.Runtime, f.Store, nil, Config{LogFile: filepath.Join(t.TempDir(), "missing.log")})
	for _, bad := range []string{"", "soon", "-5m", "0s"} {
		_, err := configured.Logs(f.Ctx, bad)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err), bad)
	}

	entries, err := configured.Logs(f.Ctx, "5m")
	require.NoError(t, err)
	assert.Empty(t, entries, "missing file has no entries yet")
}

func TestService_DNS(t *testing.T) {
	f := testutils.NewFixture(t)

	svc := NewService(f.Runtime, f.Store, nil, Config{DNSDomains: []string{"test", "local"}, DNSDefault: "local"})
	assert.Equal(t, []domain.DNSDomain{{Name: "test"}, {Name: "local", Default: true}}, svc.DNSList(f.Ctx))
	d, err := svc.DNSDefault(f.Ctx)
	require.NoError(t, err)
	assert.Equal(t, "local", d.Name)

	empty := NewService(f.Runtime, f.Store, nil, Config{})
	assert.Empty(t, empty.DNSList(f.Ctx))
	_, err = empty.DNSDefault(f.Ctx)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestService_DefaultRegistry(t *testing.T) {
	f := testutils.NewFixture(t)
	svc := NewService(f.Runtime, f.Store, nil, Config{DefaultRegistry: "docker.io"})

	assert.Equal(t, "docker.io", svc.DefaultRegistry(f.Ctx))
}
