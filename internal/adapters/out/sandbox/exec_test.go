package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/domain"
)

func TestRuntime_Exec(t *testing.T) {
	r := NewRuntime()
	ctx := testContext()
	id := startNginx(t, r)

	tests := []struct {
		name       string
		cmd        []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"nginx version", []string{"nginx", "-v"}, 0, "", "nginx version: " + NginxVersion + "\n"},
		{"echo", []string{"echo", "hello", "world"}, 0, "hello world\n", ""},
		{"false", []string{"false"}, 1, "", ""},
		{"shell chain", []string{"sh", "-c", "echo a && false && echo b; echo c"}, 0, "a\nc\n", ""},
		{"unknown command", []string{"curl", "localhost"}, 127, "", "sh: curl: not found\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.ExecInContainer(ctx, id, tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, res.ExitCode)
			assert.Equal(t, tt.wantStdout, string(res.Stdout))
			assert.Equal(t, tt.wantStderr, string(res.Stderr))
		})
	}
}

func TestRuntime_Exec_NginxOnlyInNginxImages(t *testing.T) {
	r := NewRuntime()
	ctx := testContext()

	_, err := r.PullImage(ctx, "alpine")
	require.NoError(t, err)
	c, err := r.CreateContainer(ctx, &domain.ContainerConfig{Image: "alpine"})
	require.NoError(t, err)
	require.NoError(t, r.StartContainer(ctx, c.ID))

	res, err := r.ExecInContainer(ctx, c.ID, []string{"nginx", "-v"})
	require.NoError(t, err)
	assert.Equal(t, 127, res.ExitCode)
}

func TestRuntime_Exec_RequiresRunning(t *testing.T) {
	r := NewRuntime()
	ctx := testContext()
	id := startNginx(t, r)
	require.NoError(t, r.StopContainer(ctx, id, time.Second))

	_, err := r.ExecInContainer(ctx, id, []string{"true"})
	assert.ErrorIs(t, err, domain.ErrContainerNotRunning)

	_, err = r.ExecInContainer(ctx, id, nil)
	assert.Error(t, err)
}

func TestRuntime_Exec_SleepHonorsDeadline(t *testing.T) {
	r := NewRuntime()
	id := startNginx(t, r)

	ctx, cancel := context.WithTimeout(testContext(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.ExecInContainer(ctx, id, []string{"sleep", "5"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
