package docker

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/domain"
)

type chunk struct {
	stream stdcopy.StdType
	data   string
}

func muxed(t *testing.T, chunks ...chunk) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	for _, c := range chunks {
		_, err := stdcopy.NewStdWriter(&buf, c.stream).Write([]byte(c.data))
		require.NoError(t, err)
	}
	return &buf
}

func TestParseExecOutput(t *testing.T) {
	tests := []struct {
		name       string
		chunks     []chunk
		wantStdout string
		wantStderr string
	}{
		{
			name:       "interleaved streams keep their order",
			chunks:     []chunk{{stdcopy.Stdout, "a"}, {stdcopy.Stderr, "x"}, {stdcopy.Stdout, "b"}},
			wantStdout: "ab",
			wantStderr: "x",
		},
		{
			name:       "stderr only",
			chunks:     []chunk{{stdcopy.Stderr, "permission denied\n"}},
			wantStderr: "permission denied\n",
		},
		{
			name: "no output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := parseExecOutput(muxed(t, tt.chunks...))

			require.NoError(t, err)
			assert.Equal(t, tt.wantStdout, string(stdout))
			assert.Equal(t, tt.wantStderr, string(stderr))
		})
	}
}

func TestParseExecOutput_UnknownStreamFails(t *testing.T) {
	frame := []byte{9, 0, 0, 0, 0, 0, 0, 1, 'z'}

	_, _, err := parseExecOutput(bytes.NewReader(frame))

	assert.Error(t, err)
}

func TestRuntime_ExecInContainer_EmptyCommand(t *testing.T) {
	r := &Runtime{}

	for _, cmd := range [][]string{nil, {}} {
		res, err := r.ExecInContainer(testContext(), "web", cmd)
		require.Error(t, err)
		assert.Nil(t, res)
	}
}

func TestRuntime_ExecInContainer_MissingContainer(t *testing.T) {
	var path string
	r := newTestRuntime(t, func(w http.ResponseWriter, req *http.Request) {
		path = req.URL.Path
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No such container: web"})
	})

	res, err := r.ExecInContainer(testContext(), "web", []string{"true"})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrContainerNotFound)
	assert.Contains(t, path, "/containers/web/exec")
}
