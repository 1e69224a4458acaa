package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/adapters/dto"
	"github.com/bnema/acms/internal/adapters/out/telemetry"
	"github.com/bnema/acms/internal/boundaries/out/mocks"
	"github.com/bnema/acms/internal/testutils"
	"github.com/bnema/acms/internal/usecase/auth"
	"github.com/bnema/acms/internal/usecase/batch"
	"github.com/bnema/acms/internal/usecase/builder"
	"github.com/bnema/acms/internal/usecase/container"
	"github.com/bnema/acms/internal/usecase/images"
	"github.com/bnema/acms/internal/usecase/networks"
	"github.com/bnema/acms/internal/usecase/system"
	"github.com/bnema/acms/internal/usecase/volumes"
)

type testEnv struct {
	f       *testutils.Fixture
	srv     *Server
	metrics *telemetry.Metrics
	auth    *auth.Service
}

func newTestEnv(t *testing.T, authConfig auth.Config) *testEnv {
	t.Helper()
	f := testutils.NewFixture(t)

	events := mocks.NewMockEventPublisher(t)
	events.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Maybe()

	executor := batch.NewExecutor(4)
	imageSvc := images.NewService(f.Runtime, f.Store, events, executor)
	containerSvc := container.NewService(f.Runtime, f.Store, events, executor, imageSvc, container.Config{
		StopGrace:    time.Second,
		ExecTimeout:  5 * time.Second,
		StartTimeout: 5 * time.Second,
	})
	networkSvc := networks.NewService(f.Runtime, f.Store, events, executor, networks.Config{
		Defaults: []string{"default", "bridge"},
	})
	require.NoError(t, networkSvc.EnsureDefaults(f.Ctx))
	builderSvc := builder.NewService(f.Runtime, f.Store, events, builder.Config{
		Name:         "acms-builder",
		Image:        "moby/buildkit:latest",
		StartTimeout: 2 * time.Second,
		PollInterval: 5 * time.Millisecond,
	})
	t.Cleanup(builderSvc.Wait)

	authSvc, err := auth.NewService(authConfig)
	require.NoError(t, err)

	metrics := telemetry.NewMetrics()
	srv, err := NewServer(Config{}, Services{
		Images:     imageSvc,
		Containers: containerSvc,
		Networks:   networkSvc,
		Volumes:    volumes.NewService(f.Runtime, f.Store, events, executor, volumes.Config{}),
		Builder:    builderSvc,
		System: system.NewService(f.Runtime, f.Store, builderSvc, system.Config{
			Version:         "test",
			Persistence:     "memory",
			DNSDomains:      []string{"acms.local", "dev.local"},
			DNSDefault:      "acms.local",
			DefaultRegistry: "docker.io",
		}),
		Auth: authSvc,
	}, metrics, zerowrap.Default())
	require.NoError(t, err)

	return &testEnv{f: f, srv: srv, metrics: metrics, auth: authSvc}
}

func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

// tool calls a tool and decodes the response into out when given.
func (e *testEnv) tool(t *testing.T, name, args string, out any) int {
	t.Helper()
	rec := e.do(http.MethodPost, "/v1/tools/"+name, args, nil)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func (e *testEnv) batch(t *testing.T, name, args string) dto.BatchResponse {
	t.Helper()
	var resp dto.BatchResponse
	require.Equal(t, http.StatusOK, e.tool(t, name, args, &resp))
	return resp
}

func outcomes(resp dto.BatchResponse) []string {
	out := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, r.Target+"="+r.Outcome)
	}
	return out
}

func TestServer_Healthz(t *testing.T) {
	env := newTestEnv(t, auth.Config{})

	rec := env.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServer_ListTools(t *testing.T) {
	env := newTestEnv(t, auth.Config{})

	var resp dto.ToolsResponse
	rec := env.do(http.MethodGet, "/v1/tools", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	names := make([]string, 0, len(resp.Tools))
	for _, tl := range resp.Tools {
		names = append(names, tl.Name)
		assert.NotEmpty(t, tl.InputSchema, tl.Name)
	}
	assert.ElementsMatch(t, []string{
		"image_pull", "image_list", "image_inspect", "image_tag", "image_delete", "image_prune",
		"container_create", "container_run", "container_start", "container_stop", "container_kill",
		"container_delete", "container_list", "container_logs", "container_inspect", "container_exec",
		"network_list", "network_create", "network_inspect", "network_delete",
		"volume_list", "volume_create", "volume_inspect", "volume_delete",
		"builder_status", "builder_start", "builder_stop", "builder_delete",
		"registry_default", "system_status", "system_logs", "system_dns_list", "system_dns_default",
	}, names)
}

func TestServer_ExecLifecycle(t *testing.T) {
	env := newTestEnv(t, auth.Config{})

	var img dto.Image
	require.Equal(t, http.StatusOK, env.tool(t, "image_pull", `{"ref":"nginx:latest"}`, &img))
	assert.Equal(t, "nginx:latest", img.Reference)

	var c dto.Container
	require.Equal(t, http.StatusOK, env.tool(t, "container_create", `{"image":"nginx:latest","name":"web"}`, &c))
	assert.Equal(t, "created", c.State)
	assert.Equal(t, "default", c.Network)

	require.Equal(t, http.StatusOK, env.tool(t, "container_start", `{"id":"web"}`, &c))
	assert.Equal(t, "running", c.State)

	var res dto.ExecResponse
	require.Equal(t, http.StatusOK, env.tool(t, "container_exec", `{"id":"web","command":["nginx","-v"]}`, &res))
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stderr, "nginx version: nginx/")

	var fromLine dto.ExecResponse
	require.Equal(t, http.StatusOK, env.tool(t, "container_exec", `{"id":"web","command":"nginx -v"}`, &fromLine))
	assert.Equal(t, res, fromLine)

	var badLine dto.ErrorResponse
	require.Equal(t, http.StatusBadRequest, env.tool(t, "container_exec", `{"id":"web","command":"nginx 'unterminated"}`, &badLine))
	assert.Equal(t, "validation_error", badLine.Error.Kind)
	assert.Equal(t, "command", badLine.Error.Field)

	stop := env.batch(t, "container_stop", `{"ids":"web"}`)
	assert.Equal(t, []string{"web=ok"}, outcomes(stop))

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, env.tool(t, "container_exec", `{"id":"web","command":["nginx","-v"]}`, &errResp))
	assert.Equal(t, "precondition_failed", errResp.Error.Kind)

	var inspected dto.Container
	require.Equal(t, http.StatusOK, env.tool(t, "container_inspect", `{"id":"web"}`, &inspected))
	assert.Equal(t, "stopped", inspected.State)
}

func TestServer_BatchTargetShapes(t *testing.T) {
	env := newTestEnv(t, auth.Config{})

	single := env.batch(t, "container_delete", `{"ids":"ghost"}`)
	array := env.batch(t, "container_delete", `{"ids":["ghost"]}`)
	assert.Equal(t, single, array)
	assert.Equal(t, []string{"ghost=not_found"}, outcomes(single))

	many := env.batch(t, "container_delete", `{"ids":["a","b","a","c","d","e"]}`)
	assert.Equal(t, []string{"a=not_found", "b=not_found", "a=not_found", "c=not_found", "d=not_found", "e=not_found"}, outcomes(many))
	assert.Equal(t, 0, many.Succeeded)
	assert.Equal(t, 6, many.Failed)

	all := env.batch(t, "container_delete", `{"all":true}`)
	assert.Empty(t, all.Results)

	invalid := map[string]string{
		"empty array":       `{"ids":[]}`,
		"number":            `{"ids":5}`,
		"object":            `{"ids":{"a":1}}`,
		"empty string":      `{"ids":""}`,
		"mixed array":       `{"ids":["a",1]}`,
		"ids and all":       `{"ids":"a","all":true}`,
		"nothing":           `{}`,
		"all false":         `{"all":false}`,
		"unknown parameter": `{"ids":"a","bogus":true}`,
		"not json":          `{"ids":`,
	}
	for name, args := range invalid {
		t.Run(name, func(t *testing.T) {
			var resp dto.ErrorResponse
			assert.Equal(t, http.StatusBadRequest, env.tool(t, "container_stop", args, &resp))
			assert.Equal(t, "validation_error", resp.Error.Kind)
		})
	}

	assert.Equal(t, float64(8), testutil.ToFloat64(env.metrics.BatchTargets.WithLabelValues("container_delete", "not_found")))
}

func TestServer_NetworkDeleteProtected(t *testing.T) {
	env := newTestEnv(t, auth.Config{})

	require.Equal(t, http.StatusOK, env.tool(t, "network_create", `{"name":"backend"}`, nil))

	resp := env.batch(t, "network_delete", `{"names":["bridge"]}`)
	assert.Equal(t, []string{"bridge=precondition_failed"}, outcomes(resp))
	assert.Contains(t, resp.Results[0].Detail, "protected")

	resp = env.batch(t, "network_delete", `{"names":"default"}`)
	assert.Equal(t, []string{"default=precondition_failed"}, outcomes(resp))

	resp = env.batch(t, "network_delete", `{"names":["bridge","backend","missing"]}`)
	assert.Equal(t, []string{"bridge=precondition_failed", "backend=ok", "missing=not_found"}, outcomes(resp))

	var list dto.NetworksResponse
	require.Equal(t, http.StatusOK, env.tool(t, "network_list", ``, &list))
	assert.Len(t, list.Networks, 2)
}

func TestServer_PruneTwice(t *testing.T) {
	env := newTestEnv(t, auth.Config{})

	require.Equal(t, http.StatusOK, env.tool(t, "image_pull", `{"ref":"nginx"}`, nil))
	require.Equal(t, http.StatusOK, env.tool(t, "image_pull", `{"ref":"redis:7"}`, nil))
	require.Equal(t, http.StatusOK, env.tool(t, "container_create", `{"image":"nginx"}`, nil))

	var first dto.PruneResponse
	require.Equal(t, http.StatusOK, env.tool(t, "image_prune", `{}`, &first))
	assert.Equal(t, []string{"redis:7"}, first.Reclaimed)

	rec := env.do(http.MethodPost, "/v1/tools/image_prune", `{}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reclaimed":[],"space_reclaimed":0}`, rec.Body.String())
}

func TestServer_UnaryErrors(t *testing.T) {
	env := newTestEnv(t, auth.Config{})

	tests := []struct {
		name   string
		tool   string
		args   string
		status int
		kind   string
	}{
		{"unknown tool", "image_frobnicate", `{}`, http.StatusNotFound, "not_found"},
		{"missing image", "image_inspect", `{"ref":"nope:1"}`, http.StatusNotFound, "not_found"},
		{"invalid reference", "image_pull", `{"ref":"NGINX"}`, http.StatusBadRequest, "validation_error"},
		{"missing required", "image_tag", `{"ref":"nginx"}`, http.StatusBadRequest, "validation_error"},
		{"image for create missing", "container_create", `{"image":"busybox"}`, http.StatusNotFound, "not_found"},
		{"builder not running", "builder_stop", `{}`, http.StatusConflict, "precondition_failed"},
		{"builder never created", "builder_delete", `{}`, http.StatusNotFound, "not_found"},
		{"bad log window", "system_logs", `{"last":"soon"}`, http.StatusBadRequest, "validation_error"},
		{"attached run", "container_run", `{"image":"nginx","detached":false}`, http.StatusBadRequest, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp dto.ErrorResponse
			assert.Equal(t, tt.status, env.tool(t, tt.tool, tt.args, &resp))
			assert.Equal(t, tt.kind, resp.Error.Kind)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestServer_SystemFacade(t *testing.T) {
	env := newTestEnv(t, auth.Config{})

	var reg dto.RegistryResponse
	require.Equal(t, http.StatusOK, env.tool(t, "registry_default", ``, &reg))
	assert.Equal(t, "docker.io", reg.Registry)

	var dns dto.DNSResponse
	require.Equal(t, http.StatusOK, env.tool(t, "system_dns_list", ``, &dns))
	assert.Equal(t, []dto.DNSDomain{{Name: "acms.local", Default: true}, {Name: "dev.local"}}, dns.Domains)

	var status dto.StatusResponse
	require.Equal(t, http.StatusOK, env.tool(t, "system_status", ``, &status))
	assert.Equal(t, "test", status.Version)
	assert.Equal(t, "memory", status.Persistence)
	assert.Equal(t, 2, status.Counts["network"])
	assert.Equal(t, "stopped", status.Builder)

	var b dto.Builder
	require.Equal(t, http.StatusOK, env.tool(t, "builder_status", ``, &b))
	assert.Equal(t, "stopped", b.State)
}

func TestServer_VolumeLifecycle(t *testing.T) {
	env := newTestEnv(t, auth.Config{})

	var v dto.Volume
	require.Equal(t, http.StatusOK, env.tool(t, "volume_create", `{"name":"data","size":1024,"labels":{"app":"db"}}`, &v))
	assert.Equal(t, "data", v.Name)
	assert.Equal(t, int64(1024), v.Size)

	require.Equal(t, http.StatusOK, env.tool(t, "image_pull", `{"ref":"nginx"}`, nil))
	require.Equal(t, http.StatusOK, env.tool(t, "container_create",
		`{"image":"nginx","name":"db","mounts":[{"volume":"data","path":"/var/lib/data"}]}`, nil))

	resp := env.batch(t, "volume_delete", `{"names":"data"}`)
	assert.Equal(t, []string{"data=precondition_failed"}, outcomes(resp))

	resp = env.batch(t, "container_delete", `{"ids":"db"}`)
	assert.Equal(t, []string{"db=ok"}, outcomes(resp))

	resp = env.batch(t, "volume_delete", `{"all":true}`)
	assert.Equal(t, []string{"data=ok"}, outcomes(resp))
}

func TestServer_VolumeHumanSize(t *testing.T) {
	env := newTestEnv(t, auth.Config{})

	var v dto.Volume
	require.Equal(t, http.StatusOK, env.tool(t, "volume_create", `{"name":"cache","size":"10MB"}`, &v))
	assert.Equal(t, int64(10<<20), v.Size)
	assert.Equal(t, "10MB", v.SizeHuman)

	var errResp dto.ErrorResponse
	require.Equal(t, http.StatusBadRequest, env.tool(t, "volume_create", `{"name":"bad","size":"huge"}`, &errResp))
	assert.Equal(t, "validation_error", errResp.Error.Kind)
	assert.Equal(t, "size", errResp.Error.Field)

	require.Equal(t, http.StatusBadRequest, env.tool(t, "volume_create", `{"name":"neg","size":-1}`, &errResp))
}

func TestServer_Auth(t *testing.T) {
	env := newTestEnv(t, auth.Config{Enabled: true, TokenSecret: []byte("api-test-secret")})

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/v1/tools", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/rpc", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, nil).Code)

	token, err := env.auth.GenerateToken(env.f.Ctx, "ci", nil, time.Hour)
	require.NoError(t, err)
	headers := map[string]string{"Authorization": "Bearer " + token}
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/v1/tools", "", headers).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/rpc", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, headers).Code)
}

func TestServer_UnknownRoute(t *testing.T) {
	env := newTestEnv(t, auth.Config{})

	rec := env.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Error.Kind)
}
