package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "acms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestInitConfig_Defaults(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfig(t, "server:\n  data_dir: "+dataDir+"\n")

	_, cfg, err := initConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8765", cfg.Server.Addr)
	assert.Empty(t, cfg.Server.TLS.CertFile)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sandbox", cfg.Runtime.Driver)
	assert.Equal(t, "memory", cfg.Store.Persistence)
	assert.Equal(t, filepath.Join(dataDir, "acms.db"), cfg.Store.Path)
	assert.Equal(t, 10*time.Second, cfg.Containers.StopGrace)
	assert.Equal(t, 30*time.Second, cfg.Containers.ExecTimeout)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.Equal(t, []string{"default", "bridge"}, cfg.Networks.Defaults)
	assert.Equal(t, "docker.io", cfg.Registry.Default)
	assert.Equal(t, "acms", cfg.Auth.Issuer)
	assert.False(t, cfg.Auth.Enabled)
	assert.True(t, cfg.API.RateLimit.Enabled)
	assert.Equal(t, 100, cfg.API.RateLimit.Burst)
	assert.True(t, cfg.Metrics.Enabled)
	assert.InDelta(t, 1.0, cfg.Telemetry.TraceSampleRate, 0.0001)
}

func TestInitConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9000"
  data_dir: /tmp/acms-test
containers:
  stop_grace: 3s
  auto_pull: true
networks:
  defaults: [default]
volumes:
  protected: [data]
dns:
  domains: [acms.local, dev.local]
  default: acms.local
api:
  rate_limit:
    enabled: false
    rps: 2.5
`)

	_, cfg, err := initConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Containers.StopGrace)
	assert.True(t, cfg.Containers.AutoPull)
	assert.Equal(t, []string{"default"}, cfg.Networks.Defaults)
	assert.Equal(t, []string{"data"}, cfg.Volumes.Protected)
	assert.Equal(t, []string{"acms.local", "dev.local"}, cfg.DNS.Domains)
	assert.Equal(t, "acms.local", cfg.DNS.Default)
	assert.False(t, cfg.API.RateLimit.Enabled)
	assert.InDelta(t, 2.5, cfg.API.RateLimit.RPS, 0.0001)
	assert.Equal(t, "/tmp/acms-test/acms.db", cfg.Store.Path)
}

func TestInitConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":1111\"\n")
	t.Setenv("ACMS_SERVER_ADDR", ":2222")
	t.Setenv("ACMS_BATCH_CONCURRENCY", "3")
	t.Setenv("ACMS_AUTH_ENABLED", "true")
	t.Setenv("ACMS_AUTH_TOKEN_SECRET", "s3cret")

	_, cfg, err := initConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":2222", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Batch.Concurrency)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.TokenSecret)
}

func TestInitConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown driver", "runtime:\n  driver: podman\n", "unknown runtime driver"},
		{"unknown persistence", "store:\n  persistence: redis\n", "unknown store persistence"},
		{"zero concurrency", "batch:\n  concurrency: 0\n", "batch.concurrency"},
		{"tls cert without key", "server:\n  tls:\n    cert_file: /tmp/acms.crt\n", "server.tls"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := initConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitConfig_MissingExplicitFile(t *testing.T) {
	_, _, err := initConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestEffectiveConfig_RedactsSecrets(t *testing.T) {
	path := writeConfig(t, `
auth:
  enabled: true
  token_secret: very-secret
telemetry:
  auth_token: dXNlcjpwYXNz
`)

	out, err := EffectiveConfig(path)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "very-secret")
	assert.NotContains(t, string(out), "dXNlcjpwYXNz")

	var settings map[string]any
	require.NoError(t, yaml.Unmarshal(out, &settings))
	authSettings := settings["auth"].(map[string]any)
	assert.Equal(t, redacted, authSettings["token_secret"])
	assert.Equal(t, true, authSettings["enabled"])
}

func TestEffectiveConfig_EmptySecretNotRedacted(t *testing.T) {
	out, err := EffectiveConfig(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)
	assert.NotContains(t, string(out), redacted)
	assert.Contains(t, string(out), "level: debug")
}
