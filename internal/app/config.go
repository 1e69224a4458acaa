// Package app provides the application initialization and wiring.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bnema/acms/internal/adapters/out/ratelimit"
	"github.com/bnema/acms/internal/adapters/out/telemetry"
)

// EnvPrefix prefixes every environment override, e.g. ACMS_SERVER_ADDR.
const EnvPrefix = "ACMS"

// Config holds the application configuration.
type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr"`
		DataDir         string        `mapstructure:"data_dir"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		TLS             struct {
			CertFile string `mapstructure:"cert_file"`
			KeyFile  string `mapstructure:"key_file"`
		} `mapstructure:"tls"`
	} `mapstructure:"server"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		File   struct {
			Enabled    bool   `mapstructure:"enabled"`
			Path       string `mapstructure:"path"`
			MaxSize    int    `mapstructure:"max_size"`
			MaxBackups int    `mapstructure:"max_backups"`
			MaxAge     int    `mapstructure:"max_age"`
		} `mapstructure:"file"`
	} `mapstructure:"logging"`

	Runtime struct {
		Driver     string `mapstructure:"driver"` // "sandbox" or "docker"
		MinVersion string `mapstructure:"min_version"`
	} `mapstructure:"runtime"`

	Store struct {
		Persistence string `mapstructure:"persistence"` // "memory" or "sqlite"
		Path        string `mapstructure:"path"`
	} `mapstructure:"store"`

	Containers struct {
		StopGrace       time.Duration `mapstructure:"stop_grace"`
		ExecTimeout     time.Duration `mapstructure:"exec_timeout"`
		StartTimeout    time.Duration `mapstructure:"start_timeout"`
		AutoPull        bool          `mapstructure:"auto_pull"`
		MonitorInterval time.Duration `mapstructure:"monitor_interval"`
	} `mapstructure:"containers"`

	Batch struct {
		Concurrency int `mapstructure:"concurrency"`
	} `mapstructure:"batch"`

	Networks struct {
		Defaults []string `mapstructure:"defaults"`
	} `mapstructure:"networks"`

	Volumes struct {
		Protected []string `mapstructure:"protected"`
	} `mapstructure:"volumes"`

	Builder struct {
		Name         string        `mapstructure:"name"`
		Image        string        `mapstructure:"image"`
		StartTimeout time.Duration `mapstructure:"start_timeout"`
	} `mapstructure:"builder"`

	Registry struct {
		Default string `mapstructure:"default"`
	} `mapstructure:"registry"`

	DNS struct {
		Domains []string `mapstructure:"domains"`
		Default string   `mapstructure:"default"`
	} `mapstructure:"dns"`

	Auth struct {
		Enabled     bool   `mapstructure:"enabled"`
		TokenSecret string `mapstructure:"token_secret"`
		Issuer      string `mapstructure:"issuer"`
	} `mapstructure:"auth"`

	API struct {
		RateLimit ratelimit.Config `mapstructure:"rate_limit"`
	} `mapstructure:"api"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`

	Telemetry telemetry.Config `mapstructure:"telemetry"`
}

// initConfig loads configuration from file and environment.
func initConfig(configPath string) (*viper.Viper, Config, error) {
	v := viper.New()
	if err := loadConfig(v, configPath); err != nil {
		return nil, Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(cfg.Server.DataDir, "acms.db")
	}

	if err := validateConfig(cfg); err != nil {
		return nil, Config{}, err
	}
	return v, cfg, nil
}

func validateConfig(cfg Config) error {
	switch cfg.Runtime.Driver {
	case "sandbox", "docker":
	default:
		return fmt.Errorf("unknown runtime driver %q (want sandbox or docker)", cfg.Runtime.Driver)
	}
	switch cfg.Store.Persistence {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown store persistence %q (want memory or sqlite)", cfg.Store.Persistence)
	}
	if cfg.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1")
	}
	if (cfg.Server.TLS.CertFile == "") != (cfg.Server.TLS.KeyFile == "") {
		return fmt.Errorf("server.tls.cert_file and server.tls.key_file must be set together")
	}
	return nil
}

// loadConfig sets defaults, then reads the config file and environment.
func loadConfig(v *viper.Viper, configPath string) error {
	v.SetDefault("server.addr", "127.0.0.1:8765")
	v.SetDefault("server.data_dir", DefaultDataDir())
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.tls.cert_file", "")
	v.SetDefault("server.tls.key_file", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.enabled", false)
	v.SetDefault("logging.file.path", "")
	v.SetDefault("logging.file.max_size", 100)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age", 28)
	v.SetDefault("runtime.driver", "sandbox")
	v.SetDefault("runtime.min_version", "")
	v.SetDefault("store.persistence", "memory")
	v.SetDefault("store.path", "") // defaults to {data_dir}/acms.db when empty
	v.SetDefault("containers.stop_grace", "10s")
	v.SetDefault("containers.exec_timeout", "30s")
	v.SetDefault("containers.start_timeout", "30s")
	v.SetDefault("containers.auto_pull", false)
	v.SetDefault("containers.monitor_interval", "5s")
	v.SetDefault("batch.concurrency", 8)
	v.SetDefault("networks.defaults", []string{"default", "bridge"})
	v.SetDefault("volumes.protected", []string{})
	v.SetDefault("builder.name", "acms-builder")
	v.SetDefault("builder.image", "moby/buildkit:latest")
	v.SetDefault("builder.start_timeout", "60s")
	v.SetDefault("registry.default", "docker.io")
	v.SetDefault("dns.domains", []string{})
	v.SetDefault("dns.default", "")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token_secret", "")
	v.SetDefault("auth.issuer", "acms")
	v.SetDefault("api.rate_limit.enabled", true)
	v.SetDefault("api.rate_limit.rps", 50)
	v.SetDefault("api.rate_limit.burst", 100)
	v.SetDefault("api.rate_limit.global_rps", 0)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.auth_token", "")
	v.SetDefault("telemetry.trace_sample_rate", 1.0)

	ConfigureViper(v, configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return nil
}

// DefaultDataDir returns the default data directory path.
// Uses ~/.acms for user installations, /var/lib/acms as fallback.
func DefaultDataDir() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".acms")
	}
	return "/var/lib/acms"
}

// ConfigureViper sets up viper with standard config file search paths.
// Config file: acms.yaml
// Search paths (in order): current directory, $XDG_CONFIG_HOME/acms, /etc/acms
func ConfigureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.SetConfigName("acms")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "acms"))
	}
	v.AddConfigPath("/etc/acms")
}

// redacted replaces secret values in the printed configuration.
const redacted = "********"

// EffectiveConfig renders the configuration the server would run with as
// YAML. Secrets are redacted.
func EffectiveConfig(configPath string) ([]byte, error) {
	v, _, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	settings := v.AllSettings()
	for _, key := range []string{"auth.token_secret", "telemetry.auth_token"} {
		if v.GetString(key) != "" {
			setNested(settings, key, redacted)
		}
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return out, nil
}

func setNested(settings map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	m := settings
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			return
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}
