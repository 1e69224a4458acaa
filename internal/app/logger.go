package app

import (
	"fmt"
	"path/filepath"

	"github.com/bnema/zerowrap"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// initLogger creates the process logger. The logger itself is built at
// trace level; the zerolog global level does the filtering so it can be
// changed at runtime by watchLogLevel.
func initLogger(cfg Config) (zerowrap.Logger, func(), error) {
	level, err := parseLevel(cfg.Logging.Level)
	if err != nil {
		return zerowrap.Default(), nil, err
	}

	logCfg := zerowrap.Config{
		Level:  zerolog.LevelTraceValue,
		Format: cfg.Logging.Format,
	}

	if !cfg.Logging.File.Enabled {
		log := zerowrap.New(logCfg)
		zerolog.SetGlobalLevel(level)
		return log, func() {}, nil
	}

	log, cleanup, err := zerowrap.NewWithFile(logCfg, zerowrap.FileConfig{
		Enabled:    true,
		Path:       resolveLogFilePath(cfg),
		MaxSize:    cfg.Logging.File.MaxSize,
		MaxBackups: cfg.Logging.File.MaxBackups,
		MaxAge:     cfg.Logging.File.MaxAge,
		Compress:   true,
	})
	if err != nil {
		return zerowrap.Default(), nil, fmt.Errorf("failed to create logger with file: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	return log, cleanup, nil
}

// resolveLogFilePath returns the log file path, or "" when file logging is off.
func resolveLogFilePath(cfg Config) string {
	if !cfg.Logging.File.Enabled {
		return ""
	}
	if cfg.Logging.File.Path != "" {
		return cfg.Logging.File.Path
	}
	return filepath.Join(cfg.Server.DataDir, "logs", "acms.log")
}

func parseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// watchLogLevel re-applies logging.level whenever the config file changes.
// Other settings need a restart.
func watchLogLevel(v *viper.Viper, log zerowrap.Logger) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		level, err := parseLevel(v.GetString("logging.level"))
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("ignoring config change")
			return
		}
		if level != zerolog.GlobalLevel() {
			zerolog.SetGlobalLevel(level)
			log.Info().Str("level", level.String()).Msg("log level changed")
		}
	})
	v.WatchConfig()
}
