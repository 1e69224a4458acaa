package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/zerowrap"
)

const pidFileName = "acms.pid"

// createPidFile writes the current PID into the data directory, falling
// back to the temp directory. Returns "" when neither is writable.
func createPidFile(dataDir string, log zerowrap.Logger) string {
	pid := os.Getpid()

	locations := []string{filepath.Join(os.TempDir(), "acms", pidFileName)}
	if dataDir != "" {
		locations = append([]string{pidPath(dataDir)}, locations...)
	}

	for _, location := range locations {
		if err := os.MkdirAll(filepath.Dir(location), 0700); err != nil {
			continue
		}
		if err := os.WriteFile(location, []byte(strconv.Itoa(pid)), 0600); err == nil {
			log.Debug().Str("pid_file", location).Int("pid", pid).Msg("created PID file")
			return location
		}
	}

	log.Warn().Int("pid", pid).Msg("failed to create PID file in any location")
	return ""
}

func pidPath(dataDir string) string {
	return filepath.Join(dataDir, pidFileName)
}

func removePidFile(pidFile string, log zerowrap.Logger) {
	if pidFile == "" {
		return
	}
	if err := os.Remove(pidFile); err != nil {
		log.Warn().Err(err).Str("pid_file", pidFile).Msg("failed to remove PID file")
	} else {
		log.Debug().Str("pid_file", pidFile).Msg("removed PID file")
	}
}

// readPidFile returns the PID recorded in a PID file.
func readPidFile(pidFile string) (int, error) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file %s: %w", pidFile, err)
	}
	return pid, nil
}
