// Package system implements the read-only system and registry facade.
package system

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/samber/lo"

	"github.com/bnema/acms/internal/boundaries/in"
	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/domain"
	"github.com/bnema/acms/pkg/duration"
)

// Ensure Service implements in.SystemService.
var _ in.SystemService = (*Service)(nil)

// maxLogLine bounds a single JSON log line.
const maxLogLine = 1 << 20

// Config holds configuration needed by the system service.
type Config struct {
	Version         string
	Commit          string
	StartedAt       time.Time
	Persistence     string
	LogFile         string
	DNSDomains      []string
	DNSDefault      string
	DefaultRegistry string
}

type builderStatus interface {
	Status(ctx context.Context) *domain.Builder
}

// Service reports server state.
type Service struct {
	runtime out.ContainerRuntime
	store   out.ResourceStore
	builder builderStatus
	config  Config
	now     func() time.Time
}

// NewService creates a new system service.
func NewService(runtime out.ContainerRuntime, store out.ResourceStore, builder builderStatus, config Config) *Service {
	if config.StartedAt.IsZero() {
		config.StartedAt = time.Now()
	}
	return &Service{
		runtime: runtime,
		store:   store,
		builder: builder,
		config:  config,
		now:     time.Now,
	}
}

// Status summarizes the running server.
func (s *Service) Status(ctx context.Context) (*domain.SystemStatus, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "SystemStatus",
	})
	log := zerowrap.FromCtx(ctx)

	runtimeVersion, err := s.runtime.Version(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("runtime version unavailable")
		runtimeVersion = "unavailable"
	}

	status := &domain.SystemStatus{
		Version:        s.config.Version,
		Commit:         s.config.Commit,
		StartedAt:      s.config.StartedAt,
		Uptime:         s.now().Sub(s.config.StartedAt).Truncate(time.Second),
		Runtime:        s.runtime.Name(),
		RuntimeVersion: runtimeVersion,
		Persistence:    s.config.Persistence,
		Counts:         s.store.Counts(ctx),
		Builder:        domain.BuilderStateStopped,
	}
	if s.builder != nil {
		status.Builder = s.builder.Status(ctx).State
	}
	return status, nil
}

// logLine is the subset of a zerolog JSON line the facade reports.
type logLine struct {
	Time    json.RawMessage `json:"time"`
	Level   string          `json:"level"`
	Message string          `json:"message"`
}

// Logs returns server log entries written within the last window.
func (s *Service) Logs(ctx context.Context, last string) ([]domain.LogEntry, error) {
	window, err := duration.Window(last)
	if err != nil {
		return nil, domain.NewValidationError("last", last, err.Error())
	}
	if s.config.LogFile == "" {
		return nil, domain.ErrLogsNotConfigured
	}

	f, err := os.Open(s.config.LogFile)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.LogEntry{}, nil
	}
	if err != nil {
		return nil, zerowrap.FromCtx(ctx).WrapErr(err, "failed to open log file")
	}
	defer f.Close()

	since := s.now().Add(-window)
	entries := []domain.LogEntry{}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLogLine)
	for scanner.Scan() {
		raw := scanner.Text()
		var line logLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			continue
		}
		ts, ok := parseLogTime(line.Time)
		if !ok || ts.Before(since) {
			continue
		}
		entries = append(entries, domain.LogEntry{
			Time:    ts,
			Level:   line.Level,
			Message: line.Message,
			Raw:     raw,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, zerowrap.FromCtx(ctx).WrapErr(err, "failed to read log file")
	}
	return entries, nil
}

// parseLogTime accepts RFC 3339 strings and unix timestamps in seconds.
func parseLogTime(raw json.RawMessage) (time.Time, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		ts, err := time.Parse(time.RFC3339Nano, text)
		return ts, err == nil
	}
	secs, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, int64(secs*float64(time.Second))), true
}

// DNSList returns the configured local DNS domains.
func (s *Service) DNSList(_ context.Context) []domain.DNSDomain {
	return lo.Map(s.config.DNSDomains, func(name string, _ int) domain.DNSDomain {
		return domain.DNSDomain{Name: name, Default: name == s.config.DNSDefault}
	})
}

// DNSDefault returns the default DNS domain.
func (s *Service) DNSDefault(_ context.Context) (*domain.DNSDomain, error) {
	if s.config.DNSDefault == "" {
		return nil, domain.ErrDNSNotConfigured
	}
	return &domain.DNSDomain{Name: s.config.DNSDefault, Default: true}, nil
}

// DefaultRegistry returns the registry used for unqualified image references.
func (s *Service) DefaultRegistry(_ context.Context) string {
	return s.config.DefaultRegistry
}
