package in

import (
	"context"

	"github.com/bnema/acms/internal/domain"
)

// SystemService defines the read-only system and registry facade.
type SystemService interface {
	Status(ctx context.Context) (*domain.SystemStatus, error)

	// Logs returns server log entries written within the last window,
	// e.g. "5m" or "1d".
	Logs(ctx context.Context, last string) ([]domain.LogEntry, error)

	DNSList(ctx context.Context) []domain.DNSDomain
	DNSDefault(ctx context.Context) (*domain.DNSDomain, error)

	// DefaultRegistry returns the registry used for unqualified image references.
	DefaultRegistry(ctx context.Context) string
}
