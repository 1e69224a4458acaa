// Package ratelimit provides the request rate limiter used by the API server.
package ratelimit

import (
	"github.com/bnema/zerowrap"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Ensure MemoryStore satisfies echo's limiter store.
var _ middleware.RateLimiterStore = (*MemoryStore)(nil)

// DefaultMaxKeys bounds the number of per-client limiters kept in memory.
const DefaultMaxKeys = 4096

// Config holds rate limit settings.
type Config struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
	// GlobalRPS caps the whole server, 0 disables the global limit.
	GlobalRPS float64 `mapstructure:"global_rps"`
}

// MemoryStore is an in-memory rate limiter using golang.org/x/time/rate.
// Each client key gets its own limiter. Least recently seen keys are evicted
// once more than DefaultMaxKeys are tracked.
type MemoryStore struct {
	limiters *lru.Cache[string, *rate.Limiter]
	global   *rate.Limiter
	rps      float64
	burst    int
	log      zerowrap.Logger
}

// NewMemoryStore creates a new in-memory rate limiter store.
func NewMemoryStore(cfg Config, log zerowrap.Logger) *MemoryStore {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	limiters, _ := lru.New[string, *rate.Limiter](DefaultMaxKeys)

	s := &MemoryStore{
		limiters: limiters,
		rps:      cfg.RPS,
		burst:    burst,
		log:      log,
	}
	if cfg.GlobalRPS > 0 {
		s.global = rate.NewLimiter(rate.Limit(cfg.GlobalRPS), max(burst, int(cfg.GlobalRPS)))
	}
	return s
}

// Allow reports whether a request from identifier may proceed.
func (s *MemoryStore) Allow(identifier string) (bool, error) {
	if s.global != nil && !s.global.Allow() {
		s.log.Debug().Str("client", identifier).Msg("global rate limit exceeded")
		return false, nil
	}
	if !s.limiter(identifier).Allow() {
		s.log.Debug().Str("client", identifier).Msg("client rate limit exceeded")
		return false, nil
	}
	return true, nil
}

// Len returns the number of tracked client keys.
func (s *MemoryStore) Len() int {
	return s.limiters.Len()
}

func (s *MemoryStore) limiter(key string) *rate.Limiter {
	if limiter, ok := s.limiters.Get(key); ok {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Limit(s.rps), s.burst)
	// Concurrent first requests may race here; the loser's limiter wins the slot.
	if existing, ok, _ := s.limiters.PeekOrAdd(key, limiter); ok {
		return existing
	}
	return limiter
}
