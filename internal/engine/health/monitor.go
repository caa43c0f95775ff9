package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/biasharahq/platform/internal/engine"
)

const (
	// DefaultTTL is how long a cached verdict stays fresh.
	DefaultTTL = 45 * time.Second

	probeAttempts = 3
)

// Backoff between unreachable probe attempts; one wait fewer than
// probeAttempts.
var probeBackoff = []time.Duration{1 * time.Second, 2 * time.Second}

// Monitor caches engine health per (tenant, engine) with a TTL. It is safe
// for concurrent use; a duplicated probe under race is accepted rather than
// serializing callers behind a slow engine.
type Monitor struct {
	source  ClientSource
	ttl     time.Duration
	clk     clock.Clock
	backoff []time.Duration
	logger  zerolog.Logger

	mu    sync.RWMutex
	cache map[string]Result
}

func NewMonitor(source ClientSource, ttl time.Duration, logger zerolog.Logger) *Monitor {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Monitor{
		source:  source,
		ttl:     ttl,
		clk:     clock.New(),
		backoff: probeBackoff,
		logger:  logger.With().Str("component", "health-monitor").Logger(),
		cache:   make(map[string]Result),
	}
}

// Check returns the engine health for the tenant, probing on cache miss,
// stale entry, or forceRefresh. Failures are cached too, so a down engine
// is not hammered by every status call.
func (m *Monitor) Check(ctx context.Context, tenantID, engineType string, forceRefresh bool) Result {
	key := cacheKey(tenantID, engineType)

	if !forceRefresh {
		m.mu.RLock()
		cached, ok := m.cache[key]
		m.mu.RUnlock()
		if ok && m.clk.Now().Sub(cached.CheckedAt) < m.ttl {
			return cached
		}
	}

	result := m.probe(ctx, tenantID, engineType)

	probesTotal.WithLabelValues(engineType, result.Status).Inc()
	if result.ResponseTimeMS > 0 {
		probeDuration.Observe(float64(result.ResponseTimeMS) / 1000)
	}

	m.mu.Lock()
	m.cache[key] = result
	m.mu.Unlock()

	return result
}

// IsAvailable reports whether the engine is Online or Degraded, using the
// cache like Check does.
func (m *Monitor) IsAvailable(ctx context.Context, tenantID, engineType string) bool {
	return m.Check(ctx, tenantID, engineType, false).Available()
}

// Invalidate drops the cached verdict for one (tenant, engine) pair.
func (m *Monitor) Invalidate(tenantID, engineType string) {
	m.mu.Lock()
	delete(m.cache, cacheKey(tenantID, engineType))
	m.mu.Unlock()
}

// InvalidateTenant drops every cached verdict for the tenant.
func (m *Monitor) InvalidateTenant(tenantID string) {
	prefix := tenantID + "|"
	m.mu.Lock()
	for key := range m.cache {
		if strings.HasPrefix(key, prefix) {
			delete(m.cache, key)
		}
	}
	m.mu.Unlock()
}

// InvalidateAll empties the cache.
func (m *Monitor) InvalidateAll() {
	m.mu.Lock()
	m.cache = make(map[string]Result)
	m.mu.Unlock()
}

// probe runs the authenticated ping, retrying unreachable failures with
// backoff. Engine-level rejections are definitive and classified at once.
func (m *Monitor) probe(ctx context.Context, tenantID, engineType string) Result {
	client, err := m.source.EngineClient(ctx, tenantID, engineType)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownEngine) {
			return Result{
				Status:    StatusNotProvisioned,
				Message:   fmt.Sprintf("no client for engine %q", engineType),
				CheckedAt: m.clk.Now(),
				Error:     err.Error(),
			}
		}
		return Result{
			Status:    StatusNotProvisioned,
			Message:   "engine client could not be resolved",
			CheckedAt: m.clk.Now(),
			Error:     err.Error(),
		}
	}

	var lastErr error
	for attempt := 0; attempt < probeAttempts; attempt++ {
		if attempt > 0 && attempt-1 < len(m.backoff) {
			if wait := m.backoff[attempt-1]; wait > 0 {
				select {
				case <-ctx.Done():
					return m.classify(tenantID, engineType, ctx.Err())
				case <-m.clk.After(wait):
				}
			}
		}

		started := m.clk.Now()
		err := client.Ping(ctx)
		elapsed := m.clk.Now().Sub(started)

		if err == nil {
			return Result{
				Status:         StatusOnline,
				Message:        "engine reachable",
				CheckedAt:      m.clk.Now(),
				ResponseTimeMS: elapsed.Milliseconds(),
			}
		}

		lastErr = err
		if !engine.IsUnreachable(err) {
			// Engine answered but rejected the probe. Retrying will not
			// change an auth verdict.
			break
		}

		m.logger.Warn().
			Str("tenant_id", tenantID).
			Str("engine", engineType).
			Int("attempt", attempt+1).
			Err(err).
			Msg("engine probe failed")
	}

	return m.classify(tenantID, engineType, lastErr)
}

func (m *Monitor) classify(tenantID, engineType string, err error) Result {
	result := Result{
		CheckedAt: m.clk.Now(),
		Error:     err.Error(),
	}

	if engine.IsUnreachable(err) {
		result.Status = StatusOffline
		result.Message = "engine unreachable"
	} else {
		result.Status = StatusDegraded
		result.Message = "engine reachable but rejecting requests"
	}

	m.logger.Warn().
		Str("tenant_id", tenantID).
		Str("engine", engineType).
		Str("status", result.Status).
		Err(err).
		Msg("engine health degraded")

	return result
}

func cacheKey(tenantID, engineType string) string {
	return tenantID + "|" + engineType
}
