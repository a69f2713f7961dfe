package gamestatus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/metrics"
)

// queryTimeout bounds one shared refresh, independent of the caller that started it
const queryTimeout = 5 * time.Second

// Cache serves the last successful status for ttl. Failed queries are not
// cached, so the next request tries the server again.
type Cache struct {
	querier    Querier
	ttl        time.Duration
	maxPlayers int
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	timeout    time.Duration

	group     singleflight.Group
	mu        sync.Mutex
	status    *domain.ServerStatus
	fetchedAt time.Time
}

// NewCache wraps querier with a TTL cache. A nil querier always reports offline.
func NewCache(querier Querier, ttl time.Duration, maxPlayers int, logger *slog.Logger, m *metrics.Metrics) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		querier:    querier,
		ttl:        ttl,
		maxPlayers: maxPlayers,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
		timeout:    queryTimeout,
	}
}

// Status returns the cached status if fresh, otherwise queries the server.
// It never fails: an unreachable server is reported as offline.
func (c *Cache) Status(ctx context.Context) *domain.ServerStatus {
	if c.querier == nil {
		return domain.OfflineStatus(c.maxPlayers, c.now().UTC())
	}
	if s := c.cached(); s != nil {
		return s
	}

	v, _, _ := c.group.Do("status", func() (any, error) {
		// another caller may have refreshed while we waited
		if s := c.cached(); s != nil {
			return s, nil
		}
		// waiters share this query, so one caller going away must not cancel it
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		status, err := c.querier.QueryStatus(qctx)
		if err != nil {
			c.logger.Warn("game server query failed", "error", err)
			c.metrics.StatusQuery(false)
			return domain.OfflineStatus(c.maxPlayers, c.now().UTC()), nil
		}
		c.metrics.StatusQuery(true)

		c.mu.Lock()
		c.status = status
		c.fetchedAt = c.now()
		c.mu.Unlock()
		return status, nil
	})
	s := *v.(*domain.ServerStatus)
	return &s
}

func (c *Cache) cached() *domain.ServerStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil
	}
	s := *c.status
	return &s
}
