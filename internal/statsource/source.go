// Package statsource reads the cumulative player statistics written by the game server.
package statsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/metrics"
)

// ErrSourceUnavailable is returned when no configured source could be read
var ErrSourceUnavailable = errors.New("stat source unavailable")

// Source is one backing store of lifetime player stats
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.PlayerLifetimeStats, error)
}

// ChainSource tries each source in order and returns the first successful read
type ChainSource struct {
	sources []Source
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewChainSource builds a chain. Put the preferred source first.
func NewChainSource(logger *slog.Logger, m *metrics.Metrics, sources ...Source) *ChainSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChainSource{sources: sources, logger: logger, metrics: m}
}

// Name lists the chained sources
func (c *ChainSource) Name() string {
	name := "chain"
	for _, s := range c.sources {
		name += ":" + s.Name()
	}
	return name
}

// Fetch returns the first source that reads successfully
func (c *ChainSource) Fetch(ctx context.Context) ([]domain.PlayerLifetimeStats, error) {
	var errs []error
	for _, s := range c.sources {
		start := time.Now()
		players, err := s.Fetch(ctx)
		c.metrics.ObserveFetch(s.Name(), time.Since(start))
		if err == nil {
			return players, nil
		}
		c.metrics.SourceFailed(s.Name())
		c.logger.Warn("stat source failed, trying next", "source", s.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, ErrSourceUnavailable
	}
	return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, errors.Join(errs...))
}
