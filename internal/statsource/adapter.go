package statsource

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ernie/survivor-stats/internal/domain"
)

// BlacklistReader supplies the usernames hidden from every leaderboard
type BlacklistReader interface {
	BlacklistedUsernames(ctx context.Context) ([]string, error)
}

// Adapter reads current lifetime stats and removes blacklisted players
type Adapter struct {
	source    Source
	blacklist BlacklistReader
	logger    *slog.Logger
}

// NewAdapter wraps source. blacklist may be nil.
func NewAdapter(source Source, blacklist BlacklistReader, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{source: source, blacklist: blacklist, logger: logger}
}

// Fetch returns every non-blacklisted player or an error if the source cannot be read.
// Season lifecycle operations use it so they never archive an empty standings table.
func (a *Adapter) Fetch(ctx context.Context) ([]domain.PlayerLifetimeStats, error) {
	if a.source == nil {
		return nil, ErrSourceUnavailable
	}
	players, err := a.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return a.filter(ctx, players), nil
}

// FetchAllCurrentStats is Fetch for read paths: a failed read is logged and
// yields an empty list.
func (a *Adapter) FetchAllCurrentStats(ctx context.Context) []domain.PlayerLifetimeStats {
	players, err := a.Fetch(ctx)
	if err != nil {
		a.logger.Error("failed to fetch player stats", "error", err)
		return []domain.PlayerLifetimeStats{}
	}
	return players
}

func (a *Adapter) filter(ctx context.Context, players []domain.PlayerLifetimeStats) []domain.PlayerLifetimeStats {
	if a.blacklist == nil {
		return players
	}
	names, err := a.blacklist.BlacklistedUsernames(ctx)
	if err != nil {
		a.logger.Warn("failed to read blacklist, serving unfiltered stats", "error", err)
		return players
	}
	if len(names) == 0 {
		return players
	}

	blocked := make(map[string]bool, len(names))
	for _, n := range names {
		blocked[strings.ToLower(n)] = true
	}
	out := make([]domain.PlayerLifetimeStats, 0, len(players))
	for _, p := range players {
		if blocked[strings.ToLower(p.PlayerKey)] {
			continue
		}
		out = append(out, p)
	}
	return out
}
