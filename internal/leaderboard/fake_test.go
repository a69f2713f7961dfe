package leaderboard

import (
	"context"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/reconcile"
)

type FakeStats struct {
	players []domain.PlayerLifetimeStats
}

func (f *FakeStats) FetchAllCurrentStats(ctx context.Context) []domain.PlayerLifetimeStats {
	return f.players
}

type FakeSeasons struct {
	GetActiveSeasonFunc func(ctx context.Context) (*domain.Season, error)
}

func (f *FakeSeasons) GetActiveSeason(ctx context.Context) (*domain.Season, error) {
	if f.GetActiveSeasonFunc != nil {
		return f.GetActiveSeasonFunc(ctx)
	}
	return nil, nil
}

type FakeSettings struct {
	GetScoringConfigFunc          func(ctx context.Context) (domain.ScoringConfig, error)
	ListLeaderboardCategoriesFunc func(ctx context.Context) ([]domain.LeaderboardCategory, error)
}

func (f *FakeSettings) GetScoringConfig(ctx context.Context) (domain.ScoringConfig, error) {
	if f.GetScoringConfigFunc != nil {
		return f.GetScoringConfigFunc(ctx)
	}
	return domain.DefaultScoringConfig(), nil
}

func (f *FakeSettings) ListLeaderboardCategories(ctx context.Context) ([]domain.LeaderboardCategory, error) {
	if f.ListLeaderboardCategoriesFunc != nil {
		return f.ListLeaderboardCategoriesFunc(ctx)
	}
	return nil, nil
}

// FakeReconciler subtracts a fixed baseline per player key
type FakeReconciler struct {
	trace    []string
	baseline map[string]domain.PlayerSeasonSnapshot
}

func (f *FakeReconciler) SeasonStats(ctx context.Context, season *domain.Season, players []domain.PlayerLifetimeStats) []domain.SeasonPlayerStats {
	f.trace = append(f.trace, "SeasonStats")
	if season == nil {
		return reconcile.LifetimeStandings(players)
	}
	snaps := make([]domain.PlayerSeasonSnapshot, 0, len(f.baseline))
	for _, s := range f.baseline {
		snaps = append(snaps, s)
	}
	return reconcile.Standings(players, reconcile.NewBaseline(snaps))
}
