package faction

import (
	"math"
	"testing"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(key, faction string, c domain.Counters) domain.SeasonPlayerStats {
	return domain.SeasonPlayerStats{
		Player: domain.PlayerLifetimeStats{PlayerKey: key, FactionName: faction, FactionTag: faction[:1]},
		Season: c,
	}
}

func TestScoreFormula(t *testing.T) {
	got := Score(domain.Counters{ZombieKills: 100, PlayerKills: 10, CurrencyEarned: 5000, HoursSurvived: 200}, domain.DefaultScoringConfig())
	assert.Equal(t, 510.00, got)
}

func TestScoreRoundsToCents(t *testing.T) {
	cfg := domain.ScoringConfig{Currency: 0.02}
	assert.Equal(t, 0.07, Score(domain.Counters{CurrencyEarned: 3.3}, cfg))
}

func TestAggregateSumsAndRanks(t *testing.T) {
	players := []domain.SeasonPlayerStats{
		member("a", "Wardens", domain.Counters{ZombieKills: 60, PlayerKills: 4, CurrencyEarned: 3000, HoursSurvived: 120}),
		member("b", "Raiders", domain.Counters{ZombieKills: 500}),
		member("c", "Wardens", domain.Counters{ZombieKills: 40, PlayerKills: 6, CurrencyEarned: 2000, HoursSurvived: 80}),
		{Player: domain.PlayerLifetimeStats{PlayerKey: "loner"}, Season: domain.Counters{ZombieKills: 9999}},
	}

	got := Aggregate(players, domain.DefaultScoringConfig())
	want := []domain.Faction{
		{Name: "Raiders", Tag: "R", Totals: domain.Counters{ZombieKills: 500}, MemberCount: 1, Score: 1500},
		{Name: "Wardens", Tag: "W", Totals: domain.Counters{ZombieKills: 100, PlayerKills: 10, CurrencyEarned: 5000, HoursSurvived: 200}, MemberCount: 2, Score: 510},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateTiesKeepDiscoveryOrder(t *testing.T) {
	players := []domain.SeasonPlayerStats{
		member("a", "Beta", domain.Counters{ZombieKills: 1}),
		member("b", "Alpha", domain.Counters{ZombieKills: 1}),
		member("c", "Gamma", domain.Counters{ZombieKills: 1}),
	}
	got := Aggregate(players, domain.DefaultScoringConfig())
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Beta", "Alpha", "Gamma"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, domain.DefaultScoringConfig()))
}

func TestValidateScoringConfig(t *testing.T) {
	assert.NoError(t, ValidateScoringConfig(domain.DefaultScoringConfig()))
	assert.NoError(t, ValidateScoringConfig(domain.ScoringConfig{}))

	for _, cfg := range []domain.ScoringConfig{
		{ZombieKill: -1},
		{PlayerKill: math.NaN()},
		{Currency: math.Inf(1)},
		{Survival: -0.01},
	} {
		assert.ErrorIs(t, ValidateScoringConfig(cfg), ErrInvalidScoring)
	}
}
