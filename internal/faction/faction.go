// Package faction ranks factions by their members' season stats.
package faction

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ernie/survivor-stats/internal/domain"
)

// ErrInvalidScoring is returned for multipliers that are negative or not finite
var ErrInvalidScoring = errors.New("invalid scoring multiplier")

// Score is the weighted sum of counters, rounded to 2 decimal places
func Score(c domain.Counters, cfg domain.ScoringConfig) float64 {
	raw := float64(c.ZombieKills)*cfg.ZombieKill +
		float64(c.PlayerKills)*cfg.PlayerKill +
		c.CurrencyEarned*cfg.Currency +
		c.HoursSurvived*cfg.Survival
	return math.Round(raw*100) / 100
}

// Aggregate groups players by faction name and ranks the factions by score,
// highest first. Players without a faction are left out. Ties keep the order
// in which the factions were first seen.
func Aggregate(players []domain.SeasonPlayerStats, cfg domain.ScoringConfig) []domain.Faction {
	index := make(map[string]int)
	var factions []domain.Faction
	for _, p := range players {
		name := p.Player.FactionName
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(factions)
			index[name] = i
			factions = append(factions, domain.Faction{Name: name, Tag: p.Player.FactionTag})
		}
		f := &factions[i]
		if f.Tag == "" {
			f.Tag = p.Player.FactionTag
		}
		f.Totals.ZombieKills += p.Season.ZombieKills
		f.Totals.PlayerKills += p.Season.PlayerKills
		f.Totals.HoursSurvived += p.Season.HoursSurvived
		f.Totals.CurrencyEarned += p.Season.CurrencyEarned
		f.MemberCount++
	}

	for i := range factions {
		factions[i].Score = Score(factions[i].Totals, cfg)
	}
	sort.SliceStable(factions, func(i, j int) bool {
		return factions[i].Score > factions[j].Score
	})
	return factions
}

// ValidateScoringConfig rejects multipliers that would produce meaningless scores
func ValidateScoringConfig(cfg domain.ScoringConfig) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"zombie_kill_multiplier", cfg.ZombieKill},
		{"player_kill_multiplier", cfg.PlayerKill},
		{"economy_multiplier", cfg.Currency},
		{"survival_multiplier", cfg.Survival},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidScoring, f.name, f.value)
		}
	}
	return nil
}
