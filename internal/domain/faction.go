package domain

import "time"

// Faction aggregates season stats over its current members
type Faction struct {
	Name        string   `json:"name"`
	Tag         string   `json:"tag,omitempty"`
	Totals      Counters `json:"totals"`
	MemberCount int      `json:"member_count"`
	Score       float64  `json:"score"`
}

// ScoringConfig holds the faction score multipliers
type ScoringConfig struct {
	ZombieKill float64   `json:"zombie_kill_multiplier"`
	PlayerKill float64   `json:"player_kill_multiplier"`
	Currency   float64   `json:"economy_multiplier"`
	Survival   float64   `json:"survival_multiplier"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// DefaultScoringConfig is used until an administrator saves a configuration
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		ZombieKill: 3.0,
		PlayerKill: 10.0,
		Currency:   0.02,
		Survival:   0.05,
	}
}

// Leaderboard category IDs
const (
	CategoryZombieKills = "zombie_kills"
	CategoryPlayerKills = "player_kills"
	CategoryEconomy     = "economy"
	CategoryFactions    = "factions"
)

// LeaderboardCategory controls whether a leaderboard tab is computed and shown
type LeaderboardCategory struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Enabled      bool   `json:"enabled"`
	DisplayOrder int    `json:"display_order"`
}

// DefaultCategories is the category list when nothing is configured
func DefaultCategories() []LeaderboardCategory {
	return []LeaderboardCategory{
		{ID: CategoryZombieKills, Label: "Undead Slayers", Enabled: true, DisplayOrder: 1},
		{ID: CategoryPlayerKills, Label: "Most Wanted", Enabled: true, DisplayOrder: 2},
		{ID: CategoryEconomy, Label: "Tycoons", Enabled: true, DisplayOrder: 3},
		{ID: CategoryFactions, Label: "Factions", Enabled: true, DisplayOrder: 4},
	}
}
