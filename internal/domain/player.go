package domain

import (
	"strings"
	"time"
)

// Counters holds the four cumulative statistics tracked per player
type Counters struct {
	ZombieKills    int64   `json:"zombie_kills"`
	PlayerKills    int64   `json:"player_kills"`
	HoursSurvived  float64 `json:"hours_survived"`
	CurrencyEarned float64 `json:"currency_earned"`
}

// PlayerLifetimeStats is one player's cumulative record as written by the game server.
// PlayerKey is the account username; PlatformID is the Steam ID used before snapshots
// were keyed by username.
type PlayerLifetimeStats struct {
	PlayerKey      string    `json:"player_key"`
	PlatformID     string    `json:"platform_id,omitempty"`
	DisplayName    string    `json:"display_name,omitempty"` // steam name
	CharacterName  string    `json:"character_name,omitempty"`
	Profession     string    `json:"profession,omitempty"`
	FactionName    string    `json:"faction_name,omitempty"`
	FactionTag     string    `json:"faction_tag,omitempty"`
	Lifetime       Counters  `json:"lifetime"`
	LastObservedAt time.Time `json:"last_observed_at"`
}

// SeasonPlayerStats carries both the season-relative and the untouched lifetime counters
type SeasonPlayerStats struct {
	Player     PlayerLifetimeStats `json:"player"`
	Season     Counters            `json:"season"`
	Lifetime   Counters            `json:"lifetime"`
	RolledBack bool                `json:"rolled_back,omitempty"`
}

// MatchesQuery reports whether query appears in any of the player's names, ignoring case
func (p PlayerLifetimeStats) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.PlayerKey), q) ||
		strings.Contains(strings.ToLower(p.DisplayName), q) ||
		strings.Contains(strings.ToLower(p.CharacterName), q)
}

// BlacklistEntry is a player excluded from every leaderboard
type BlacklistEntry struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
