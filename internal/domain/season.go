package domain

import "time"

// LegacySeasonName names the placeholder season archived the first time seasons are used
const LegacySeasonName = "Legacy / Pre-Season"

// Season is a named competition period. At most one season is active at a time.
type Season struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	IsActive             bool       `json:"is_active"`
	FinalStandingsExport *string    `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
}

// Archived reports whether the season's final standings have been frozen
func (s *Season) Archived() bool {
	return !s.IsActive && s.FinalStandingsExport != nil
}

// TimeRemaining returns how long until the planned end date, or nil for open-ended seasons.
// The result is never negative.
func (s *Season) TimeRemaining(now time.Time) *time.Duration {
	if s.EndDate == nil {
		return nil
	}
	d := s.EndDate.Sub(now)
	if d < 0 {
		d = 0
	}
	return &d
}

// PlayerSeasonSnapshot is the zero baseline for one player in one season.
// Snapshots created before the identity migration have an empty PlayerKey
// and are found by PlatformID instead.
type PlayerSeasonSnapshot struct {
	ID         int64     `json:"id"`
	SeasonID   int64     `json:"season_id"`
	PlayerKey  string    `json:"player_key,omitempty"`
	PlatformID string    `json:"platform_id,omitempty"`
	Counters   Counters  `json:"counters"`
	CreatedAt  time.Time `json:"created_at"`
}

// Legacy reports whether the snapshot predates username keys
func (s PlayerSeasonSnapshot) Legacy() bool {
	return s.PlayerKey == ""
}
