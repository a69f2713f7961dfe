package reconcile

import "github.com/ernie/survivor-stats/internal/domain"

// Baseline indexes a season's snapshots for lookup by player.
// Snapshots are matched by PlayerKey first; PlatformID is only indexed for
// legacy snapshots that carry no PlayerKey.
type Baseline struct {
	byKey      map[string]domain.PlayerSeasonSnapshot
	byPlatform map[string]domain.PlayerSeasonSnapshot
}

// NewBaseline builds the lookup maps. Snapshots must be in insertion order;
// if a player has duplicates the last one inserted wins.
func NewBaseline(snapshots []domain.PlayerSeasonSnapshot) *Baseline {
	b := &Baseline{
		byKey:      make(map[string]domain.PlayerSeasonSnapshot, len(snapshots)),
		byPlatform: make(map[string]domain.PlayerSeasonSnapshot),
	}
	for _, s := range snapshots {
		if !s.Legacy() {
			b.byKey[s.PlayerKey] = s
			continue
		}
		if s.PlatformID != "" {
			b.byPlatform[s.PlatformID] = s
		}
	}
	return b
}

// Lookup finds the player's snapshot
func (b *Baseline) Lookup(p domain.PlayerLifetimeStats) (domain.PlayerSeasonSnapshot, bool) {
	if s, ok := b.byKey[p.PlayerKey]; ok {
		return s, true
	}
	if p.PlatformID != "" {
		if s, ok := b.byPlatform[p.PlatformID]; ok {
			return s, true
		}
	}
	return domain.PlayerSeasonSnapshot{}, false
}

// Missing returns the players that have no snapshot under either key.
// Players without a PlayerKey are never returned since new snapshots are always keyed by it.
func (b *Baseline) Missing(players []domain.PlayerLifetimeStats) []domain.PlayerLifetimeStats {
	var missing []domain.PlayerLifetimeStats
	seen := make(map[string]bool)
	for _, p := range players {
		if p.PlayerKey == "" || seen[p.PlayerKey] {
			continue
		}
		if _, ok := b.Lookup(p); ok {
			continue
		}
		seen[p.PlayerKey] = true
		missing = append(missing, p)
	}
	return missing
}

// Len returns the number of distinct players covered
func (b *Baseline) Len() int {
	return len(b.byKey) + len(b.byPlatform)
}
