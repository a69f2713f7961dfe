// Package reconcile turns cumulative lifetime counters into season-relative values.
//
// The game server's counters are not monotonic: a character death resets kills
// and hours toward zero, and restoring the game database from a backup moves every
// counter back to an older non-zero value. Both look like current < snapshot. A reset
// lands far below the snapshot, a rollback lands just below it, so the hours
// counter's distance from its snapshot decides which one happened.
package reconcile

import "github.com/ernie/survivor-stats/internal/domain"

const (
	// rollbackMinSnapshotHours is the smallest snapshot that can be classified as a rollback
	rollbackMinSnapshotHours = 5.0
	// rollbackHoursRatio: current/snapshot hours above this means the save was restored
	rollbackHoursRatio = 0.90

	// safetyMinSnapshot and safetyRatio catch partial rollbacks on a single counter
	safetyMinSnapshot = 100.0
	safetyRatio       = 0.95
)

// Number is a counter value type
type Number interface {
	~int64 | ~float64
}

// IsRollback reports whether a drop in hours survived looks like a restored backup
// rather than a character death.
func IsRollback(currentHours, snapshotHours float64) bool {
	if currentHours >= snapshotHours || snapshotHours <= rollbackMinSnapshotHours {
		return false
	}
	return currentHours/snapshotHours > rollbackHoursRatio
}

// Value reconciles one counter against its snapshot baseline. The result is never negative.
func Value[T Number](current, snapshot T, rollback bool) T {
	if current >= snapshot {
		return current - snapshot
	}
	if rollback {
		return 0
	}
	if float64(snapshot) > safetyMinSnapshot && float64(current) > float64(snapshot)*safetyRatio {
		return 0
	}
	// Death: everything since the reset counts
	if current < 0 {
		return 0
	}
	return current
}

// Player reconciles all four counters. Rollback is decided once from hours survived
// and applied to every counter.
func Player(current, snapshot domain.Counters) (domain.Counters, bool) {
	rollback := IsRollback(current.HoursSurvived, snapshot.HoursSurvived)
	return domain.Counters{
		ZombieKills:    Value(current.ZombieKills, snapshot.ZombieKills, rollback),
		PlayerKills:    Value(current.PlayerKills, snapshot.PlayerKills, rollback),
		HoursSurvived:  Value(current.HoursSurvived, snapshot.HoursSurvived, rollback),
		CurrencyEarned: Value(current.CurrencyEarned, snapshot.CurrencyEarned, rollback),
	}, rollback
}

// Standings reconciles every player against the baseline. Players with no snapshot
// reconcile against zero, so their season values equal their lifetime values.
func Standings(players []domain.PlayerLifetimeStats, baseline *Baseline) []domain.SeasonPlayerStats {
	out := make([]domain.SeasonPlayerStats, 0, len(players))
	for _, p := range players {
		var snap domain.Counters
		if baseline != nil {
			if s, ok := baseline.Lookup(p); ok {
				snap = s.Counters
			}
		}
		season, rolledBack := Player(p.Lifetime, snap)
		out = append(out, domain.SeasonPlayerStats{
			Player:     p,
			Season:     season,
			Lifetime:   p.Lifetime,
			RolledBack: rolledBack,
		})
	}
	return out
}

// LifetimeStandings treats lifetime values as final. Used when there is no baseline at all.
func LifetimeStandings(players []domain.PlayerLifetimeStats) []domain.SeasonPlayerStats {
	out := make([]domain.SeasonPlayerStats, 0, len(players))
	for _, p := range players {
		out = append(out, domain.SeasonPlayerStats{
			Player:   p,
			Season:   p.Lifetime,
			Lifetime: p.Lifetime,
		})
	}
	return out
}
