// Package season computes season-relative standings and runs season transitions.
package season

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/metrics"
	"github.com/ernie/survivor-stats/internal/reconcile"
)

// SnapshotStore persists season baselines
type SnapshotStore interface {
	GetSnapshots(ctx context.Context, seasonID int64) ([]domain.PlayerSeasonSnapshot, error)
	CreateSnapshots(ctx context.Context, seasonID int64, snaps []domain.PlayerSeasonSnapshot) (int, error)
}

// Engine reconciles lifetime stats against a season's snapshots
type Engine struct {
	snapshots SnapshotStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewEngine creates an Engine
func NewEngine(snapshots SnapshotStore, logger *slog.Logger, m *metrics.Metrics) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{snapshots: snapshots, logger: logger, metrics: m}
}

// SeasonStats returns season-relative stats for every player. With no active
// season (nil) the season values are the lifetime values.
//
// Players seen for the first time in the season get a snapshot of their current
// stats, so their first read is zero. All missing players are written in one
// batch, then the persisted snapshots are re-read so that if a concurrent read
// inserted first, its row is the one used. Snapshot failures are logged and never
// fail the read. If the snapshots cannot be read at all nothing is written and
// every player shows an empty season for this read.
func (e *Engine) SeasonStats(ctx context.Context, season *domain.Season, players []domain.PlayerLifetimeStats) []domain.SeasonPlayerStats {
	if season == nil {
		return reconcile.LifetimeStandings(players)
	}

	snaps, err := e.snapshots.GetSnapshots(ctx, season.ID)
	if err != nil {
		// without the stored baselines every player looks new, and snapshotting
		// them would shadow legacy platform ID rows for the rest of the season
		e.logger.Error("failed to load snapshots, serving empty season", "season_id", season.ID, "error", err)
		return unbaselined(players)
	}
	baseline := reconcile.NewBaseline(snaps)
	if missing := baseline.Missing(players); len(missing) > 0 {
		baseline = e.ensureSnapshots(ctx, season.ID, snaps, missing)
	}

	rows := reconcile.Standings(players, baseline)
	e.metrics.RollbacksDetected(countRollbacks(rows))
	return rows
}

// FinalStandings reconciles players against the season's snapshots without
// writing anything. Unlike SeasonStats a snapshot read failure is returned.
func (e *Engine) FinalStandings(ctx context.Context, season *domain.Season, players []domain.PlayerLifetimeStats) ([]domain.SeasonPlayerStats, error) {
	snaps, err := e.snapshots.GetSnapshots(ctx, season.ID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshots for season %d: %w", season.ID, err)
	}
	rows := reconcile.Standings(players, reconcile.NewBaseline(snaps))
	e.metrics.RollbacksDetected(countRollbacks(rows))
	return rows, nil
}

// SnapshotAll writes a baseline for every player. Players that already have one keep it.
func (e *Engine) SnapshotAll(ctx context.Context, seasonID int64, players []domain.PlayerLifetimeStats) (int, error) {
	fresh := newSnapshots(seasonID, players)
	inserted, err := e.snapshots.CreateSnapshots(ctx, seasonID, fresh)
	if err != nil {
		e.metrics.SnapshotFailed()
		return 0, err
	}
	e.metrics.SnapshotsCreated(inserted, len(fresh)-inserted)
	return inserted, nil
}

func (e *Engine) ensureSnapshots(ctx context.Context, seasonID int64, existing []domain.PlayerSeasonSnapshot, missing []domain.PlayerLifetimeStats) *reconcile.Baseline {
	fresh := newSnapshots(seasonID, missing)
	inserted, err := e.SnapshotAll(ctx, seasonID, missing)
	if err != nil {
		e.logger.Warn("auto-snapshot failed", "season_id", seasonID, "players", len(missing), "error", err)
	} else {
		e.logger.Info("auto-snapshotted new players", "season_id", seasonID, "inserted", inserted, "conflicts", len(fresh)-inserted)
	}

	persisted, err := e.snapshots.GetSnapshots(ctx, seasonID)
	if err == nil {
		return reconcile.NewBaseline(persisted)
	}
	e.logger.Warn("failed to re-read snapshots, using in-memory baselines", "season_id", seasonID, "error", err)
	all := make([]domain.PlayerSeasonSnapshot, 0, len(existing)+len(fresh))
	all = append(all, existing...)
	all = append(all, fresh...)
	return reconcile.NewBaseline(all)
}

// newSnapshots builds keyed baselines from current stats. Never keyed by platform ID.
func newSnapshots(seasonID int64, players []domain.PlayerLifetimeStats) []domain.PlayerSeasonSnapshot {
	snaps := make([]domain.PlayerSeasonSnapshot, 0, len(players))
	for _, p := range players {
		if p.PlayerKey == "" {
			continue
		}
		snaps = append(snaps, domain.PlayerSeasonSnapshot{
			SeasonID:   seasonID,
			PlayerKey:  p.PlayerKey,
			PlatformID: p.PlatformID,
			Counters:   p.Lifetime,
		})
	}
	return snaps
}

// unbaselined reports zero season progress for every player. Lifetime totals are
// never shown as season values just because the baselines could not be read.
func unbaselined(players []domain.PlayerLifetimeStats) []domain.SeasonPlayerStats {
	rows := make([]domain.SeasonPlayerStats, 0, len(players))
	for _, p := range players {
		rows = append(rows, domain.SeasonPlayerStats{Player: p, Lifetime: p.Lifetime})
	}
	return rows
}

func countRollbacks(rows []domain.SeasonPlayerStats) int {
	n := 0
	for _, r := range rows {
		if r.RolledBack {
			n++
		}
	}
	return n
}
