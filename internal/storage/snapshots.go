package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ernie/survivor-stats/internal/domain"
)

// --- Snapshot methods ---

// GetSnapshots returns a season's snapshots in insertion order
func (s *Store) GetSnapshots(ctx context.Context, seasonID int64) ([]domain.PlayerSeasonSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+` FROM player_season_snapshots WHERE season_id = ? ORDER BY id
	`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("getting snapshots for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	var snaps []domain.PlayerSeasonSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// CreateSnapshots bulk-inserts baselines for a season in one transaction and
// returns how many rows were written. A player that already has a snapshot in
// the season keeps the existing row. Snapshots without a PlayerKey are ignored;
// new snapshots are never keyed by platform ID.
func (s *Store) CreateSnapshots(ctx context.Context, seasonID int64, snaps []domain.PlayerSeasonSnapshot) (int, error) {
	if len(snaps) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO player_season_snapshots (
				season_id, player_key, platform_id, zombie_kills, player_kills, hours_survived, currency_earned
			) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(season_id, player_key) DO NOTHING
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, snap := range snaps {
			if snap.PlayerKey == "" {
				continue
			}
			c := snap.Counters
			result, err := stmt.ExecContext(ctx, seasonID, snap.PlayerKey, nullString(snap.PlatformID),
				c.ZombieKills, c.PlayerKills, c.HoursSurvived, c.CurrencyEarned)
			if err != nil {
				return fmt.Errorf("inserting snapshot for %s: %w", snap.PlayerKey, err)
			}
			n, _ := result.RowsAffected()
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("creating snapshots for season %d: %w", seasonID, err)
	}
	return inserted, nil
}

// DeleteSnapshots removes every snapshot of a season
func (s *Store) DeleteSnapshots(ctx context.Context, seasonID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return deleteSnapshots(ctx, tx, seasonID)
	})
}

func deleteSnapshots(ctx context.Context, tx *sql.Tx, seasonID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM player_season_snapshots WHERE season_id = ?`, seasonID); err != nil {
		return fmt.Errorf("deleting snapshots for season %d: %w", seasonID, err)
	}
	return nil
}
