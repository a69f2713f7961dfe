package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
)

// --- Faction scoring methods ---

// GetScoringConfig returns the live scoring multipliers, or the defaults if none were saved
func (s *Store) GetScoringConfig(ctx context.Context) (domain.ScoringConfig, error) {
	var cfg domain.ScoringConfig
	err := s.db.QueryRowContext(ctx, `
		SELECT zombie_kill_multiplier, player_kill_multiplier, economy_multiplier, survival_multiplier, updated_at
		FROM faction_score_config WHERE id = 1
	`).Scan(&cfg.ZombieKill, &cfg.PlayerKill, &cfg.Currency, &cfg.Survival, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultScoringConfig(), nil
	}
	if err != nil {
		return domain.ScoringConfig{}, fmt.Errorf("getting scoring config: %w", err)
	}
	cfg.UpdatedAt = cfg.UpdatedAt.UTC()
	return cfg, nil
}

// UpdateScoringConfig replaces the scoring multipliers
func (s *Store) UpdateScoringConfig(ctx context.Context, cfg domain.ScoringConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO faction_score_config (id, zombie_kill_multiplier, player_kill_multiplier, economy_multiplier, survival_multiplier, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			zombie_kill_multiplier = excluded.zombie_kill_multiplier,
			player_kill_multiplier = excluded.player_kill_multiplier,
			economy_multiplier = excluded.economy_multiplier,
			survival_multiplier = excluded.survival_multiplier,
			updated_at = excluded.updated_at
	`, cfg.ZombieKill, cfg.PlayerKill, cfg.Currency, cfg.Survival, formatTimestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("updating scoring config: %w", err)
	}
	return nil
}

// --- Leaderboard category methods ---

// ListLeaderboardCategories returns the configured categories by display order.
// An empty result means nothing has been configured.
func (s *Store) ListLeaderboardCategories(ctx context.Context) ([]domain.LeaderboardCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, enabled, display_order FROM leaderboard_config ORDER BY display_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []domain.LeaderboardCategory
	for rows.Next() {
		var c domain.LeaderboardCategory
		if err := rows.Scan(&c.ID, &c.Label, &c.Enabled, &c.DisplayOrder); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// SetLeaderboardCategoryEnabled shows or hides a category. The first change
// stores the whole default category list so the others stay visible.
func (s *Store) SetLeaderboardCategoryEnabled(ctx context.Context, id string, enabled bool) error {
	known := false
	for _, c := range domain.DefaultCategories() {
		if c.ID == id {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("leaderboard category %q: %w", id, ErrNotFound)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range domain.DefaultCategories() {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO leaderboard_config (id, label, enabled, display_order)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(id) DO NOTHING
			`, c.ID, c.Label, c.Enabled, c.DisplayOrder)
			if err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `UPDATE leaderboard_config SET enabled = ? WHERE id = ?`, enabled, id)
		return err
	})
}
