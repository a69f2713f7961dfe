package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
)

// --- Season methods ---

// GetActiveSeason returns the active season, or nil if none is active
func (s *Store) GetActiveSeason(ctx context.Context) (*domain.Season, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+seasonColumns+` FROM seasons WHERE is_active = TRUE LIMIT 1
	`)
	season, err := scanSeason(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting active season: %w", err)
	}
	return season, nil
}

// GetSeason returns a season by ID
func (s *Store) GetSeason(ctx context.Context, id int64) (*domain.Season, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+seasonColumns+` FROM seasons WHERE id = ?
	`, id)
	season, err := scanSeason(row)
	if err != nil {
		return nil, notFound(err)
	}
	return season, nil
}

// ListSeasons returns every season, most recent start first
func (s *Store) ListSeasons(ctx context.Context) ([]domain.Season, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+seasonColumns+` FROM seasons ORDER BY start_date DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seasons []domain.Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, *season)
	}
	return seasons, rows.Err()
}

// CountSeasons returns how many seasons exist, archived ones included
func (s *Store) CountSeasons(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seasons`).Scan(&count)
	return count, err
}

// CreateSeason inserts a season starting now. It does not archive any other
// active season; with active set and another season already active the
// insert fails on the single-active index.
func (s *Store) CreateSeason(ctx context.Context, name string, endDate *time.Time, active bool) (*domain.Season, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	var end sql.NullString
	if endDate != nil {
		end = sql.NullString{String: formatTimestamp(*endDate), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO seasons (name, start_date, end_date, is_active)
		VALUES (?, ?, ?, ?)
	`, name, formatTimestamp(time.Now()), end, active)
	if err != nil {
		return nil, fmt.Errorf("creating season: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetSeason(ctx, id)
}

// CreateArchivedSeason inserts an already archived season in one write.
// Used for the pre-season record of absolute stats.
func (s *Store) CreateArchivedSeason(ctx context.Context, name, export string, endDate time.Time) (*domain.Season, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO seasons (name, start_date, end_date, is_active, final_standings_export)
		VALUES (?, ?, ?, FALSE, ?)
	`, name, formatTimestamp(time.Now()), formatTimestamp(endDate), export)
	if err != nil {
		return nil, fmt.Errorf("creating archived season: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetSeason(ctx, id)
}

// ArchiveSeason deactivates a season and freezes its final standings.
// Retrying with identical standings succeeds without changes; a season already
// archived with different standings returns ErrSeasonArchived.
func (s *Store) ArchiveSeason(ctx context.Context, id int64, export string, endDate *time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var active bool
		var existing sql.NullString
		err := tx.QueryRowContext(ctx, `
			SELECT is_active, final_standings_export FROM seasons WHERE id = ?
		`, id).Scan(&active, &existing)
		if err != nil {
			return fmt.Errorf("archiving season %d: %w", id, notFound(err))
		}

		if !active && existing.Valid {
			if existing.String == export {
				return nil
			}
			return fmt.Errorf("archiving season %d: %w", id, ErrSeasonArchived)
		}

		var end sql.NullString
		if endDate != nil {
			end = sql.NullString{String: formatTimestamp(*endDate), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE seasons SET
				is_active = FALSE,
				final_standings_export = ?,
				end_date = COALESCE(?, end_date)
			WHERE id = ?
		`, export, end, id)
		if err != nil {
			return fmt.Errorf("archiving season %d: %w", id, err)
		}
		return nil
	})
}

// DeleteSeason removes a season and all of its snapshots
func (s *Store) DeleteSeason(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := deleteSnapshots(ctx, tx, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM seasons WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting season %d: %w", id, err)
		}
		n, _ := result.RowsAffected()
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
