package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ernie/survivor-stats/internal/domain"
)

// --- Blacklist methods ---

// AddToBlacklist hides a username from every leaderboard
func (s *Store) AddToBlacklist(ctx context.Context, username, reason string) (*domain.BlacklistEntry, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO blacklist (username, reason) VALUES (?, ?)
	`, username, nullString(reason))
	if isUniqueViolation(err) {
		return nil, ErrAlreadyBlacklisted
	}
	if err != nil {
		return nil, fmt.Errorf("adding %s to blacklist: %w", username, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	var entry domain.BlacklistEntry
	var storedReason sql.NullString
	err = s.db.QueryRowContext(ctx, `
		SELECT id, username, reason, created_at FROM blacklist WHERE id = ?
	`, id).Scan(&entry.ID, &entry.Username, &storedReason, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	entry.Reason = scanNullStringValue(storedReason)
	return &entry, nil
}

// RemoveFromBlacklist deletes a blacklist entry by ID
func (s *Store) RemoveFromBlacklist(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM blacklist WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBlacklist returns every entry, newest first
func (s *Store) ListBlacklist(ctx context.Context) ([]domain.BlacklistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, reason, created_at FROM blacklist ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.BlacklistEntry
	for rows.Next() {
		var entry domain.BlacklistEntry
		var reason sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Username, &reason, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Reason = scanNullStringValue(reason)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// BlacklistedUsernames returns just the usernames
func (s *Store) BlacklistedUsernames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username FROM blacklist`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
