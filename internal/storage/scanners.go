package storage

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
)

// Null scanner helpers - reduce repetitive nil-checking code

func scanNullString(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func scanNullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func scanNullTime(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time.UTC()
		return &t
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// notFound maps sql.ErrNoRows to ErrNotFound
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// scanner is an interface satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

const seasonColumns = `id, name, start_date, end_date, is_active, final_standings_export, created_at`

// scanSeason scans a season row
func scanSeason(s scanner) (*domain.Season, error) {
	var season domain.Season
	var endDate sql.NullTime
	var export sql.NullString
	err := s.Scan(&season.ID, &season.Name, &season.StartDate, &endDate, &season.IsActive, &export, &season.CreatedAt)
	if err != nil {
		return nil, err
	}
	season.StartDate = season.StartDate.UTC()
	season.CreatedAt = season.CreatedAt.UTC()
	season.EndDate = scanNullTime(endDate)
	season.FinalStandingsExport = scanNullString(export)
	return &season, nil
}

const snapshotColumns = `id, season_id, player_key, platform_id, zombie_kills, player_kills, hours_survived, currency_earned, created_at`

// scanSnapshot scans a snapshot row
func scanSnapshot(s scanner) (*domain.PlayerSeasonSnapshot, error) {
	var snap domain.PlayerSeasonSnapshot
	var playerKey, platformID sql.NullString
	err := s.Scan(&snap.ID, &snap.SeasonID, &playerKey, &platformID,
		&snap.Counters.ZombieKills, &snap.Counters.PlayerKills,
		&snap.Counters.HoursSurvived, &snap.Counters.CurrencyEarned, &snap.CreatedAt)
	if err != nil {
		return nil, err
	}
	snap.PlayerKey = scanNullStringValue(playerKey)
	snap.PlatformID = scanNullStringValue(platformID)
	snap.CreatedAt = snap.CreatedAt.UTC()
	return &snap, nil
}

// scanUser scans a user row from the database
func scanUser(s scanner) (*User, error) {
	var user User
	var lastLogin sql.NullTime
	err := s.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	user.LastLogin = scanNullTime(lastLogin)
	return &user, nil
}
