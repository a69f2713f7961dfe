package season

import "errors"

var (
	// ErrNoActiveSeason is returned when ending a season while none is active
	ErrNoActiveSeason = errors.New("no active season")
	// ErrSeasonNameRequired is returned when starting a season without a name
	ErrSeasonNameRequired = errors.New("season name is required")
	// ErrSeasonActive is returned when deleting the active season
	ErrSeasonActive = errors.New("season is active, end it first")
	// ErrArchiveFailed is returned when a season's final standings could not be frozen.
	// The season transition is aborted and nothing else changes.
	ErrArchiveFailed = errors.New("failed to archive season")
	// ErrNotArchived is returned when exporting a season that has no final standings yet
	ErrNotArchived = errors.New("season has not been archived")
)
