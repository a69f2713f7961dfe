package storage

import "errors"

var (
	// ErrNotFound is returned when a looked-up row does not exist
	ErrNotFound = errors.New("not found")
	// ErrSeasonArchived is returned when archiving a season that was already archived with different standings
	ErrSeasonArchived = errors.New("season already archived with different standings")
	// ErrAlreadyBlacklisted is returned when adding a username that is already on the blacklist
	ErrAlreadyBlacklisted = errors.New("player already blacklisted")
	// ErrEmptyName is returned when creating a season without a name
	ErrEmptyName = errors.New("season name is empty")
	// ErrEmptyUsername is returned when a username is blank
	ErrEmptyUsername = errors.New("username is empty")
	// ErrUserExists is returned when creating a user whose username is taken
	ErrUserExists = errors.New("user already exists")
)
