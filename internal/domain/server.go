package domain

import "time"

// ServerStatus represents the game server's state from a UDP query
type ServerStatus struct {
	Online     bool      `json:"online"`
	Name       string    `json:"name"`
	Map        string    `json:"map,omitempty"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"max_players"`
	PingMs     int64     `json:"ping_ms"`
	CheckedAt  time.Time `json:"checked_at"`
}

// OfflineStatus is reported when the server cannot be reached
func OfflineStatus(maxPlayers int, now time.Time) *ServerStatus {
	return &ServerStatus{
		Online:     false,
		Name:       "Server Offline",
		MaxPlayers: maxPlayers,
		CheckedAt:  now,
	}
}
