package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/faction"
	"github.com/ernie/survivor-stats/internal/leaderboard"
	"github.com/ernie/survivor-stats/internal/reconcile"
	"github.com/ernie/survivor-stats/internal/season"
	"github.com/ernie/survivor-stats/internal/statsource"
	"github.com/ernie/survivor-stats/internal/storage"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain errors onto HTTP statuses. Anything unrecognized
// is logged and reported as a 500 without its details.
func (r *Router) writeServiceError(w http.ResponseWriter, req *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, season.ErrSeasonNameRequired),
		errors.Is(err, storage.ErrEmptyName),
		errors.Is(err, storage.ErrEmptyUsername),
		errors.Is(err, faction.ErrInvalidScoring):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, leaderboard.ErrPlayerNotFound),
		errors.Is(err, season.ErrNotArchived):
		status = http.StatusNotFound
	case errors.Is(err, season.ErrNoActiveSeason),
		errors.Is(err, season.ErrSeasonActive),
		errors.Is(err, storage.ErrSeasonArchived),
		errors.Is(err, storage.ErrAlreadyBlacklisted),
		errors.Is(err, storage.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, statsource.ErrSourceUnavailable),
		errors.Is(err, season.ErrArchiveFailed):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		r.logger.Error("request failed",
			"request_id", requestID(req.Context()),
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
		)
	}
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// handleGetLeaderboard returns the full leaderboard for the active season
func (r *Router) handleGetLeaderboard(w http.ResponseWriter, req *http.Request) {
	board, err := r.leaderboard.Board(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// handleSearchPlayers finds players by name
func (r *Router) handleSearchPlayers(w http.ResponseWriter, req *http.Request) {
	rows, err := r.leaderboard.Search(req.Context(), req.URL.Query().Get("search"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	if limit := parseLimit(req, 50, 500); len(rows) > limit {
		rows = rows[:limit]
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleGetPlayer returns one player's season and lifetime stats
func (r *Router) handleGetPlayer(w http.ResponseWriter, req *http.Request) {
	key := req.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "player key required")
		return
	}
	row, err := r.leaderboard.Player(req.Context(), key)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleListSeasons returns every season, most recent first
func (r *Router) handleListSeasons(w http.ResponseWriter, req *http.Request) {
	seasons, err := r.seasons.ListSeasons(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	if seasons == nil {
		seasons = []domain.Season{}
	}
	writeJSON(w, http.StatusOK, seasons)
}

// handleExportSeason downloads an archived season's final standings as CSV
func (r *Router) handleExportSeason(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid season id")
		return
	}
	s, export, err := r.seasons.Export(req.Context(), id)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(s)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(export))
}

// handleSeasonStandings returns an archived season's final standings as JSON
func (r *Router) handleSeasonStandings(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid season id")
		return
	}
	_, export, err := r.seasons.Export(req.Context(), id)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	rows, err := reconcile.ParseExport(export)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	if rows == nil {
		rows = []reconcile.ExportRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// exportFilename builds a filesystem-safe name from the season name
func exportFilename(s *domain.Season) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '/':
			return '_'
		}
		return -1
	}, s.Name)
	if name == "" {
		name = fmt.Sprintf("season-%d", s.ID)
	}
	return name + ".csv"
}

// handleServerStatus returns the cached game server status
func (r *Router) handleServerStatus(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.status.Status(req.Context()))
}

// StartSeasonRequest is the request body for starting a season
type StartSeasonRequest struct {
	Name    string `json:"name"`
	EndDate string `json:"end_date,omitempty"`
}

// handleStartSeason archives the active season and starts a new one
func (r *Router) handleStartSeason(w http.ResponseWriter, req *http.Request) {
	var body StartSeasonRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	endDate, err := season.ParseEndDate(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date: use RFC 3339 or YYYY-MM-DD")
		return
	}

	s, err := r.seasons.StartSeason(req.Context(), body.Name, endDate)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// handleEndSeason archives the active season without starting another
func (r *Router) handleEndSeason(w http.ResponseWriter, req *http.Request) {
	s, err := r.seasons.EndSeason(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleDeleteSeason deletes an inactive season and its snapshots
func (r *Router) handleDeleteSeason(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid season id")
		return
	}
	if err := r.seasons.DeleteSeason(req.Context(), id); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "season deleted"})
}

// handleListBlacklist returns every blacklisted player
func (r *Router) handleListBlacklist(w http.ResponseWriter, req *http.Request) {
	entries, err := r.store.ListBlacklist(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	if entries == nil {
		entries = []domain.BlacklistEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// BlacklistRequest is the request body for blacklisting a player
type BlacklistRequest struct {
	Username string `json:"username"`
	Reason   string `json:"reason,omitempty"`
}

// handleAddBlacklist hides a player from every leaderboard
func (r *Router) handleAddBlacklist(w http.ResponseWriter, req *http.Request) {
	var body BlacklistRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := r.store.AddToBlacklist(req.Context(), body.Username, body.Reason)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleRemoveBlacklist restores a player to the leaderboards
func (r *Router) handleRemoveBlacklist(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid blacklist id")
		return
	}
	if err := r.store.RemoveFromBlacklist(req.Context(), id); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "player removed from blacklist"})
}

// handleGetScoring returns the faction score multipliers
func (r *Router) handleGetScoring(w http.ResponseWriter, req *http.Request) {
	cfg, err := r.store.GetScoringConfig(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleUpdateScoring replaces the faction score multipliers
func (r *Router) handleUpdateScoring(w http.ResponseWriter, req *http.Request) {
	var cfg domain.ScoringConfig
	if err := json.NewDecoder(req.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := faction.ValidateScoringConfig(cfg); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	if err := r.store.UpdateScoringConfig(req.Context(), cfg); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	saved, err := r.store.GetScoringConfig(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// UpdateCategoryRequest is the request body for toggling a leaderboard
type UpdateCategoryRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleUpdateCategory shows or hides a leaderboard category
func (r *Router) handleUpdateCategory(w http.ResponseWriter, req *http.Request) {
	var body UpdateCategoryRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}
	if err := r.store.SetLeaderboardCategoryEnabled(req.Context(), req.PathValue("id"), *body.Enabled); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	cats, err := r.store.ListLeaderboardCategories(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// handleHealth returns server health status
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Ping(req.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
