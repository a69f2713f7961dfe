// Package leaderboard assembles the leaderboard page: fetch current stats,
// reconcile them against the active season, and rank players and factions.
package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/faction"
)

var (
	// ErrPlayerNotFound is returned when looking up a player that is not in the feed
	ErrPlayerNotFound = errors.New("player not found")
	// ErrUnknownCategory is returned for a category with no player ranking
	ErrUnknownCategory = errors.New("unknown leaderboard category")
)

// StatsReader returns current lifetime stats, empty on failure
type StatsReader interface {
	FetchAllCurrentStats(ctx context.Context) []domain.PlayerLifetimeStats
}

// SeasonReader returns the active season
type SeasonReader interface {
	GetActiveSeason(ctx context.Context) (*domain.Season, error)
}

// SettingsReader returns presentation settings
type SettingsReader interface {
	GetScoringConfig(ctx context.Context) (domain.ScoringConfig, error)
	ListLeaderboardCategories(ctx context.Context) ([]domain.LeaderboardCategory, error)
}

// Reconciler computes season-relative stats
type Reconciler interface {
	SeasonStats(ctx context.Context, season *domain.Season, players []domain.PlayerLifetimeStats) []domain.SeasonPlayerStats
}

// Entry is one ranked row of a top list
type Entry struct {
	Rank     int                        `json:"rank"`
	Player   domain.PlayerLifetimeStats `json:"player"`
	Season   domain.Counters            `json:"season"`
	Lifetime domain.Counters            `json:"lifetime"`
}

// Board is everything the leaderboard page shows
type Board struct {
	Season               *domain.Season               `json:"season,omitempty"`
	TimeRemainingSeconds *int64                       `json:"time_remaining_seconds,omitempty"`
	Maintenance          bool                         `json:"maintenance"`
	PlayerCount          int                          `json:"player_count"`
	Categories           []domain.LeaderboardCategory `json:"categories"`
	ZombieKills          []Entry                      `json:"zombie_kills,omitempty"`
	PlayerKills          []Entry                      `json:"player_kills,omitempty"`
	Economy              []Entry                      `json:"economy,omitempty"`
	Factions             []domain.Faction             `json:"factions,omitempty"`
	LastUpdated          *time.Time                   `json:"last_updated,omitempty"`
}

// Config holds presentation thresholds
type Config struct {
	MaintenanceMinPlayers int
	TopLimit              int
}

// Service builds leaderboard data
type Service struct {
	stats      StatsReader
	seasons    SeasonReader
	settings   SettingsReader
	reconciler Reconciler
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a Service
func NewService(stats StatsReader, seasons SeasonReader, settings SettingsReader, reconciler Reconciler, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		stats:      stats,
		seasons:    seasons,
		settings:   settings,
		reconciler: reconciler,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Board builds the leaderboard. Stat feed and settings failures degrade to
// empty or default data; only the active season lookup can fail.
func (s *Service) Board(ctx context.Context) (*Board, error) {
	season, err := s.seasons.GetActiveSeason(ctx)
	if err != nil {
		return nil, err
	}

	board := &Board{Season: season}
	if season != nil {
		if d := season.TimeRemaining(s.now()); d != nil {
			secs := int64(d.Seconds())
			board.TimeRemainingSeconds = &secs
		}
	}

	players := s.stats.FetchAllCurrentStats(ctx)
	board.PlayerCount = len(players)
	if len(players) < s.cfg.MaintenanceMinPlayers {
		// not enough data to rank, e.g. right after a wipe
		board.Maintenance = true
		return board, nil
	}
	board.LastUpdated = lastUpdated(players)
	board.Categories = s.categories(ctx)

	rows := s.reconciler.SeasonStats(ctx, season, players)
	for _, c := range board.Categories {
		if c.ID == domain.CategoryFactions {
			board.Factions = faction.Aggregate(rows, s.scoring(ctx))
			continue
		}
		value, ok := categoryValue(c.ID)
		if !ok {
			continue
		}
		entries := rank(rows, value, s.cfg.TopLimit)
		switch c.ID {
		case domain.CategoryZombieKills:
			board.ZombieKills = entries
		case domain.CategoryPlayerKills:
			board.PlayerKills = entries
		case domain.CategoryEconomy:
			board.Economy = entries
		}
	}
	return board, nil
}

// Search returns players with a name containing query
func (s *Service) Search(ctx context.Context, query string) ([]domain.SeasonPlayerStats, error) {
	season, err := s.seasons.GetActiveSeason(ctx)
	if err != nil {
		return nil, err
	}
	var matched []domain.PlayerLifetimeStats
	for _, p := range s.stats.FetchAllCurrentStats(ctx) {
		if p.MatchesQuery(query) {
			matched = append(matched, p)
		}
	}
	if len(matched) == 0 {
		return []domain.SeasonPlayerStats{}, nil
	}
	return s.reconciler.SeasonStats(ctx, season, matched), nil
}

// Player returns one player's season and lifetime stats
func (s *Service) Player(ctx context.Context, key string) (*domain.SeasonPlayerStats, error) {
	season, err := s.seasons.GetActiveSeason(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range s.stats.FetchAllCurrentStats(ctx) {
		if strings.EqualFold(p.PlayerKey, key) {
			rows := s.reconciler.SeasonStats(ctx, season, []domain.PlayerLifetimeStats{p})
			return &rows[0], nil
		}
	}
	return nil, ErrPlayerNotFound
}

// Factions returns the ranked factions for the active season
func (s *Service) Factions(ctx context.Context) ([]domain.Faction, error) {
	season, err := s.seasons.GetActiveSeason(ctx)
	if err != nil {
		return nil, err
	}
	rows := s.reconciler.SeasonStats(ctx, season, s.stats.FetchAllCurrentStats(ctx))
	return faction.Aggregate(rows, s.scoring(ctx)), nil
}

// Top returns the top n players of one category for the active season
func (s *Service) Top(ctx context.Context, category string, n int) ([]Entry, error) {
	season, err := s.seasons.GetActiveSeason(ctx)
	if err != nil {
		return nil, err
	}
	value, ok := categoryValue(category)
	if !ok {
		return nil, ErrUnknownCategory
	}
	rows := s.reconciler.SeasonStats(ctx, season, s.stats.FetchAllCurrentStats(ctx))
	return rank(rows, value, n), nil
}

func categoryValue(id string) (func(domain.Counters) float64, bool) {
	switch id {
	case domain.CategoryZombieKills:
		return func(c domain.Counters) float64 { return float64(c.ZombieKills) }, true
	case domain.CategoryPlayerKills:
		return func(c domain.Counters) float64 { return float64(c.PlayerKills) }, true
	case domain.CategoryEconomy:
		return func(c domain.Counters) float64 { return c.CurrencyEarned }, true
	}
	return nil, false
}

func (s *Service) categories(ctx context.Context) []domain.LeaderboardCategory {
	cats, err := s.settings.ListLeaderboardCategories(ctx)
	if err != nil {
		s.logger.Warn("failed to read leaderboard categories, showing all", "error", err)
		cats = nil
	}
	if len(cats) == 0 {
		return domain.DefaultCategories()
	}
	visible := make([]domain.LeaderboardCategory, 0, len(cats))
	for _, c := range cats {
		if c.Enabled {
			visible = append(visible, c)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].DisplayOrder < visible[j].DisplayOrder })
	return visible
}

func (s *Service) scoring(ctx context.Context) domain.ScoringConfig {
	cfg, err := s.settings.GetScoringConfig(ctx)
	if err != nil {
		s.logger.Warn("failed to read scoring config, using defaults", "error", err)
		return domain.DefaultScoringConfig()
	}
	return cfg
}

// rank orders rows by season value, highest first, ties by player key
func rank(rows []domain.SeasonPlayerStats, value func(domain.Counters) float64, limit int) []Entry {
	sorted := make([]domain.SeasonPlayerStats, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, vj := value(sorted[i].Season), value(sorted[j].Season)
		if vi != vj {
			return vi > vj
		}
		return sorted[i].Player.PlayerKey < sorted[j].Player.PlayerKey
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	entries := make([]Entry, len(sorted))
	for i, r := range sorted {
		entries[i] = Entry{Rank: i + 1, Player: r.Player, Season: r.Season, Lifetime: r.Lifetime}
	}
	return entries
}

func lastUpdated(players []domain.PlayerLifetimeStats) *time.Time {
	var latest time.Time
	for _, p := range players {
		if p.LastObservedAt.After(latest) {
			latest = p.LastObservedAt
		}
	}
	if latest.IsZero() {
		return nil
	}
	return &latest
}
