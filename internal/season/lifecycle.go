package season

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/metrics"
	"github.com/ernie/survivor-stats/internal/reconcile"
)

// Store is the season registry
type Store interface {
	GetActiveSeason(ctx context.Context) (*domain.Season, error)
	GetSeason(ctx context.Context, id int64) (*domain.Season, error)
	ListSeasons(ctx context.Context) ([]domain.Season, error)
	CountSeasons(ctx context.Context) (int, error)
	CreateSeason(ctx context.Context, name string, endDate *time.Time, active bool) (*domain.Season, error)
	CreateArchivedSeason(ctx context.Context, name, export string, endDate time.Time) (*domain.Season, error)
	ArchiveSeason(ctx context.Context, id int64, export string, endDate *time.Time) error
	DeleteSeason(ctx context.Context, id int64) error
}

// StatsFetcher reads current lifetime stats, failing if the source is unavailable
type StatsFetcher interface {
	Fetch(ctx context.Context) ([]domain.PlayerLifetimeStats, error)
}

// Controller runs season transitions
type Controller struct {
	seasons Store
	engine  *Engine
	stats   StatsFetcher
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewController creates a Controller
func NewController(seasons Store, engine *Engine, stats StatsFetcher, logger *slog.Logger, m *metrics.Metrics) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		seasons: seasons,
		engine:  engine,
		stats:   stats,
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// StartSeason archives the active season, if any, and starts a new one.
//
// The first time seasons are used (no active season and no history) every
// player's absolute lifetime stats are archived as a pre-season record. If the
// outgoing season cannot be archived the operation fails with ErrArchiveFailed
// and the old season stays active. Every current player is then snapshotted
// against the new season; a failure there is logged and left to auto-snapshot.
func (c *Controller) StartSeason(ctx context.Context, name string, endDate *time.Time) (season *domain.Season, err error) {
	defer func() { c.metrics.SeasonTransition("start", err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSeasonNameRequired
	}

	active, err := c.seasons.GetActiveSeason(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading active season: %w", err)
	}

	var players []domain.PlayerLifetimeStats
	if active != nil {
		c.logger.Info("archiving active season", "season_id", active.ID, "name", active.Name)
		if players, err = c.archive(ctx, active); err != nil {
			return nil, err
		}
	} else {
		count, err := c.seasons.CountSeasons(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting seasons: %w", err)
		}
		if count == 0 {
			c.logger.Info("no seasons found, archiving pre-season stats")
			if players, err = c.archiveLegacy(ctx); err != nil {
				return nil, err
			}
		}
	}

	season, err = c.seasons.CreateSeason(ctx, name, endDate, true)
	if err != nil {
		return nil, fmt.Errorf("creating season: %w", err)
	}
	c.logger.Info("season started", "season_id", season.ID, "name", season.Name)

	if players == nil {
		players, err = c.stats.Fetch(ctx)
		if err != nil {
			c.logger.Warn("could not read stats for initial snapshots, relying on auto-snapshot", "season_id", season.ID, "error", err)
			return season, nil
		}
	}
	inserted, err := c.engine.SnapshotAll(ctx, season.ID, players)
	if err != nil {
		c.logger.Warn("initial snapshot failed, relying on auto-snapshot", "season_id", season.ID, "error", err)
		return season, nil
	}
	c.logger.Info("initial snapshots created", "season_id", season.ID, "count", inserted)
	return season, nil
}

// EndSeason archives the active season with an end date of now
func (c *Controller) EndSeason(ctx context.Context) (season *domain.Season, err error) {
	defer func() { c.metrics.SeasonTransition("end", err) }()

	active, err := c.seasons.GetActiveSeason(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading active season: %w", err)
	}
	if active == nil {
		return nil, ErrNoActiveSeason
	}

	if _, err := c.archive(ctx, active); err != nil {
		return nil, err
	}
	c.logger.Info("season ended", "season_id", active.ID, "name", active.Name)
	return c.seasons.GetSeason(ctx, active.ID)
}

// DeleteSeason removes an archived season and its snapshots
func (c *Controller) DeleteSeason(ctx context.Context, id int64) (err error) {
	defer func() { c.metrics.SeasonTransition("delete", err) }()

	season, err := c.seasons.GetSeason(ctx, id)
	if err != nil {
		return err
	}
	if season.IsActive {
		return ErrSeasonActive
	}
	if err := c.seasons.DeleteSeason(ctx, id); err != nil {
		return fmt.Errorf("deleting season %d: %w", id, err)
	}
	c.logger.Info("season deleted", "season_id", id, "name", season.Name)
	return nil
}

// ListSeasons returns every season, most recent first
func (c *Controller) ListSeasons(ctx context.Context) ([]domain.Season, error) {
	return c.seasons.ListSeasons(ctx)
}

// ActiveSeason returns the active season or nil
func (c *Controller) ActiveSeason(ctx context.Context) (*domain.Season, error) {
	return c.seasons.GetActiveSeason(ctx)
}

// Export returns an archived season's frozen standings
func (c *Controller) Export(ctx context.Context, id int64) (*domain.Season, string, error) {
	season, err := c.seasons.GetSeason(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if season.FinalStandingsExport == nil {
		return season, "", ErrNotArchived
	}
	return season, *season.FinalStandingsExport, nil
}

// archive freezes the season's standings. It returns the players it reconciled
// so the caller can reuse the same read.
func (c *Controller) archive(ctx context.Context, season *domain.Season) ([]domain.PlayerLifetimeStats, error) {
	players, err := c.stats.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading stats: %w", ErrArchiveFailed, err)
	}
	rows, err := c.engine.FinalStandings(ctx, season, players)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	export := reconcile.ExportString(rows)
	now := c.now()
	if err := c.seasons.ArchiveSeason(ctx, season.ID, export, &now); err != nil {
		c.logger.Error("failed to archive season", "season_id", season.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}
	c.logger.Info("season archived", "season_id", season.ID, "players", len(rows), "export_bytes", len(export))
	return players, nil
}

func (c *Controller) archiveLegacy(ctx context.Context) ([]domain.PlayerLifetimeStats, error) {
	players, err := c.stats.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading stats: %w", ErrArchiveFailed, err)
	}
	export := reconcile.ExportString(reconcile.LifetimeStandings(players))
	legacy, err := c.seasons.CreateArchivedSeason(ctx, domain.LegacySeasonName, export, c.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}
	c.logger.Info("pre-season stats archived", "season_id", legacy.ID, "players", len(players))
	return players, nil
}

// IsValidationError reports whether err is a user-facing validation failure
func IsValidationError(err error) bool {
	return errors.Is(err, ErrSeasonNameRequired) ||
		errors.Is(err, ErrNoActiveSeason) ||
		errors.Is(err, ErrSeasonActive) ||
		errors.Is(err, ErrNotArchived)
}

// ParseEndDate accepts an RFC 3339 timestamp or a plain date in UTC.
// An empty string means the season is open-ended.
func ParseEndDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		if t, err = time.Parse(time.DateOnly, s); err != nil {
			return nil, fmt.Errorf("invalid end date %q: use RFC 3339 or YYYY-MM-DD", s)
		}
	}
	t = t.UTC()
	return &t, nil
}
