package statsource

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgxpool.Pool used by RemoteSource
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// RemoteSource reads the stats table the game server writes to Postgres
type RemoteSource struct {
	db      Querier
	query   string
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// OpenPool connects to the remote stats database
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing stats dsn: %w", err)
	}
	cfg.MaxConns = 4
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to stats database: %w", err)
	}
	return pool, nil
}

// NewRemoteSource creates a source over table. table may be schema-qualified.
func NewRemoteSource(db Querier, table string, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *RemoteSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteSource{
		db:      db,
		query:   selectStatsQuery(table),
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

func selectStatsQuery(table string) string {
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()
	return `SELECT username, steam_id, display_name, character_name, profession,
		faction_name, faction_tag, zombie_kills, player_kills, hours_survived,
		economy_earned, updated_at
	FROM ` + ident + ` ORDER BY username`
}

// Name implements Source
func (r *RemoteSource) Name() string { return "remote" }

// Fetch reads every row. Rows without a username or with negative counters are skipped.
func (r *RemoteSource) Fetch(ctx context.Context) ([]domain.PlayerLifetimeStats, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	rows, err := r.db.Query(ctx, r.query)
	if err != nil {
		return nil, fmt.Errorf("querying stats table: %w", err)
	}
	defer rows.Close()

	var players []domain.PlayerLifetimeStats
	skipped := 0
	for rows.Next() {
		var (
			username, steamID, displayName, characterName, profession *string
			factionName, factionTag                                   *string
			zombieKills, playerKills                                  *int64
			hours, earned                                             *float64
			updatedAt                                                 *time.Time
		)
		if err := rows.Scan(&username, &steamID, &displayName, &characterName, &profession,
			&factionName, &factionTag, &zombieKills, &playerKills, &hours, &earned, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning stats row: %w", err)
		}

		p := domain.PlayerLifetimeStats{
			PlayerKey:     deref(username),
			PlatformID:    deref(steamID),
			DisplayName:   deref(displayName),
			CharacterName: deref(characterName),
			Profession:    deref(profession),
			FactionName:   deref(factionName),
			FactionTag:    deref(factionTag),
			Lifetime: domain.Counters{
				ZombieKills:    deref(zombieKills),
				PlayerKills:    deref(playerKills),
				HoursSurvived:  deref(hours),
				CurrencyEarned: deref(earned),
			},
		}
		if updatedAt != nil {
			p.LastObservedAt = updatedAt.UTC()
		}
		if !valid(p) {
			skipped++
			r.logger.Debug("skipping malformed stats row", "player", p.PlayerKey)
			continue
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading stats rows: %w", err)
	}
	r.metrics.RecordsSkipped(r.Name(), skipped)
	return players, nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

func valid(p domain.PlayerLifetimeStats) bool {
	c := p.Lifetime
	return p.PlayerKey != "" &&
		c.ZombieKills >= 0 && c.PlayerKills >= 0 &&
		c.HoursSurvived >= 0 && c.CurrencyEarned >= 0
}
