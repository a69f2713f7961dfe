package season

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(store *FakeStore, stats *FakeStats) *Controller {
	c := NewController(store, NewEngine(store, nil, nil), stats, nil, nil)
	c.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func samplePlayers() []domain.PlayerLifetimeStats {
	return []domain.PlayerLifetimeStats{
		{PlayerKey: "alice", PlatformID: "1", Lifetime: domain.Counters{ZombieKills: 100, PlayerKills: 4, HoursSurvived: 50, CurrencyEarned: 1000}},
		{PlayerKey: "bob", PlatformID: "2", Lifetime: domain.Counters{ZombieKills: 10, HoursSurvived: 2}},
	}
}

func TestStartSeasonRequiresName(t *testing.T) {
	store := NewFakeStore()
	c := newController(store, &FakeStats{players: samplePlayers()})

	_, err := c.StartSeason(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrSeasonNameRequired)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, store.Trace(), "validation happens before any store access")
}

func TestStartFirstSeasonArchivesLegacy(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	c := newController(store, &FakeStats{players: samplePlayers()})

	season, err := c.StartSeason(ctx, "Season 1", nil)
	require.NoError(t, err)
	assert.True(t, season.IsActive)

	seasons, err := store.ListSeasons(ctx)
	require.NoError(t, err)
	require.Len(t, seasons, 2)
	legacy := seasons[1]
	assert.Equal(t, domain.LegacySeasonName, legacy.Name)
	assert.False(t, legacy.IsActive)
	require.NotNil(t, legacy.FinalStandingsExport)

	rows, err := reconcile.ParseExport(*legacy.FinalStandingsExport)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(100), rows[0].ZombieKills, "legacy export holds absolute values")

	// everyone starts the season at zero
	snaps, err := store.GetSnapshots(ctx, season.ID)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestStartSeasonArchivesActiveThenStarts(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	stats := &FakeStats{players: samplePlayers()}
	c := newController(store, stats)

	first, err := c.StartSeason(ctx, "Season 1", nil)
	require.NoError(t, err)

	// progress during season 1
	stats.Set([]domain.PlayerLifetimeStats{
		{PlayerKey: "alice", PlatformID: "1", Lifetime: domain.Counters{ZombieKills: 130, PlayerKills: 5, HoursSurvived: 60, CurrencyEarned: 1500}},
		{PlayerKey: "bob", PlatformID: "2", Lifetime: domain.Counters{ZombieKills: 10, HoursSurvived: 2}},
	})

	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	second, err := c.StartSeason(ctx, "Season 2", &end)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	require.NotNil(t, second.EndDate)

	assert.Equal(t, 1, store.activeCount())
	archived, err := store.GetSeason(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)
	require.NotNil(t, archived.FinalStandingsExport)
	require.NotNil(t, archived.EndDate)
	assert.Equal(t, c.now(), *archived.EndDate)

	rows, err := reconcile.ParseExport(*archived.FinalStandingsExport)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].Name)
	assert.Equal(t, int64(30), rows[0].ZombieKills)
	assert.Equal(t, int64(1), rows[0].PlayerKills)
	assert.InDelta(t, 10.0, rows[0].HoursSurvived, 1e-9)
	assert.InDelta(t, 500.0, rows[0].CurrencyEarned, 1e-9)

	// new season baselines use the current values
	snaps, err := store.GetSnapshots(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(130), snaps[0].Counters.ZombieKills)
}

func TestStartSeasonAbortsWhenArchiveFails(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	c := newController(store, &FakeStats{players: samplePlayers()})

	first, err := c.StartSeason(ctx, "Season 1", nil)
	require.NoError(t, err)
	before, err := store.ListSeasons(ctx)
	require.NoError(t, err)

	store.ArchiveSeasonFunc = func(context.Context, int64, string, *time.Time) error {
		return errors.New("disk full")
	}
	_, err = c.StartSeason(ctx, "Season 2", nil)
	assert.ErrorIs(t, err, ErrArchiveFailed)
	assert.ErrorContains(t, err, "disk full")

	after, err := store.ListSeasons(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "no season created or changed")

	active, err := store.GetActiveSeason(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)
	assert.Nil(t, active.FinalStandingsExport)
}

func TestStartSeasonAbortsWhenSourceUnavailable(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	stats := &FakeStats{players: samplePlayers()}
	c := newController(store, stats)

	first, err := c.StartSeason(ctx, "Season 1", nil)
	require.NoError(t, err)

	stats.err = errors.New("stat source unavailable")
	_, err = c.StartSeason(ctx, "Season 2", nil)
	assert.ErrorIs(t, err, ErrArchiveFailed)

	active, err := store.GetActiveSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
}

func TestStartSeasonSnapshotFailureStillStarts(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	store.CreateSnapshotsFunc = func(context.Context, int64, []domain.PlayerSeasonSnapshot) (int, error) {
		return 0, errors.New("database is locked")
	}
	c := newController(store, &FakeStats{players: samplePlayers()})

	season, err := c.StartSeason(ctx, "Season 1", nil)
	require.NoError(t, err)
	assert.True(t, season.IsActive)
}

func TestStartSeasonAfterEndDoesNotArchiveLegacyAgain(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	c := newController(store, &FakeStats{players: samplePlayers()})

	_, err := c.StartSeason(ctx, "Season 1", nil)
	require.NoError(t, err)
	_, err = c.EndSeason(ctx)
	require.NoError(t, err)
	_, err = c.StartSeason(ctx, "Season 2", nil)
	require.NoError(t, err)

	seasons, err := store.ListSeasons(ctx)
	require.NoError(t, err)
	require.Len(t, seasons, 3)
	legacy := 0
	for _, s := range seasons {
		if s.Name == domain.LegacySeasonName {
			legacy++
		}
	}
	assert.Equal(t, 1, legacy)
}

func TestEndSeason(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	c := newController(store, &FakeStats{players: samplePlayers()})

	_, err := c.EndSeason(ctx)
	assert.ErrorIs(t, err, ErrNoActiveSeason)
	assert.True(t, IsValidationError(err))

	started, err := c.StartSeason(ctx, "Season 1", nil)
	require.NoError(t, err)

	ended, err := c.EndSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, started.ID, ended.ID)
	assert.False(t, ended.IsActive)
	require.NotNil(t, ended.FinalStandingsExport)
	assert.True(t, strings.HasPrefix(*ended.FinalStandingsExport, reconcile.ExportHeader+"\n"))
	require.NotNil(t, ended.EndDate)

	active, err := store.GetActiveSeason(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestEndSeasonArchiveFailureLeavesSeasonActive(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	c := newController(store, &FakeStats{players: samplePlayers()})
	_, err := c.StartSeason(ctx, "Season 1", nil)
	require.NoError(t, err)

	store.ArchiveSeasonFunc = func(context.Context, int64, string, *time.Time) error {
		return errors.New("disk full")
	}
	_, err = c.EndSeason(ctx)
	assert.ErrorIs(t, err, ErrArchiveFailed)
	assert.Equal(t, 1, store.activeCount())
}

func TestDeleteSeason(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	c := newController(store, &FakeStats{players: samplePlayers()})

	season, err := c.StartSeason(ctx, "Season 1", nil)
	require.NoError(t, err)

	err = c.DeleteSeason(ctx, season.ID)
	assert.ErrorIs(t, err, ErrSeasonActive)

	_, err = c.EndSeason(ctx)
	require.NoError(t, err)
	require.NoError(t, c.DeleteSeason(ctx, season.ID))

	snaps, err := store.GetSnapshots(ctx, season.ID)
	require.NoError(t, err)
	assert.Empty(t, snaps)

	assert.ErrorIs(t, c.DeleteSeason(ctx, season.ID), errNotFound)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	c := newController(store, &FakeStats{players: samplePlayers()})

	season, err := c.StartSeason(ctx, "Season 1", nil)
	require.NoError(t, err)

	_, _, err = c.Export(ctx, season.ID)
	assert.ErrorIs(t, err, ErrNotArchived)

	_, err = c.EndSeason(ctx)
	require.NoError(t, err)

	got, text, err := c.Export(ctx, season.ID)
	require.NoError(t, err)
	assert.Equal(t, season.ID, got.ID)
	rows, err := reconcile.ParseExport(text)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// nothing changed since the initial snapshot
	assert.Equal(t, int64(0), rows[0].ZombieKills)
}

func TestParseEndDate(t *testing.T) {
	d, err := ParseEndDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseEndDate("2030-02-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 2, 3, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseEndDate("2030-02-03T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 2, 3, 8, 0, 0, 0, time.UTC), *d)

	_, err = ParseEndDate("03/02/2030")
	assert.Error(t, err)
}
