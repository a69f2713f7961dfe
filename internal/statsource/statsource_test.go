package statsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlayer(t *testing.T, dir, username, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, username), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, username, username+".json"), []byte(body), 0o644))
}

func TestFileSourceReadsPlayers(t *testing.T) {
	dir := t.TempDir()
	writePlayer(t, dir, "alice", `{
		"username": "alice",
		"steam": {"steamid64": "76561198000000001", "steam_name": "Alice"},
		"character": {"name": "Jane Doe", "profession": "Nurse"},
		"hours_survived": 12.5,
		"kills": {"zombies": 140, "survivors": 2},
		"economy": {"earned": 3400.5, "total": 120},
		"faction": {"name": "Wardens", "tag": "WRD"}
	}`)
	writePlayer(t, dir, "bob", `{"hours_survived": 1}`)
	writePlayer(t, dir, "broken", `{not json`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0o644))

	players, err := NewFileSource(dir, nil, nil).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 2)

	alice := players[0]
	assert.Equal(t, "alice", alice.PlayerKey)
	assert.Equal(t, "76561198000000001", alice.PlatformID)
	assert.Equal(t, "Alice", alice.DisplayName)
	assert.Equal(t, "Jane Doe", alice.CharacterName)
	assert.Equal(t, "Nurse", alice.Profession)
	assert.Equal(t, "Wardens", alice.FactionName)
	assert.Equal(t, "WRD", alice.FactionTag)
	assert.Equal(t, domain.Counters{ZombieKills: 140, PlayerKills: 2, HoursSurvived: 12.5, CurrencyEarned: 3400.5}, alice.Lifetime)
	assert.False(t, alice.LastObservedAt.IsZero())

	// username falls back to the directory name
	assert.Equal(t, "bob", players[1].PlayerKey)
	assert.Empty(t, players[1].FactionName)
}

func TestFileSourceMissingDir(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope"), nil, nil).Fetch(context.Background())
	assert.Error(t, err)
}

func TestRemoteSourceFetch(t *testing.T) {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := &fakeQuerier{rows: [][]any{
		{"alice", "7656", "Alice", "Jane", "Nurse", "Wardens", "WRD", int64(10), int64(1), 4.5, 100.0, updated},
		{nil, "7657", nil, nil, nil, nil, nil, int64(1), int64(0), 1.0, 0.0, nil},
		{"carl", nil, nil, nil, nil, nil, nil, int64(-1), int64(0), 1.0, 0.0, nil},
		{"dora", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil},
	}}

	src := NewRemoteSource(q, "public.player_stats", time.Second, nil, nil)
	players, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 2)

	assert.Contains(t, q.lastSQL, `FROM "public"."player_stats"`)
	assert.Equal(t, "alice", players[0].PlayerKey)
	assert.Equal(t, "Wardens", players[0].FactionName)
	assert.Equal(t, updated, players[0].LastObservedAt)
	assert.Equal(t, domain.Counters{ZombieKills: 10, PlayerKills: 1, HoursSurvived: 4.5, CurrencyEarned: 100}, players[0].Lifetime)
	assert.Equal(t, "dora", players[1].PlayerKey)
	assert.Equal(t, domain.Counters{}, players[1].Lifetime)
}

func TestRemoteSourceQueryError(t *testing.T) {
	src := NewRemoteSource(&fakeQuerier{err: errors.New("connection refused")}, "player_stats", 0, nil, nil)
	_, err := src.Fetch(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestSelectStatsQueryQuotesTable(t *testing.T) {
	assert.Contains(t, selectStatsQuery(`stats"; DROP TABLE x`), `FROM "stats""; DROP TABLE x"`)
}

func TestChainSourceFallsBack(t *testing.T) {
	remote := &FakeSource{name: "remote", FetchFunc: func(context.Context) ([]domain.PlayerLifetimeStats, error) {
		return nil, errors.New("down")
	}}
	file := &FakeSource{name: "file", FetchFunc: func(context.Context) ([]domain.PlayerLifetimeStats, error) {
		return []domain.PlayerLifetimeStats{{PlayerKey: "alice"}}, nil
	}}

	chain := NewChainSource(nil, nil, remote, file)
	players, err := chain.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, players, 1)
	assert.Equal(t, []string{"Fetch"}, remote.trace)
	assert.Equal(t, []string{"Fetch"}, file.trace)
	assert.Equal(t, "chain:remote:file", chain.Name())
}

func TestChainSourcePrefersFirst(t *testing.T) {
	remote := &FakeSource{name: "remote", FetchFunc: func(context.Context) ([]domain.PlayerLifetimeStats, error) {
		return []domain.PlayerLifetimeStats{{PlayerKey: "from-remote"}}, nil
	}}
	file := &FakeSource{name: "file"}

	players, err := NewChainSource(nil, nil, remote, file).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-remote", players[0].PlayerKey)
	assert.Empty(t, file.trace)
}

func TestChainSourceAllFail(t *testing.T) {
	fail := func(context.Context) ([]domain.PlayerLifetimeStats, error) { return nil, errors.New("down") }
	chain := NewChainSource(nil, nil, &FakeSource{name: "a", FetchFunc: fail}, &FakeSource{name: "b", FetchFunc: fail})

	_, err := chain.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	_, err = NewChainSource(nil, nil).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestAdapterFiltersBlacklistCaseInsensitive(t *testing.T) {
	src := &FakeSource{name: "file", FetchFunc: func(context.Context) ([]domain.PlayerLifetimeStats, error) {
		return []domain.PlayerLifetimeStats{{PlayerKey: "Alice"}, {PlayerKey: "bob"}, {PlayerKey: "Cheater"}}, nil
	}}
	bl := &FakeBlacklist{BlacklistedUsernamesFunc: func(context.Context) ([]string, error) {
		return []string{"cheater", "ALICE"}, nil
	}}

	players, err := NewAdapter(src, bl, nil).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "bob", players[0].PlayerKey)
}

func TestAdapterBlacklistFailureServesUnfiltered(t *testing.T) {
	src := &FakeSource{name: "file", FetchFunc: func(context.Context) ([]domain.PlayerLifetimeStats, error) {
		return []domain.PlayerLifetimeStats{{PlayerKey: "alice"}}, nil
	}}
	bl := &FakeBlacklist{BlacklistedUsernamesFunc: func(context.Context) ([]string, error) {
		return nil, errors.New("db locked")
	}}

	players := NewAdapter(src, bl, nil).FetchAllCurrentStats(context.Background())
	assert.Len(t, players, 1)
}

func TestAdapterStrictAndDegradingFetch(t *testing.T) {
	src := &FakeSource{name: "remote", FetchFunc: func(context.Context) ([]domain.PlayerLifetimeStats, error) {
		return nil, ErrSourceUnavailable
	}}
	a := NewAdapter(src, nil, nil)

	_, err := a.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	players := a.FetchAllCurrentStats(context.Background())
	assert.NotNil(t, players)
	assert.Empty(t, players)

	_, err = NewAdapter(nil, nil, nil).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
