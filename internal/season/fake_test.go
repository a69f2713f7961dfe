package season

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
)

var errNotFound = errors.New("not found")

// FakeStore is an in-memory season registry and snapshot store. Any ...Func
// field overrides the default behavior of its method.
type FakeStore struct {
	mu        sync.Mutex
	trace     []string
	nextID    int64
	seasons   []domain.Season
	snapshots []domain.PlayerSeasonSnapshot

	GetSnapshotsFunc    func(ctx context.Context, seasonID int64) ([]domain.PlayerSeasonSnapshot, error)
	CreateSnapshotsFunc func(ctx context.Context, seasonID int64, snaps []domain.PlayerSeasonSnapshot) (int, error)
	ArchiveSeasonFunc   func(ctx context.Context, id int64, export string, endDate *time.Time) error
	CreateSeasonFunc    func(ctx context.Context, name string, endDate *time.Time, active bool) (*domain.Season, error)
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (f *FakeStore) record(op string) {
	f.trace = append(f.trace, op)
}

// Trace returns the recorded method calls
func (f *FakeStore) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeStore) addSeason(s domain.Season) *domain.Season {
	f.nextID++
	s.ID = f.nextID
	f.seasons = append(f.seasons, s)
	cp := s
	return &cp
}

func (f *FakeStore) GetActiveSeason(ctx context.Context) (*domain.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetActiveSeason")
	for _, s := range f.seasons {
		if s.IsActive {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *FakeStore) GetSeason(ctx context.Context, id int64) (*domain.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetSeason")
	for _, s := range f.seasons {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (f *FakeStore) ListSeasons(ctx context.Context) ([]domain.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListSeasons")
	out := make([]domain.Season, 0, len(f.seasons))
	for i := len(f.seasons) - 1; i >= 0; i-- {
		out = append(out, f.seasons[i])
	}
	return out, nil
}

func (f *FakeStore) CountSeasons(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CountSeasons")
	return len(f.seasons), nil
}

func (f *FakeStore) CreateSeason(ctx context.Context, name string, endDate *time.Time, active bool) (*domain.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSeason")
	if f.CreateSeasonFunc != nil {
		return f.CreateSeasonFunc(ctx, name, endDate, active)
	}
	if active {
		for _, s := range f.seasons {
			if s.IsActive {
				return nil, errors.New("UNIQUE constraint failed: seasons.is_active")
			}
		}
	}
	return f.addSeason(domain.Season{Name: name, StartDate: time.Now().UTC(), EndDate: endDate, IsActive: active}), nil
}

func (f *FakeStore) CreateArchivedSeason(ctx context.Context, name, export string, endDate time.Time) (*domain.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateArchivedSeason")
	return f.addSeason(domain.Season{Name: name, StartDate: endDate, EndDate: &endDate, FinalStandingsExport: &export}), nil
}

func (f *FakeStore) ArchiveSeason(ctx context.Context, id int64, export string, endDate *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ArchiveSeason")
	if f.ArchiveSeasonFunc != nil {
		return f.ArchiveSeasonFunc(ctx, id, export, endDate)
	}
	for i := range f.seasons {
		if f.seasons[i].ID == id {
			f.seasons[i].IsActive = false
			f.seasons[i].FinalStandingsExport = &export
			f.seasons[i].EndDate = endDate
			return nil
		}
	}
	return errNotFound
}

func (f *FakeStore) DeleteSeason(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteSeason")
	for i := range f.seasons {
		if f.seasons[i].ID == id {
			f.seasons = append(f.seasons[:i], f.seasons[i+1:]...)
			kept := f.snapshots[:0]
			for _, s := range f.snapshots {
				if s.SeasonID != id {
					kept = append(kept, s)
				}
			}
			f.snapshots = kept
			return nil
		}
	}
	return errNotFound
}

func (f *FakeStore) GetSnapshots(ctx context.Context, seasonID int64) ([]domain.PlayerSeasonSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetSnapshots")
	if f.GetSnapshotsFunc != nil {
		return f.GetSnapshotsFunc(ctx, seasonID)
	}
	var out []domain.PlayerSeasonSnapshot
	for _, s := range f.snapshots {
		if s.SeasonID == seasonID {
			out = append(out, s)
		}
	}
	return out, nil
}

// CreateSnapshots keeps the first row per (season, player key) like the real unique constraint
func (f *FakeStore) CreateSnapshots(ctx context.Context, seasonID int64, snaps []domain.PlayerSeasonSnapshot) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSnapshots")
	if f.CreateSnapshotsFunc != nil {
		return f.CreateSnapshotsFunc(ctx, seasonID, snaps)
	}
	inserted := 0
	for _, snap := range snaps {
		if snap.PlayerKey == "" || f.hasSnapshot(seasonID, snap.PlayerKey) {
			continue
		}
		snap.SeasonID = seasonID
		snap.ID = int64(len(f.snapshots) + 1)
		f.snapshots = append(f.snapshots, snap)
		inserted++
	}
	return inserted, nil
}

func (f *FakeStore) hasSnapshot(seasonID int64, key string) bool {
	for _, s := range f.snapshots {
		if s.SeasonID == seasonID && s.PlayerKey == key {
			return true
		}
	}
	return false
}

func (f *FakeStore) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.seasons {
		if s.IsActive {
			n++
		}
	}
	return n
}

// FakeStats is a programmable StatsFetcher
type FakeStats struct {
	mu      sync.Mutex
	players []domain.PlayerLifetimeStats
	err     error
}

func (f *FakeStats) Set(players []domain.PlayerLifetimeStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players = players
}

func (f *FakeStats) Fetch(ctx context.Context) ([]domain.PlayerLifetimeStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.PlayerLifetimeStats, len(f.players))
	copy(out, f.players)
	return out, nil
}
