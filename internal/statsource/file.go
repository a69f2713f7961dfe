package statsource

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/metrics"
)

// playerFile is the per-player JSON document the game server mod writes
type playerFile struct {
	Username string `json:"username"`
	Steam    struct {
		SteamID64 string `json:"steamid64"`
		SteamName string `json:"steam_name"`
	} `json:"steam"`
	Character struct {
		Name       string `json:"name"`
		Profession string `json:"profession"`
	} `json:"character"`
	HoursSurvived float64 `json:"hours_survived"`
	Kills         struct {
		Zombies   int64 `json:"zombies"`
		Survivors int64 `json:"survivors"`
	} `json:"kills"`
	Economy struct {
		Earned float64 `json:"earned"`
	} `json:"economy"`
	Faction *struct {
		Name string `json:"name"`
		Tag  string `json:"tag"`
	} `json:"faction"`
}

// FileSource reads the legacy tree <dir>/<username>/<username>.json
type FileSource struct {
	dir     string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewFileSource creates a source over the players directory
func NewFileSource(dir string, logger *slog.Logger, m *metrics.Metrics) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{dir: dir, logger: logger, metrics: m}
}

// Name implements Source
func (f *FileSource) Name() string { return "file" }

// Fetch reads every player file. Files that are missing, unreadable or not valid
// JSON are skipped. A missing players directory is an error.
func (f *FileSource) Fetch(ctx context.Context) ([]domain.PlayerLifetimeStats, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading players dir: %w", err)
	}

	var players []domain.PlayerLifetimeStats
	skipped := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := f.readPlayer(entry.Name())
		if err != nil {
			skipped++
			f.logger.Debug("skipping player record", "player", entry.Name(), "error", err)
			continue
		}
		players = append(players, p)
	}
	f.metrics.RecordsSkipped(f.Name(), skipped)
	return players, nil
}

func (f *FileSource) readPlayer(username string) (domain.PlayerLifetimeStats, error) {
	path := filepath.Join(f.dir, username, username+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PlayerLifetimeStats{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.PlayerLifetimeStats{}, err
	}

	var pf playerFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return domain.PlayerLifetimeStats{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	key := pf.Username
	if key == "" {
		key = username
	}
	p := domain.PlayerLifetimeStats{
		PlayerKey:     key,
		PlatformID:    pf.Steam.SteamID64,
		DisplayName:   pf.Steam.SteamName,
		CharacterName: pf.Character.Name,
		Profession:    pf.Character.Profession,
		Lifetime: domain.Counters{
			ZombieKills:    pf.Kills.Zombies,
			PlayerKills:    pf.Kills.Survivors,
			HoursSurvived:  pf.HoursSurvived,
			CurrencyEarned: pf.Economy.Earned,
		},
		LastObservedAt: info.ModTime().UTC(),
	}
	if pf.Faction != nil {
		p.FactionName = pf.Faction.Name
		p.FactionTag = pf.Faction.Tag
	}
	return p, nil
}
