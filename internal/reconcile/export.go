package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ernie/survivor-stats/internal/domain"
)

// ExportHeader is the first line of every season standings export
const ExportHeader = "SteamID,Name,Zombie Kills,Player Kills,Hours Survived,Economy Earned"

// ExportRow is one parsed line of a standings export
type ExportRow struct {
	PlatformID     string  `json:"steam_id"`
	Name           string  `json:"name"`
	ZombieKills    int64   `json:"zombie_kills"`
	PlayerKills    int64   `json:"player_kills"`
	HoursSurvived  float64 `json:"hours_survived"`
	CurrencyEarned float64 `json:"economy_earned"`
}

// WriteExport writes the season counters of rows as a delimited text table.
// Rows are ordered by player key so the same standings always produce the same text.
func WriteExport(w io.Writer, rows []domain.SeasonPlayerStats) error {
	sorted := make([]domain.SeasonPlayerStats, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Player.PlayerKey < sorted[j].Player.PlayerKey
	})

	if _, err := io.WriteString(w, ExportHeader+"\n"); err != nil {
		return err
	}
	for _, r := range sorted {
		_, err := fmt.Fprintf(w, "%s,%s,%d,%d,%s,%s\n",
			r.Player.PlatformID,
			quoteName(r.Player.PlayerKey),
			r.Season.ZombieKills,
			r.Season.PlayerKills,
			strconv.FormatFloat(r.Season.HoursSurvived, 'f', 2, 64),
			strconv.FormatFloat(r.Season.CurrencyEarned, 'f', -1, 64),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ExportString renders rows with WriteExport
func ExportString(rows []domain.SeasonPlayerStats) string {
	var b strings.Builder
	// strings.Builder never fails
	_ = WriteExport(&b, rows)
	return b.String()
}

// quoteName always wraps the name in double quotes so embedded commas survive
func quoteName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ParseExport reads an export back into rows
func ParseExport(text string) ([]ExportRow, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = 6

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if strings.Join(records[0], ",") != ExportHeader {
		return nil, fmt.Errorf("parsing export: unexpected header %q", strings.Join(records[0], ","))
	}

	rows := make([]ExportRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := ExportRow{PlatformID: rec[0], Name: rec[1]}
		if row.ZombieKills, err = strconv.ParseInt(rec[2], 10, 64); err != nil {
			return nil, fmt.Errorf("parsing export line %d: %w", i+2, err)
		}
		if row.PlayerKills, err = strconv.ParseInt(rec[3], 10, 64); err != nil {
			return nil, fmt.Errorf("parsing export line %d: %w", i+2, err)
		}
		if row.HoursSurvived, err = strconv.ParseFloat(rec[4], 64); err != nil {
			return nil, fmt.Errorf("parsing export line %d: %w", i+2, err)
		}
		if row.CurrencyEarned, err = strconv.ParseFloat(rec[5], 64); err != nil {
			return nil, fmt.Errorf("parsing export line %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
