// Package export drives the incremental day-boundary export: it decides the
// day range from persisted state, gates the boundary day on completeness,
// pulls and normalizes each day's readings, and emits one artifact per day.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"boreas/internal/archive"
	"boreas/internal/config"
	"boreas/internal/domain"
)

// Station bundles one configured station for the duration of a run: its
// open archive reader, its configuration section, and the day of its
// earliest record.
type Station struct {
	Name     string
	Reader   archive.Reader
	Meta     config.Station
	Earliest domain.Day
}

// OpenStations opens every configured station archive in sorted name order
// and determines each one's earliest record. Any failure closes the readers
// opened so far and is fatal: a run must not start with a partial station
// set.
func OpenStations(ctx context.Context, cfg *config.Config, log *slog.Logger) ([]*Station, error) {
	var stations []*Station

	for _, name := range cfg.StationNames() {
		meta := cfg.Stations[name]

		reader, err := archive.OpenSQLite(ctx, meta.DBPath)
		if err != nil {
			CloseStations(stations, log)
			return nil, fmt.Errorf("station %s: %w", name, err)
		}

		earliest, err := reader.Earliest(ctx)
		if err != nil {
			reader.Close()
			CloseStations(stations, log)
			return nil, fmt.Errorf("station %s: %w", name, err)
		}

		log.Debug("opened station archive",
			"station", name, "db_path", meta.DBPath, "earliest", domain.DayOf(earliest).String())

		stations = append(stations, &Station{
			Name:     name,
			Reader:   reader,
			Meta:     meta,
			Earliest: domain.DayOf(earliest),
		})
	}
	return stations, nil
}

// CloseStations closes all station readers, logging rather than failing on
// close errors. It runs on every exit path of a run.
func CloseStations(stations []*Station, log *slog.Logger) {
	for _, st := range stations {
		if err := st.Reader.Close(); err != nil {
			log.Warn("closing station archive", "station", st.Name, "error", err)
		}
	}
}

// earliestDay returns the earliest record day across all stations, capped
// above by fallback (used when every station starts later than it).
func earliestDay(stations []*Station, fallback domain.Day) domain.Day {
	first := fallback
	for _, st := range stations {
		if first.After(st.Earliest) {
			first = st.Earliest
		}
	}
	return first
}
