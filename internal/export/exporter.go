package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"boreas/internal/artifact"
	"boreas/internal/domain"
	"boreas/internal/units"
)

// Exporter writes one day's artifact at a time.
type Exporter struct {
	writer *artifact.Writer
	log    *slog.Logger
}

// NewExporter returns an Exporter emitting through the given artifact
// writer.
func NewExporter(w *artifact.Writer, log *slog.Logger) *Exporter {
	return &Exporter{writer: w, log: log}
}

// ExportDay pulls every station's readings for day, normalizes units, and
// writes the day's artifact under a lock marker. A day with no data on any
// station writes nothing and returns zero; that is a quiet gap, not an
// error. The lock marker is removed only after the artifact is fully
// written, so a crash mid-write leaves the marker in place and the file
// flagged as suspect.
func (e *Exporter) ExportDay(ctx context.Context, day domain.Day, stations []*Station) (int, error) {
	start, end := day.Start(), day.End()

	var data []artifact.StationData
	for _, st := range stations {
		readings, err := st.Reader.Readings(ctx, start, end)
		if err != nil {
			return 0, fmt.Errorf("station %s day %s: %w", st.Name, day, err)
		}
		if len(readings) == 0 {
			e.log.Debug("no data for station", "station", st.Name, "day", day.String())
			continue
		}

		// Normalize before any file is touched; a conversion failure is a
		// schema error and must not leave a lock marker behind.
		for i := range readings {
			if err := units.ConvertReading(&readings[i]); err != nil {
				return 0, fmt.Errorf("station %s day %s: %w", st.Name, day, err)
			}
		}

		e.log.Debug("found records", "station", st.Name, "day", day.String(), "records", len(readings))
		data = append(data, artifact.StationData{
			Name:        st.Name,
			DBPath:      st.Meta.DBPath,
			Longitude:   st.Meta.Longitude,
			Latitude:    st.Meta.Latitude,
			Description: st.Meta.Description,
			Readings:    readings,
		})
	}

	if len(data) == 0 {
		e.log.Info("no data for any station, skipping", "day", day.String())
		return 0, nil
	}

	p := e.writer.Paths(day)
	if err := e.writer.EnsureDir(p); err != nil {
		return 0, err
	}

	// The lock marker goes down before the first data write and comes up
	// only after the artifact is complete.
	if err := os.WriteFile(p.Lock, nil, 0o644); err != nil {
		return 0, fmt.Errorf("creating lock marker %s: %w", p.Lock, err)
	}

	n, err := e.writer.WriteDay(p, data)
	if err != nil {
		return 0, err
	}

	if err := os.Remove(p.Lock); err != nil {
		return 0, fmt.Errorf("removing lock marker %s: %w", p.Lock, err)
	}

	e.log.Info("wrote artifact", "day", day.String(), "path", p.File, "records", n)
	return n, nil
}
