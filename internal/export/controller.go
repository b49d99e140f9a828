package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"boreas/internal/artifact"
	"boreas/internal/config"
	"boreas/internal/domain"
	"boreas/internal/metrics"
	"boreas/internal/state"
)

// expectedSamples is the complete per-station sample count for one day:
// 1440 minutes/day at one reading every 5 minutes.
const expectedSamples = 288

// Controller orchestrates a run: it owns the station set for the run's
// duration, decides the day range, gates the boundary day, drives the
// exporter day by day, and accumulates outcome metrics.
type Controller struct {
	cfg     *config.Config
	state   *state.Store
	metrics *metrics.Accumulator
	log     *slog.Logger

	now func() time.Time
}

// RunOptions carries the per-invocation policy flags.
type RunOptions struct {
	// Force exports even when the boundary day is incomplete.
	Force bool

	// Stop, when set, replaces "yesterday" as the last day to export.
	Stop domain.Day
}

// NewController builds a Controller over the given collaborators.
func NewController(cfg *config.Config, st *state.Store, acc *metrics.Accumulator, log *slog.Logger) *Controller {
	return &Controller{
		cfg:     cfg,
		state:   st,
		metrics: acc,
		log:     log,
		now:     time.Now,
	}
}

// Run performs a normal export run. A nil return covers every intentional
// outcome, including "nothing to do" and "boundary day not complete yet";
// an error is fatal and maps to a nonzero exit.
func (c *Controller) Run(ctx context.Context, opts RunOptions) error {
	version, err := artifact.ParseVersion(c.cfg.ArchiveVersion)
	if err != nil {
		return err
	}
	if version == artifact.V3 && len(c.cfg.Stations) != 1 {
		return fmt.Errorf("archive version %s holds exactly one station, %d configured",
			artifact.V3, len(c.cfg.Stations))
	}

	stations, err := OpenStations(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	defer CloseStations(stations, c.log)

	first, ok := c.state.Resume()
	if !ok {
		return fmt.Errorf("bad state at %s: regenerate with -reset", c.cfg.StatePath)
	}
	c.metrics.Add("first_day", float64(first.Unix()))

	today := domain.DayOf(c.now())
	end := today.Prev()
	if !opts.Stop.IsZero() {
		end = opts.Stop
	}
	c.metrics.Add("yesterday", float64(end.Unix()))

	c.log.Debug("run range", "first_day", first.String(), "boundary_day", end.String())

	// Nothing to do: the boundary is already behind the resume point.
	if end.Before(first) {
		c.metrics.Add("days_written", 0)
		c.log.Info("nothing to do", "resume_day", first.String(), "boundary_day", end.String())
		return nil
	}

	if _, err := os.Stat(c.cfg.ArchiveRoot); err != nil {
		return fmt.Errorf("archive root %s not found: %w", c.cfg.ArchiveRoot, err)
	}

	// Only the boundary day is gated: days strictly in the past are assumed
	// settled, a day still being filled is not.
	ready, err := c.checkBoundary(ctx, stations, end, opts.Force)
	if err != nil {
		return err
	}
	if !ready {
		c.metrics.Add("days_written", 0)
		return nil
	}

	exporter := NewExporter(artifact.NewWriter(c.cfg.ArchiveRoot, c.cfg.Instrument, version), c.log)

	// Each completed day advances the resume point on its own, so a crash
	// mid-range resumes exactly at the first unfinished day.
	written := 0
	for day := first; !day.After(end); day = day.Next() {
		n, err := exporter.ExportDay(ctx, day, stations)
		if err != nil {
			c.metrics.Add("days_written", float64(written))
			return err
		}
		if n > 0 {
			written++
		}
		if err := c.state.Advance(day); err != nil {
			c.metrics.Add("days_written", float64(written))
			return err
		}
	}

	c.metrics.Add("days_written", float64(written))
	return nil
}

// checkBoundary applies the completeness gate to the boundary day. The day
// is ready only when every station reports exactly the expected sample
// count; with force, shortfalls are logged and the day proceeds anyway.
func (c *Controller) checkBoundary(ctx context.Context, stations []*Station, day domain.Day, force bool) (bool, error) {
	for _, st := range stations {
		count, err := st.Reader.Count(ctx, day.Start(), day.End())
		if err != nil {
			return false, fmt.Errorf("station %s: %w", st.Name, err)
		}

		c.metrics.AddLabeled("samples_yesterday", float64(count),
			map[string]string{"station": st.Name})

		if count != expectedSamples {
			if force {
				c.log.Warn("incomplete boundary day, continuing anyway",
					"station", st.Name, "day", day.String(), "records", count)
				continue
			}
			c.log.Info("incomplete boundary day, doing nothing",
				"station", st.Name, "day", day.String(), "records", count)
			return false, nil
		}
	}
	return true, nil
}

// Reset repositions the resume state and never exports. With a zero day the
// target is the earliest record across all configured stations; an explicit
// day earlier than that is clamped up to it. An existing valid state is
// only overwritten when force is set.
func (c *Controller) Reset(ctx context.Context, day domain.Day, force bool) error {
	stations, err := OpenStations(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	defer CloseStations(stations, c.log)

	if _, ok := c.state.Resume(); ok && !force {
		c.log.Info("state present, use -force to overwrite")
		return nil
	}

	if day.IsZero() {
		day = domain.DayLimit
	}

	if first := earliestDay(stations, domain.DayOf(c.now())); day.Before(first) {
		day = first
	}

	if err := c.state.Set(day); err != nil {
		return err
	}
	c.log.Info("state reset", "resume_day", day.String())
	return nil
}
