// boreas exports per-five-minute weather-station readings from wview SQLite
// archives into daily columnar files. It is meant to run unattended from a
// scheduler and is safe to re-invoke: completed days are never reprocessed.
//
// Usage:
//
//	boreas [-c boreas.yaml] [-force] [-stop YYYYMMDD] [-v]
//	boreas -reset [-reset-day YYYYMMDD] [-force]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"boreas/internal/config"
	"boreas/internal/domain"
	"boreas/internal/export"
	"boreas/internal/metrics"
	"boreas/internal/state"
	"boreas/internal/util"
)

func main() {
	os.Exit(run())
}

func run() int {
	confPath := flag.String("c", "./boreas.yaml", "read configuration from this file")
	force := flag.Bool("force", false,
		"write data even if the boundary day is not complete; with -reset, overwrite existing state")
	reset := flag.Bool("reset", false,
		"reset the resume state and exit without processing data")
	resetDay := flag.String("reset-day", "",
		"with -reset: the UTC day to reset to (default: earliest record across stations)")
	stop := flag.String("stop", "", "stop after writing this UTC day instead of yesterday")
	verbose := flag.Bool("v", false, "be verbose (mostly for debugging)")
	flag.Parse()

	if p := os.Getenv("BOREAS_CONFIG"); p != "" && *confPath == "./boreas.yaml" {
		*confPath = p
	}

	cfg, err := config.Load(*confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	level := cfg.Logging.Level
	if *verbose {
		level = "debug"
	}
	logger := util.NewLogger(level, cfg.Logging.Format)
	util.SetDefault(logger)

	ctx := context.Background()
	store := state.New(cfg.StatePath)
	acc := metrics.NewAccumulator()
	ctrl := export.NewController(cfg, store, acc, logger)

	// Reset only repositions the resume pointer; it never exports and never
	// reports metrics.
	if *reset {
		var day domain.Day
		if *resetDay != "" {
			day, err = parseDayArg(*resetDay)
			if err != nil {
				fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
				return 1
			}
		}
		if err := ctrl.Reset(ctx, day, *force); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		return 0
	}

	opts := export.RunOptions{Force: *force}
	if *stop != "" {
		opts.Stop, err = parseDayArg(*stop)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
	}

	status := 0
	if err := ctrl.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		status = 1
	}

	// Best effort: a failed metrics write never changes the exit status.
	if err := acc.Flush(cfg.TextfileDir, status); err != nil {
		logger.Warn("writing metrics file", "error", err)
	}
	return status
}

// parseDayArg parses and range-checks a YYYYMMDD command-line argument.
func parseDayArg(s string) (domain.Day, error) {
	day, err := domain.ParseDay(s)
	if err != nil {
		return domain.Day{}, fmt.Errorf("%s must be of the form YYYYMMDD", s)
	}
	if day.Before(domain.DayLimit) || day.After(domain.DayOf(time.Now())) {
		return domain.Day{}, fmt.Errorf("%s out of range", s)
	}
	return day, nil
}
