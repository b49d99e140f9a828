// Package artifact writes daily columnar output files. One file holds one
// UTC day across all stations, grouped into an acquisition directory per
// instrument-month. All provenance travels as file-level key/value metadata;
// measurement series are parquet columns, with SQL NULLs preserved as
// parquet nulls.
package artifact

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"boreas/internal/domain"
)

// ProducerVersion tags every artifact with the version of the producing
// binary.
const ProducerVersion = "0.4.0"

// Version selects the on-disk layout of the output archive.
type Version string

const (
	// V3 is the legacy single-station layout: no station column, series
	// attributes at the top level. Valid only with exactly one station.
	V3 Version = "3.0.0"

	// V4 is the multi-station layout: a station column partitions the rows
	// and all attributes are namespaced per station.
	V4 Version = "4.0.0"
)

// ParseVersion validates an archive-format version string from
// configuration.
func ParseVersion(s string) (Version, error) {
	switch Version(s) {
	case V3, V4:
		return Version(s), nil
	}
	return "", fmt.Errorf("unsupported archive version %q (supported: %s, %s)", s, V3, V4)
}

// StationData is one station's contribution to a day: its identity and
// optional metadata from configuration, plus the day's normalized readings.
type StationData struct {
	Name        string
	DBPath      string
	Longitude   *float64
	Latitude    *float64
	Description string
	Readings    []domain.Reading
}

// DayPaths locates a day's artifact within the output tree.
type DayPaths struct {
	AcqName string // acquisition directory name
	Dir     string // acquisition directory path
	File    string // artifact path
	Lock    string // lock-marker path
}

// Writer emits daily artifacts under a single output archive root.
type Writer struct {
	Root       string
	Instrument string
	Version    Version
}

// NewWriter returns a Writer for the given archive root and instrument.
func NewWriter(root, instrument string, version Version) *Writer {
	return &Writer{Root: root, Instrument: instrument, Version: version}
}

// Paths returns the acquisition directory and file locations for day. The
// acquisition is keyed by the day's own containing month; a month boundary
// never splits a day.
func (w *Writer) Paths(day domain.Day) DayPaths {
	acq := fmt.Sprintf("%sZ_%s_weather",
		day.MonthStart().Start().Format("20060102T150405"), w.Instrument)
	dir := filepath.Join(w.Root, acq)
	file := day.String() + ".parquet"
	return DayPaths{
		AcqName: acq,
		Dir:     dir,
		File:    filepath.Join(dir, file),
		Lock:    filepath.Join(dir, "."+file+".lock"),
	}
}

// EnsureDir creates the acquisition directory if it does not exist.
func (w *Writer) EnsureDir(p DayPaths) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("creating acquisition directory %s: %w", p.Dir, err)
	}
	return nil
}

// WriteDay writes the day's artifact at p.File, creating or truncating it.
// Stations with no readings must be filtered out by the caller; the row and
// metadata layout is selected by the Writer's Version. Returns the number of
// records written.
func (w *Writer) WriteDay(p DayPaths, stations []StationData) (int, error) {
	meta := w.globalMetadata(p.AcqName)

	switch w.Version {
	case V3:
		if len(stations) != 1 {
			return 0, fmt.Errorf("archive version %s holds exactly one station, got %d", V3, len(stations))
		}
		return writeLegacyDay(p.File, stations[0], meta)
	case V4:
		return writeDay(p.File, stations, meta)
	}
	return 0, fmt.Errorf("unsupported archive version %q", w.Version)
}

// globalMetadata assembles the whole-file provenance attributes.
func (w *Writer) globalMetadata(acqName string) map[string]string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	username := os.Getenv("USER")
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	if username == "" {
		username = "unknown"
	}

	return map[string]string{
		"git_version_tag":   "boreas-" + ProducerVersion,
		"system_user":       username,
		"collection_server": host,
		"instrument_name":   w.Instrument,
		"archive_version":   string(w.Version),
		"acquisition_name":  acqName,
		"acquisition_type":  "weather",
	}
}
