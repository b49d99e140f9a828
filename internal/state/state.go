// Package state persists the export pipeline's single durable checkpoint:
// the next UTC day to export.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"boreas/internal/domain"
)

// Store reads and writes the resume-day file. The stored value is the next
// day not yet exported.
type Store struct {
	path string
}

// New returns a Store backed by the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Resume returns the persisted next-day-to-export. ok is false when the
// file is missing, unreadable, or does not parse to a plausible day; callers
// must treat that as "no valid state", never as a default starting point.
func (s *Store) Resume() (day domain.Day, ok bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Day{}, false
	}

	day, err = domain.ParseDay(strings.TrimSpace(string(data)))
	if err != nil {
		return domain.Day{}, false
	}

	// A day before the epoch floor or in the future is garbage, not state.
	if day.Before(domain.DayLimit) || day.After(domain.DayOf(time.Now())) {
		return domain.Day{}, false
	}
	return day, true
}

// Set persists day as the next day to export. The write goes to a temp file
// in the same directory and is renamed into place so a crash can never leave
// a partial value behind.
func (s *Store) Set(day domain.Day) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("creating state temp file: %w", err)
	}

	if _, err := tmp.WriteString(day.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing state temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming state file: %w", err)
	}
	return nil
}

// Advance records that day has been fully exported, repositioning the
// resume point at the following day.
func (s *Store) Advance(day domain.Day) error {
	return s.Set(day.Next())
}
