package state

import (
	"os"
	"path/filepath"
	"testing"

	"boreas/internal/domain"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state")
	return New(path), path
}

func TestResumeMissingFile(t *testing.T) {
	s, _ := newStore(t)
	if _, ok := s.Resume(); ok {
		t.Error("Resume reported valid state for a missing file")
	}
}

func TestSetThenResume(t *testing.T) {
	s, path := newStore(t)

	day, _ := domain.ParseDay("20240515")
	if err := s.Set(day); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := s.Resume()
	if !ok {
		t.Fatal("Resume reported no valid state after Set")
	}
	if !got.Equal(day) {
		t.Errorf("Resume = %v, want %v", got, day)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading state file: %v", err)
	}
	if string(data) != "20240515" {
		t.Errorf("state file contains %q, want %q", data, "20240515")
	}
}

func TestAdvanceStoresNextDay(t *testing.T) {
	s, _ := newStore(t)

	day, _ := domain.ParseDay("20240531")
	if err := s.Advance(day); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	got, ok := s.Resume()
	if !ok {
		t.Fatal("Resume reported no valid state after Advance")
	}
	if got.String() != "20240601" {
		t.Errorf("Resume = %v, want 20240601 (day after the exported day)", got)
	}
}

func TestResumeRejectsGarbage(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"partial":    "2024",
		"not a date": "hello",
		"pre-floor":  "19991231",
		"far future": "29990101",
		"iso format": "2024-05-15",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			s, path := newStore(t)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("writing state file: %v", err)
			}
			if _, ok := s.Resume(); ok {
				t.Errorf("Resume accepted %q as valid state", content)
			}
		})
	}
}

func TestSetOverwrites(t *testing.T) {
	s, _ := newStore(t)

	d1, _ := domain.ParseDay("20240101")
	d2, _ := domain.ParseDay("20240201")
	if err := s.Set(d1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(d2); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := s.Resume()
	if !ok || !got.Equal(d2) {
		t.Errorf("Resume = %v ok=%v, want %v", got, ok, d2)
	}
}

func TestSetLeavesNoTempFiles(t *testing.T) {
	s, path := newStore(t)

	day, _ := domain.ParseDay("20240515")
	if err := s.Set(day); err != nil {
		t.Fatalf("Set: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("reading state dir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("state dir has %v, want only the state file", names)
	}
}
