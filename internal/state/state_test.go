package state

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := OpenAt(filepath.Join(t.TempDir(), "lowtide.db"))
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestGetSettings_Empty(t *testing.T) {
	m := openTestManager(t)

	s, err := m.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if s.Volume != 1.0 {
		t.Errorf("Volume = %v, want default 1.0", s.Volume)
	}
	if s.PlaybackRate != 1.0 {
		t.Errorf("PlaybackRate = %v, want default 1.0", s.PlaybackRate)
	}
	if s.Muted || s.LoopEnabled {
		t.Errorf("expected muted and loop disabled by default, got %+v", s)
	}
}

func TestSaveAndGetSettings(t *testing.T) {
	m := openTestManager(t)

	saved := SettingsState{
		Volume:       0.6,
		Muted:        true,
		PlaybackRate: 1.5,
		LoopEnabled:  true,
		LoopStart:    0.2,
		LoopEnd:      0.5,
	}
	if err := m.SaveSettings(saved); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, err := m.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if *got != saved {
		t.Errorf("GetSettings = %+v, want %+v", *got, saved)
	}
}

func TestSaveSettings_Upsert(t *testing.T) {
	m := openTestManager(t)

	if err := m.SaveSettings(SettingsState{Volume: 0.3, PlaybackRate: 1}); err != nil {
		t.Fatalf("first SaveSettings failed: %v", err)
	}
	if err := m.SaveSettings(SettingsState{Volume: 0.9, PlaybackRate: 2}); err != nil {
		t.Fatalf("second SaveSettings failed: %v", err)
	}

	got, err := m.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got.Volume != 0.9 || got.PlaybackRate != 2 {
		t.Errorf("GetSettings = %+v, want second save to win", *got)
	}
}

func TestSavePosition_DebouncedFlush(t *testing.T) {
	m := openTestManager(t)

	m.SavePosition(PositionState{TrackPath: "/music/a.flac", Position: 12.5})
	m.SavePosition(PositionState{TrackPath: "/music/a.flac", Position: 13.0})

	// Wait for the debounce to fire.
	time.Sleep(saveDebounce + 200*time.Millisecond)

	got, err := m.GetPosition()
	if err != nil {
		t.Fatalf("GetPosition failed: %v", err)
	}
	if got.TrackPath != "/music/a.flac" || got.Position != 13.0 {
		t.Errorf("GetPosition = %+v, want the last save", *got)
	}
}

func TestClose_FlushesPendingPosition(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lowtide.db")
	m, err := OpenAt(dbPath)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}

	m.SavePosition(PositionState{TrackPath: "/music/b.flac", Position: 7})
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	m2, err := OpenAt(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer m2.Close()

	got, err := m2.GetPosition()
	if err != nil {
		t.Fatalf("GetPosition failed: %v", err)
	}
	if got.TrackPath != "/music/b.flac" || got.Position != 7 {
		t.Errorf("GetPosition = %+v, want the pending save flushed on Close", *got)
	}
}

func TestPositionAndSettings_ShareRow(t *testing.T) {
	m := openTestManager(t)

	if err := m.SaveSettings(SettingsState{Volume: 0.4, PlaybackRate: 1}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if err := savePosition(m.db, PositionState{TrackPath: "/music/c.flac", Position: 3}); err != nil {
		t.Fatalf("savePosition failed: %v", err)
	}

	s, err := m.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if s.Volume != 0.4 {
		t.Errorf("Volume = %v after position save, want 0.4 preserved", s.Volume)
	}
	p, err := m.GetPosition()
	if err != nil {
		t.Fatalf("GetPosition failed: %v", err)
	}
	if p.Position != 3 {
		t.Errorf("Position = %v, want 3", p.Position)
	}
}
