package state

import "database/sql"

// SettingsState represents the saved playback settings.
type SettingsState struct {
	Volume       float64
	Muted        bool
	PlaybackRate float64
	LoopEnabled  bool
	LoopStart    float64 // fraction of track duration
	LoopEnd      float64
}

// PositionState represents the saved playback position.
type PositionState struct {
	TrackPath string
	Position  float64 // seconds
}

// GetSettings returns the saved playback settings, or defaults when
// nothing was saved yet.
func (m *Manager) GetSettings() (*SettingsState, error) {
	var s SettingsState

	row := m.db.QueryRow(`
		SELECT volume, muted, playback_rate, loop_enabled, loop_start, loop_end
		FROM playback_state WHERE id = 1
	`)
	err := row.Scan(&s.Volume, &s.Muted, &s.PlaybackRate, &s.LoopEnabled, &s.LoopStart, &s.LoopEnd)
	if err == sql.ErrNoRows {
		return &SettingsState{Volume: 1.0, PlaybackRate: 1.0}, nil
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// SaveSettings persists the playback settings.
func (m *Manager) SaveSettings(s SettingsState) error {
	_, err := m.db.Exec(`
		INSERT INTO playback_state (id, volume, muted, playback_rate, loop_enabled, loop_start, loop_end)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted,
			playback_rate = excluded.playback_rate,
			loop_enabled = excluded.loop_enabled,
			loop_start = excluded.loop_start,
			loop_end = excluded.loop_end
	`, s.Volume, s.Muted, s.PlaybackRate, s.LoopEnabled, s.LoopStart, s.LoopEnd)
	return err
}

// GetPosition returns the saved playback position.
func (m *Manager) GetPosition() (*PositionState, error) {
	var p PositionState

	row := m.db.QueryRow(`SELECT track_path, position FROM playback_state WHERE id = 1`)
	err := row.Scan(&p.TrackPath, &p.Position)
	if err == sql.ErrNoRows {
		return &PositionState{}, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func savePosition(db *sql.DB, p PositionState) error {
	_, err := db.Exec(`
		INSERT INTO playback_state (id, track_path, position)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			track_path = excluded.track_path,
			position = excluded.position
	`, p.TrackPath, p.Position)
	return err
}
