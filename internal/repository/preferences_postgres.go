package repository

import (
	"database/sql"
	"fmt"
)

const (
	settingTournamentID = "tournament_id"
	settingRound        = "round"
)

type PreferencesPostgres struct {
	db *sql.DB
}

func NewPreferencesPostgres(db *sql.DB) *PreferencesPostgres {
	return &PreferencesPostgres{db: db}
}

func (r *PreferencesPostgres) getSetting(key string) (string, error) {
	var val string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return val, nil
}

func (r *PreferencesPostgres) setSetting(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func (r *PreferencesPostgres) GetTournamentID() (string, error) {
	return r.getSetting(settingTournamentID)
}

func (r *PreferencesPostgres) SetTournamentID(id string) error {
	return r.setSetting(settingTournamentID, id)
}

func (r *PreferencesPostgres) GetRound() (string, error) {
	return r.getSetting(settingRound)
}

func (r *PreferencesPostgres) SetRound(round string) error {
	return r.setSetting(settingRound, round)
}

func (r *PreferencesPostgres) GetWatchList() (map[string]struct{}, error) {
	rows, err := r.db.Query(`SELECT player_name FROM watch_list`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch list: %w", err)
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan watch list entry: %w", err)
		}
		names[name] = struct{}{}
	}
	return names, rows.Err()
}

func (r *PreferencesPostgres) AddToWatchList(name string) error {
	_, err := r.db.Exec(`
		INSERT INTO watch_list (player_name) VALUES ($1)
		ON CONFLICT (player_name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("failed to add %s to watch list: %w", name, err)
	}
	return nil
}

func (r *PreferencesPostgres) RemoveFromWatchList(name string) error {
	_, err := r.db.Exec(`DELETE FROM watch_list WHERE player_name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to remove %s from watch list: %w", name, err)
	}
	return nil
}
