package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/dukerupert/dauphindash/internal/model"
)

const (
	KeyGoalWeight          = "goal_weight"
	KeyGoalWorkoutsPerWeek = "goal_workouts_per_week"
	KeyCodingCapPerDay     = "coding_cap_per_day"
	KeyGistID              = "gist_id"
	KeyStravaRefreshToken  = "strava_refresh_token"
)

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// GetDefault returns def when the key has never been set.
func (s *SettingsStore) GetDefault(key, def string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) GetAll() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// Goals reads the goal settings. Missing or unparseable values fall back to
// model.DefaultGoals.
func (s *SettingsStore) Goals() (model.Goals, error) {
	g := model.DefaultGoals()

	all, err := s.GetAll()
	if err != nil {
		return g, err
	}
	if v, err := strconv.ParseFloat(all[KeyGoalWeight], 64); err == nil && v > 0 {
		g.Weight = v
	}
	if v, err := strconv.Atoi(all[KeyGoalWorkoutsPerWeek]); err == nil && v > 0 {
		g.WorkoutsPerWeek = v
	}
	if v, err := strconv.Atoi(all[KeyCodingCapPerDay]); err == nil && v > 0 {
		g.CodingCapPerDay = v
	}
	return g, nil
}

func (s *SettingsStore) SetGoals(g model.Goals) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin set goals: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	values := map[string]string{
		KeyGoalWeight:          strconv.FormatFloat(g.Weight, 'f', -1, 64),
		KeyGoalWorkoutsPerWeek: strconv.Itoa(g.WorkoutsPerWeek),
		KeyCodingCapPerDay:     strconv.Itoa(g.CodingCapPerDay),
	}
	for key, value := range values {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now,
		); err != nil {
			return fmt.Errorf("set goal %q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit goals: %w", err)
	}
	return nil
}
