package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/dauphindash/internal/model"
)

type StravaActivityStore struct {
	db *sql.DB
}

func NewStravaActivityStore(db *sql.DB) *StravaActivityStore {
	return &StravaActivityStore{db: db}
}

// Upsert stores activities by Strava id, replacing earlier copies.
func (s *StravaActivityStore) Upsert(activities []model.StravaActivity) error {
	if len(activities) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert activities: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO strava_activities (id, name, type, distance, moving_time, elapsed_time, total_elevation_gain,
		   start_date, start_date_local, timezone, average_speed, max_speed, average_heartrate, calories, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, type = excluded.type, distance = excluded.distance,
		   moving_time = excluded.moving_time, elapsed_time = excluded.elapsed_time,
		   total_elevation_gain = excluded.total_elevation_gain, start_date = excluded.start_date,
		   start_date_local = excluded.start_date_local, timezone = excluded.timezone,
		   average_speed = excluded.average_speed, max_speed = excluded.max_speed,
		   average_heartrate = excluded.average_heartrate, calories = excluded.calories,
		   synced_at = excluded.synced_at`,
	)
	if err != nil {
		return fmt.Errorf("prepare upsert activity: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, a := range activities {
		if _, err := stmt.Exec(
			a.ID, a.Name, a.Type, a.Distance, a.MovingTime, a.ElapsedTime, a.TotalElevationGain,
			a.StartDate.UTC(), a.StartDateLocal, a.Timezone, a.AverageSpeed, a.MaxSpeed,
			nullFloat(a.AverageHeartrate), nullFloat(a.Calories), now,
		); err != nil {
			return fmt.Errorf("upsert activity %d: %w", a.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activities: %w", err)
	}
	return nil
}

// ListSince returns activities whose local start date is on or after sinceKey,
// oldest first. An empty sinceKey lists everything.
func (s *StravaActivityStore) ListSince(sinceKey string) ([]model.StravaActivity, error) {
	rows, err := s.db.Query(
		`SELECT id, name, type, distance, moving_time, elapsed_time, total_elevation_gain,
		   start_date, start_date_local, timezone, average_speed, max_speed, average_heartrate, calories
		 FROM strava_activities WHERE start_date_local >= ? ORDER BY start_date_local`, sinceKey,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []model.StravaActivity
	for rows.Next() {
		var a model.StravaActivity
		var hr, cal sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Distance, &a.MovingTime, &a.ElapsedTime,
			&a.TotalElevationGain, &a.StartDate, &a.StartDateLocal, &a.Timezone, &a.AverageSpeed,
			&a.MaxSpeed, &hr, &cal); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if hr.Valid {
			a.AverageHeartrate = model.Float(hr.Float64)
		}
		if cal.Valid {
			a.Calories = model.Float(cal.Float64)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (s *StravaActivityStore) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM strava_activities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
