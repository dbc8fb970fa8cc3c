package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/dauphindash/internal/model"
)

// DayRecordStore keeps the day-record store in the day_records table, one row
// per DateKey.
type DayRecordStore struct {
	db *sql.DB
}

func NewDayRecordStore(db *sql.DB) *DayRecordStore {
	return &DayRecordStore{db: db}
}

// Load reads every row into a Store. An empty table yields an empty, non-nil Store.
func (s *DayRecordStore) Load() (model.Store, error) {
	rows, err := s.db.Query(`SELECT date, weight, leetcode, workout FROM day_records ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("load day records: %w", err)
	}
	defer rows.Close()

	out := model.Store{}
	for rows.Next() {
		key, rec, err := scanDayRecord(rows)
		if err != nil {
			return nil, err
		}
		out[key] = rec
	}
	return out, rows.Err()
}

// Save replaces the table contents with st in a single transaction.
func (s *DayRecordStore) Save(st model.Store) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM day_records`); err != nil {
		return fmt.Errorf("clear day records: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO day_records (date, weight, leetcode, workout, updated_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, key := range st.SortedKeys() {
		rec := st[key]
		if _, err := stmt.Exec(key, nullFloat(rec.Weight), rec.LeetCode, rec.Workout, now); err != nil {
			return fmt.Errorf("insert day record %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Upsert writes a single day without touching the others.
func (s *DayRecordStore) Upsert(key string, rec model.DayRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO day_records (date, weight, leetcode, workout, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET weight = excluded.weight, leetcode = excluded.leetcode,
		 workout = excluded.workout, updated_at = excluded.updated_at`,
		key, nullFloat(rec.Weight), rec.LeetCode, rec.Workout, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert day record %s: %w", key, err)
	}
	return nil
}

func (s *DayRecordStore) Get(key string) (*model.DayRecord, error) {
	row := s.db.QueryRow(`SELECT date, weight, leetcode, workout FROM day_records WHERE date = ?`, key)
	_, rec, err := scanDayRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get day record %s: %w", key, err)
	}
	return &rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDayRecord(row scanner) (string, model.DayRecord, error) {
	var (
		key    string
		weight sql.NullFloat64
		rec    model.DayRecord
	)
	if err := row.Scan(&key, &weight, &rec.LeetCode, &rec.Workout); err != nil {
		if err == sql.ErrNoRows {
			return "", rec, err
		}
		return "", rec, fmt.Errorf("scan day record: %w", err)
	}
	if weight.Valid && weight.Float64 > 0 {
		rec.Weight = model.Float(weight.Float64)
	}
	return key, rec, nil
}
