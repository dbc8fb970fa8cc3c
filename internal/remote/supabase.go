package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dukerupert/dauphindash/internal/model"
)

const progressTable = "daily_progress"

var supabaseProjectRe = regexp.MustCompile(`^https://([^.]+)\.supabase\.co`)

// Supabase mirrors the store in a daily_progress table through PostgREST,
// one row per day keyed by date.
type Supabase struct {
	url  string
	key  string
	opts options
}

func NewSupabase(url, key string, opts ...Option) *Supabase {
	url = strings.TrimRight(url, "/")
	return &Supabase{url: url, key: key, opts: newOptions(url, opts)}
}

func (s *Supabase) Name() string { return ProviderSupabase }

func (s *Supabase) Configured() bool { return s.url != "" && s.key != "" }

// DashboardURL links to the project in the Supabase console, or "" for
// self-hosted instances.
func (s *Supabase) DashboardURL() string {
	m := supabaseProjectRe.FindStringSubmatch(s.url)
	if m == nil {
		return ""
	}
	return "https://supabase.com/dashboard/project/" + m[1]
}

type progressRow struct {
	Date      string   `json:"date"`
	Weight    *float64 `json:"weight"`
	LeetCode  int      `json:"leetcode"`
	Workout   bool     `json:"workout"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

func toRow(key string, rec model.DayRecord, now time.Time) progressRow {
	return progressRow{
		Date:      key,
		Weight:    rec.Weight,
		LeetCode:  rec.LeetCode,
		Workout:   rec.Workout,
		UpdatedAt: now.UTC().Format(time.RFC3339),
	}
}

// TestConnection reports whether the table is reachable with the key.
func (s *Supabase) TestConnection(ctx context.Context) (bool, error) {
	if !s.Configured() {
		return false, ErrNotConfigured
	}
	req, err := s.newRequest(ctx, http.MethodGet, "?select=date&limit=1", nil)
	if err != nil {
		return false, err
	}
	resp, err := s.opts.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("test connection: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (s *Supabase) FetchAll(ctx context.Context) (model.Store, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	req, err := s.newRequest(ctx, http.MethodGet, "?select=*&order=date.desc", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.opts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load daily progress: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("load daily progress", resp)
	}

	var rows []progressRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode daily progress: %w", err)
	}

	st := make(model.Store, len(rows))
	for _, row := range rows {
		rec := model.DayRecord{Workout: row.Workout}
		if row.Weight != nil && *row.Weight > 0 {
			rec.Weight = model.Float(*row.Weight)
		}
		if row.LeetCode > 0 {
			rec.LeetCode = row.LeetCode
		}
		st[row.Date] = rec
	}
	return st, nil
}

// PushAll upserts every day in one request.
func (s *Supabase) PushAll(ctx context.Context, st model.Store) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if len(st) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]progressRow, 0, len(st))
	for _, key := range st.SortedKeys() {
		rows = append(rows, toRow(key, st[key], now))
	}
	return s.upsert(ctx, rows)
}

// PushDay upserts a single day after a local save.
func (s *Supabase) PushDay(ctx context.Context, key string, rec model.DayRecord) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	return s.upsert(ctx, []progressRow{toRow(key, rec, time.Now())})
}

func (s *Supabase) upsert(ctx context.Context, rows []progressRow) error {
	req, err := s.newRequest(ctx, http.MethodPost, "?on_conflict=date", rows)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	resp, err := s.opts.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upsert daily progress: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError("upsert daily progress", resp)
	}
	return nil
}

func (s *Supabase) newRequest(ctx context.Context, method, query string, body any) (*http.Request, error) {
	req, err := jsonRequest(ctx, method, s.opts.baseURL+"/rest/v1/"+progressTable+query, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
