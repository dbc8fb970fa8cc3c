package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dukerupert/dauphindash/internal/datekey"
	"github.com/dukerupert/dauphindash/internal/model"
	"github.com/dukerupert/dauphindash/internal/store"
)

const (
	stravaHost = "https://www.strava.com"
	// ActivityWindowDays is how far back activities are fetched and overlaid.
	ActivityWindowDays = 180
	stravaPageSize     = 200
)

// ActivityStore keeps fetched Strava activities locally.
type ActivityStore interface {
	Upsert(activities []model.StravaActivity) error
	ListSince(sinceKey string) ([]model.StravaActivity, error)
}

type StravaConfig struct {
	ClientID     string
	ClientSecret string
	// RefreshToken seeds the token exchange until Strava rotates it; the
	// rotated token is kept in settings.
	RefreshToken string
	Location     *time.Location
}

// Strava pulls recent activities with a refresh-token grant. It contributes
// workout flags only: any day with an activity counts as a workout day.
type Strava struct {
	cfg        StravaConfig
	settings   Settings
	activities ActivityStore
	opts       options
	now        func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewStrava(cfg StravaConfig, settings Settings, activities ActivityStore, opts ...Option) *Strava {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Strava{
		cfg:        cfg,
		settings:   settings,
		activities: activities,
		opts:       newOptions(stravaHost, opts),
		now:        time.Now,
	}
}

func (s *Strava) Name() string { return ProviderStrava }

func (s *Strava) Configured() bool {
	return s.cfg.ClientID != "" && s.cfg.ClientSecret != "" && s.refreshToken() != ""
}

func (s *Strava) refreshToken() string {
	tok, err := s.settings.GetDefault(store.KeyStravaRefreshToken, "")
	if err != nil || tok == "" {
		return s.cfg.RefreshToken
	}
	return tok
}

type stravaToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// token returns a valid access token, exchanging the refresh token when the
// cached one is missing or about to expire.
func (s *Strava) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && s.now().Add(time.Minute).Before(s.expiresAt) {
		return s.accessToken, nil
	}

	req, err := jsonRequest(ctx, http.MethodPost, s.opts.baseURL+"/oauth/token", map[string]string{
		"client_id":     s.cfg.ClientID,
		"client_secret": s.cfg.ClientSecret,
		"refresh_token": s.refreshToken(),
		"grant_type":    "refresh_token",
	})
	if err != nil {
		return "", err
	}
	resp, err := s.opts.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh strava token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError("refresh strava token", resp)
	}

	var tok stravaToken
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode strava token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("refresh strava token: empty access token")
	}
	if tok.RefreshToken != "" && tok.RefreshToken != s.refreshToken() {
		if err := s.settings.Set(store.KeyStravaRefreshToken, tok.RefreshToken); err != nil {
			return "", fmt.Errorf("save strava refresh token: %w", err)
		}
	}
	s.accessToken = tok.AccessToken
	s.expiresAt = time.Unix(tok.ExpiresAt, 0)
	return s.accessToken, nil
}

// Sync fetches the last ActivityWindowDays of activities into the activity
// store and returns how many were received.
func (s *Strava) Sync(ctx context.Context) (int, error) {
	if !s.Configured() {
		return 0, ErrNotConfigured
	}
	access, err := s.token(ctx)
	if err != nil {
		return 0, err
	}

	after := s.now().Add(-ActivityWindowDays * 24 * time.Hour).Unix()
	q := url.Values{}
	q.Set("after", strconv.FormatInt(after, 10))
	q.Set("per_page", strconv.Itoa(stravaPageSize))

	req, err := jsonRequest(ctx, http.MethodGet, s.opts.baseURL+"/api/v3/athlete/activities?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+access)

	resp, err := s.opts.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch strava activities: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, apiError("fetch strava activities", resp)
	}

	var activities []model.StravaActivity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return 0, fmt.Errorf("decode strava activities: %w", err)
	}
	if err := s.activities.Upsert(activities); err != nil {
		return 0, err
	}
	return len(activities), nil
}

// Recent lists stored activities inside the activity window.
func (s *Strava) Recent() ([]model.StravaActivity, error) {
	today := s.now().In(s.cfg.Location)
	return s.activities.ListSince(datekey.Key(datekey.AddDays(today, -ActivityWindowDays)))
}

// FetchAll syncs and returns one workout-only record per activity day.
func (s *Strava) FetchAll(ctx context.Context) (model.Store, error) {
	if _, err := s.Sync(ctx); err != nil {
		return nil, err
	}
	activities, err := s.Recent()
	if err != nil {
		return nil, err
	}
	st := model.Store{}
	for _, a := range activities {
		st[a.LocalDateKey()] = model.DayRecord{Workout: true}
	}
	return st, nil
}

func (s *Strava) Overlay(local, fetched model.Store) model.Store {
	return WorkoutOverlay(local, fetched)
}

// Stats computes running statistics from stored activities.
func (s *Strava) Stats(weeks int) (*model.RunningStats, []model.WeeklyRuns, error) {
	activities, err := s.Recent()
	if err != nil {
		return nil, nil, err
	}
	now := s.now().In(s.cfg.Location)
	return RunningStats(activities, now), WeeklyRunSeries(activities, now, weeks), nil
}
