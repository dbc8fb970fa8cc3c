package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	cacheTTL      = 30 * time.Minute
	timelineHours = 12
	likelyRain    = 50

	// DefaultLatitude and DefaultLongitude point at South Bend, IN.
	DefaultLatitude  = "41.7037"
	DefaultLongitude = "-86.2379"
)

// Config holds weather service configuration from environment variables.
type Config struct {
	Latitude        string
	Longitude       string
	TemperatureUnit string // "fahrenheit" or "celsius"
	Logger          *slog.Logger
}

// RainHour is one slot of the precipitation timeline.
type RainHour struct {
	Hour        int    `json:"hour"`
	Label       string `json:"label"`
	Probability int    `json:"probability"`
	Likely      bool   `json:"likely"`
}

// WeatherData holds the current conditions and the rain outlook.
type WeatherData struct {
	CurrentTemp float64    `json:"current_temp"`
	CurrentCode int        `json:"current_code"`
	CurrentDesc string     `json:"current_desc"`
	CurrentIcon string     `json:"current_icon"`
	Unit        string     `json:"unit"` // "F" or "C"
	Rain        []RainHour `json:"rain,omitempty"`
	Available   bool       `json:"available"`
	Configured  bool       `json:"configured"`
	FetchedAt   time.Time  `json:"fetched_at,omitzero"`
}

// Service manages weather data fetching and caching.
type Service struct {
	config    Config
	client    *http.Client
	baseURL   string
	logger    *slog.Logger
	now       func() time.Time
	mu        sync.RWMutex
	cached    WeatherData
	lastFetch time.Time
}

// NewService creates a new weather service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.TemperatureUnit == "" {
		cfg.TemperatureUnit = "fahrenheit"
	}
	unit := "F"
	if cfg.TemperatureUnit == "celsius" {
		unit = "C"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		config:  cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://api.open-meteo.com/v1/forecast",
		logger:  logger.With("component", "weather"),
		now:     time.Now,
		cached: WeatherData{
			Unit:       unit,
			Configured: cfg.Latitude != "" && cfg.Longitude != "",
		},
	}
}

// GetWeather returns the current weather data, fetching from the API if the cache is stale.
func (s *Service) GetWeather(ctx context.Context) WeatherData {
	if !s.cached.Configured {
		return s.cached
	}

	s.mu.RLock()
	if s.fresh() {
		data := s.cached
		s.mu.RUnlock()
		return data
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock.
	if s.fresh() {
		return s.cached
	}

	data, err := s.fetch(ctx)
	if err != nil {
		// Return stale data on error rather than clearing it.
		s.logger.Warn("weather fetch failed", "error", err, "stale", s.cached.Available)
		return s.cached
	}

	s.cached = data
	s.lastFetch = s.now()
	return s.cached
}

func (s *Service) fresh() bool {
	return s.cached.Available && s.now().Sub(s.lastFetch) < cacheTTL
}

type apiResponse struct {
	Current struct {
		Time        string  `json:"time"`
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Hourly struct {
		Time                     []string `json:"time"`
		PrecipitationProbability []*int   `json:"precipitation_probability"`
	} `json:"hourly"`
}

func (s *Service) fetch(ctx context.Context) (WeatherData, error) {
	q := url.Values{}
	q.Set("latitude", s.config.Latitude)
	q.Set("longitude", s.config.Longitude)
	q.Set("current", "temperature_2m,weather_code")
	q.Set("hourly", "precipitation_probability")
	q.Set("temperature_unit", s.config.TemperatureUnit)
	q.Set("timezone", "auto")
	q.Set("forecast_days", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return WeatherData{}, fmt.Errorf("build weather request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return WeatherData{}, fmt.Errorf("weather API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return WeatherData{}, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return WeatherData{}, fmt.Errorf("decode weather response: %w", err)
	}

	desc, icon := WMOCodeToDescIcon(apiResp.Current.WeatherCode)
	return WeatherData{
		CurrentTemp: apiResp.Current.Temperature,
		CurrentCode: apiResp.Current.WeatherCode,
		CurrentDesc: desc,
		CurrentIcon: icon,
		Unit:        s.cached.Unit,
		Rain:        rainTimeline(apiResp, s.now()),
		Available:   true,
		Configured:  true,
		FetchedAt:   s.now(),
	}, nil
}

// rainTimeline returns the next twelve hourly precipitation probabilities
// starting at the current hour. Missing hours read as zero.
func rainTimeline(r apiResponse, now time.Time) []RainHour {
	start := now.Hour()
	if t, err := time.Parse("2006-01-02T15:04", r.Current.Time); err == nil {
		start = t.Hour()
		prefix := t.Format("2006-01-02T15")
		for i, ht := range r.Hourly.Time {
			if len(ht) >= len(prefix) && ht[:len(prefix)] == prefix {
				start = i
				break
			}
		}
	}

	hours := make([]RainHour, 0, timelineHours)
	for i := 0; i < timelineHours; i++ {
		idx := start + i
		prob := 0
		if idx < len(r.Hourly.PrecipitationProbability) && r.Hourly.PrecipitationProbability[idx] != nil {
			prob = *r.Hourly.PrecipitationProbability[idx]
		}
		hour := idx % 24
		hours = append(hours, RainHour{
			Hour:        hour,
			Label:       HourLabel(hour),
			Probability: prob,
			Likely:      prob > likelyRain,
		})
	}
	return hours
}

// HourLabel renders an hour of the day as 12a, 9a, 12p, 3p.
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12a"
	case hour < 12:
		return strconv.Itoa(hour) + "a"
	case hour == 12:
		return "12p"
	default:
		return strconv.Itoa(hour-12) + "p"
	}
}

type condition struct {
	desc string
	icon string
}

var wmoCodes = map[int]condition{
	0:  {"Clear sky", "☀️"},
	1:  {"Mainly clear", "🌤️"},
	2:  {"Partly cloudy", "⛅"},
	3:  {"Overcast", "☁️"},
	45: {"Foggy", "🌫️"},
	48: {"Foggy", "🌫️"},
	51: {"Light drizzle", "🌦️"},
	53: {"Drizzle", "🌦️"},
	55: {"Heavy drizzle", "🌧️"},
	61: {"Light rain", "🌧️"},
	63: {"Rain", "🌧️"},
	65: {"Heavy rain", "🌧️"},
	71: {"Light snow", "🌨️"},
	73: {"Snow", "🌨️"},
	75: {"Heavy snow", "🌨️"},
	77: {"Snow grains", "🌨️"},
	80: {"Light showers", "🌦️"},
	81: {"Showers", "🌦️"},
	82: {"Heavy showers", "⛈️"},
	85: {"Snow showers", "🌨️"},
	86: {"Heavy snow showers", "🌨️"},
	95: {"Thunderstorm", "⛈️"},
	96: {"Thunderstorm with hail", "⛈️"},
	99: {"Severe thunderstorm", "⛈️"},
}

// WMOCodeToDescIcon maps a WMO weather code to a human-readable description and emoji icon.
func WMOCodeToDescIcon(code int) (string, string) {
	if c, ok := wmoCodes[code]; ok {
		return c.desc, c.icon
	}
	return "Unknown", "🌤️"
}
