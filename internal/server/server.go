package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/dauphindash/internal/backup"
	"github.com/dukerupert/dauphindash/internal/dashboard"
	"github.com/dukerupert/dauphindash/internal/handler"
	"github.com/dukerupert/dauphindash/internal/middleware"
	"github.com/dukerupert/dauphindash/internal/weather"
	ws "github.com/dukerupert/dauphindash/internal/websocket"
)

const (
	syncLimit  = 10
	syncWindow = time.Minute
)

// Deps are the long-lived services the HTTP layer routes to.
type Deps struct {
	Dashboard *dashboard.Dashboard
	Hub       *ws.Hub
	Weather   *weather.Service
	Backups   *backup.Manager
	Strava    handler.RunningStatser
	Testers   map[string]handler.ConnectionTest
	Logger    *slog.Logger
}

type Server struct {
	dash        *dashboard.Dashboard
	hub         *ws.Hub
	dayH        *handler.DayHandler
	viewH       *handler.ViewHandler
	syncH       *handler.SyncHandler
	stravaH     *handler.StravaHandler
	weatherH    *handler.WeatherHandler
	backupH     *handler.BackupHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		dash:        deps.Dashboard,
		hub:         deps.Hub,
		dayH:        handler.NewDayHandler(deps.Dashboard, logger.With("component", "days")),
		viewH:       handler.NewViewHandler(deps.Dashboard, logger.With("component", "views")),
		syncH:       handler.NewSyncHandler(deps.Dashboard, deps.Testers, logger.With("component", "sync")),
		stravaH:     handler.NewStravaHandler(deps.Strava, deps.Dashboard, logger.With("component", "strava")),
		weatherH:    handler.NewWeatherHandler(deps.Weather),
		backupH:     handler.NewBackupHandler(deps.Backups, logger.With("component", "backups")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /ws", ws.HandleWebSocket(s.hub))

	// Day records
	mux.HandleFunc("GET /api/days", s.dayH.Export)
	mux.HandleFunc("GET /api/days/{date}", s.dayH.Get)
	mux.HandleFunc("PUT /api/days/{date}", s.dayH.Put)
	mux.HandleFunc("POST /api/days/import", s.dayH.Import)

	// Views
	mux.HandleFunc("GET /api/calendar", s.viewH.Calendar)
	mux.HandleFunc("GET /api/stats", s.viewH.Stats)
	mux.HandleFunc("GET /api/charts", s.viewH.Charts)
	mux.HandleFunc("GET /api/settings/goals", s.viewH.GetGoals)
	mux.HandleFunc("PUT /api/settings/goals", s.viewH.UpdateGoals)

	// Sync hits third-party APIs, so it is rate limited per client.
	mux.HandleFunc("GET /api/sync/status", s.syncH.Status)
	mux.HandleFunc("POST /api/sync/pull", s.rateLimited(s.syncH.PullAll))
	mux.HandleFunc("POST /api/sync/{provider}/pull", s.rateLimited(s.syncH.Pull))
	mux.HandleFunc("POST /api/sync/{provider}/push", s.rateLimited(s.syncH.Push))
	mux.HandleFunc("POST /api/sync/{provider}/test", s.rateLimited(s.syncH.Test))

	mux.HandleFunc("GET /api/strava/stats", s.stravaH.Stats)
	mux.HandleFunc("POST /api/strava/sync", s.rateLimited(s.stravaH.Sync))

	mux.HandleFunc("GET /api/weather", s.weatherH.Get)

	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups", s.rateLimited(s.backupH.Create))
	mux.HandleFunc("POST /api/backups/{id}/restore", s.rateLimited(s.backupH.Restore))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"days":    s.dash.Len(),
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ByIP, syncLimit, syncWindow)
	return rl(h).ServeHTTP
}
