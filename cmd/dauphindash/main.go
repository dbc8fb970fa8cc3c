package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/dukerupert/dauphindash/internal/activity"
	"github.com/dukerupert/dauphindash/internal/backup"
	"github.com/dukerupert/dauphindash/internal/dashboard"
	"github.com/dukerupert/dauphindash/internal/database"
	"github.com/dukerupert/dauphindash/internal/handler"
	"github.com/dukerupert/dauphindash/internal/logging"
	"github.com/dukerupert/dauphindash/internal/model"
	"github.com/dukerupert/dauphindash/internal/remote"
	"github.com/dukerupert/dauphindash/internal/server"
	"github.com/dukerupert/dauphindash/internal/store"
	"github.com/dukerupert/dauphindash/internal/weather"
	ws "github.com/dukerupert/dauphindash/internal/websocket"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(logger *slog.Logger, key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func main() {
	logger := logging.Setup(os.Getenv("DAUPHINDASH_LOG_LEVEL"), os.Getenv("DAUPHINDASH_LOG_FORMAT"))

	port := getenv("DAUPHINDASH_PORT", "8080")
	dbPath := getenv("DAUPHINDASH_DB_PATH", "dauphindash.db")

	loc := time.Local
	if tz := os.Getenv("DAUPHINDASH_TZ"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			logger.Error("invalid time zone", "tz", tz, "error", err)
			os.Exit(1)
		}
		loc = l
	}

	// Settings, Strava activities and backup history always live in SQLite,
	// even when day records are kept in a JSON file.
	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	settingsStore := store.NewSettingsStore(db)
	goals, err := settingsStore.Goals()
	if err != nil {
		logger.Warn("failed to read goals, using defaults", "error", err)
		goals = model.DefaultGoals()
	}

	policyName := getenv("DAUPHINDASH_SCORE_POLICY", activity.PolicyWeighted)
	policy, err := activity.ForName(policyName, goals.CodingCapPerDay)
	if err != nil {
		logger.Error("invalid score policy", "policy", policyName, "error", err)
		os.Exit(1)
	}

	var persister dashboard.Persister
	switch storage := getenv("DAUPHINDASH_STORAGE", "sqlite"); storage {
	case "sqlite":
		persister = store.NewDayRecordStore(db)
	case "file":
		persister = store.NewFileStore(getenv("DAUPHINDASH_DATA_FILE", "dauphindash-data.json"))
	default:
		logger.Error("invalid storage backend", "storage", storage, "want", "sqlite|file")
		os.Exit(1)
	}

	dash := dashboard.New(persister, dashboard.Config{
		Location: loc,
		Policy:   policy,
		Goals:    settingsStore,
		Logger:   logger,
	})
	if err := dash.Load(); err != nil {
		logger.Error("failed to load day records", "error", err)
		os.Exit(1)
	}

	// Remote collaborators. Unconfigured ones stay registered so the sync
	// status can report them.
	gist := remote.NewGist(os.Getenv("DAUPHINDASH_GITHUB_TOKEN"), settingsStore)
	supabase := remote.NewSupabase(os.Getenv("DAUPHINDASH_SUPABASE_URL"), os.Getenv("DAUPHINDASH_SUPABASE_KEY"))
	strava := remote.NewStrava(remote.StravaConfig{
		ClientID:     os.Getenv("DAUPHINDASH_STRAVA_CLIENT_ID"),
		ClientSecret: os.Getenv("DAUPHINDASH_STRAVA_CLIENT_SECRET"),
		RefreshToken: os.Getenv("DAUPHINDASH_STRAVA_REFRESH_TOKEN"),
		Location:     loc,
	}, settingsStore, store.NewStravaActivityStore(db))

	dash.AddSource(gist)
	dash.AddSink(gist)
	dash.AddSource(supabase)
	dash.AddSink(supabase)
	dash.AddSource(strava)

	var origins []string
	if v := os.Getenv("DAUPHINDASH_WS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	hub := ws.NewHub(logger, origins...)
	dash.OnChange(hub.Notify)

	weatherSvc := weather.NewService(weather.Config{
		Latitude:        getenv("DAUPHINDASH_WEATHER_LAT", weather.DefaultLatitude),
		Longitude:       getenv("DAUPHINDASH_WEATHER_LON", weather.DefaultLongitude),
		TemperatureUnit: getenv("DAUPHINDASH_WEATHER_UNITS", "fahrenheit"),
		Logger:          logger,
	})

	retention, _ := strconv.Atoi(os.Getenv("DAUPHINDASH_BACKUP_RETENTION_DAYS"))
	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("DAUPHINDASH_S3_ENDPOINT"),
			Bucket:    os.Getenv("DAUPHINDASH_S3_BUCKET"),
			Region:    getenv("DAUPHINDASH_S3_REGION", "us-east-1"),
			AccessKey: os.Getenv("DAUPHINDASH_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("DAUPHINDASH_S3_SECRET_KEY"),
		},
		Passphrase:    os.Getenv("DAUPHINDASH_BACKUP_PASSPHRASE"),
		Interval:      getDuration(logger, "DAUPHINDASH_BACKUP_INTERVAL", 24*time.Hour),
		RetentionDays: retention,
		Logger:        logger,
	}, dash, store.NewBackupStore(db), func(s backup.Status) {
		hub.Broadcast(ws.NewMessage("backup", string(s.State), "", map[string]any{
			"in_progress": s.InProgress,
			"error":       s.Error,
		}))
	})

	srv := server.New(server.Deps{
		Dashboard: dash,
		Hub:       hub,
		Weather:   weatherSvc,
		Backups:   backupMgr,
		Strava:    strava,
		Testers: map[string]handler.ConnectionTest{
			remote.ProviderGist:     gist.TestToken,
			remote.ProviderSupabase: supabase.TestConnection,
		},
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backupMgr.Start(ctx)

	// Periodic cleanup of expired rate limiter entries
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	if interval := getDuration(logger, "DAUPHINDASH_SYNC_INTERVAL", 0); interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					counts, err := dash.PullAll(ctx)
					if err != nil {
						logger.Warn("scheduled sync had failures", "error", err)
					}
					logger.Info("scheduled sync complete", "merged", counts)
				}
			}
		}()
	}

	// No write timeout: /ws connections are long-lived.
	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("dauphindash running", "addr", "http://localhost:"+port, "storage", getenv("DAUPHINDASH_STORAGE", "sqlite"), "tz", loc.String(), "policy", policy.Name(), "days", dash.Len())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	backupMgr.Stop()
	dash.WaitForPushes()
}
