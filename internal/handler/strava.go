package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/dauphindash/internal/dashboard"
	"github.com/dukerupert/dauphindash/internal/model"
	"github.com/dukerupert/dauphindash/internal/remote"
)

const defaultRunWeeks = 12

// RunningStatser is the Strava collaborator the stats endpoint reads from.
type RunningStatser interface {
	Configured() bool
	Sync(ctx context.Context) (int, error)
	Stats(weeks int) (*model.RunningStats, []model.WeeklyRuns, error)
}

type StravaHandler struct {
	strava RunningStatser
	dash   *dashboard.Dashboard
	logger *slog.Logger
}

func NewStravaHandler(s RunningStatser, d *dashboard.Dashboard, logger *slog.Logger) *StravaHandler {
	return &StravaHandler{strava: s, dash: d, logger: logger}
}

type stravaStatsResponse struct {
	Configured bool                `json:"configured"`
	Stats      *model.RunningStats `json:"stats"`
	Weekly     []model.WeeklyRuns  `json:"weekly"`
}

// Stats reports running statistics from stored activities. stats is null when
// there are no runs.
func (h *StravaHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.strava == nil || !h.strava.Configured() {
		writeJSON(w, http.StatusOK, stravaStatsResponse{Weekly: []model.WeeklyRuns{}})
		return
	}
	weeks, err := queryInt(r, "weeks", defaultRunWeeks)
	if err != nil || weeks < 1 || weeks > maxChartWeeks {
		writeError(w, http.StatusBadRequest, "weeks must be between 1 and 104")
		return
	}

	stats, weekly, err := h.strava.Stats(weeks)
	if err != nil {
		h.logger.Error("failed to compute running stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute running stats")
		return
	}
	writeJSON(w, http.StatusOK, stravaStatsResponse{Configured: true, Stats: stats, Weekly: weekly})
}

// Sync refreshes activities and merges workout days into the store.
func (h *StravaHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.strava == nil || !h.strava.Configured() {
		writeError(w, http.StatusBadRequest, remote.ErrNotConfigured.Error())
		return
	}
	n, err := h.dash.Pull(r.Context(), remote.ProviderStrava)
	if err != nil {
		if errors.Is(err, dashboard.ErrUnknownProvider) {
			// Not registered as a source; refresh activities only.
			if _, err := h.strava.Sync(r.Context()); err != nil {
				syncError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]int{"merged": 0})
			return
		}
		syncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"merged": n})
}
