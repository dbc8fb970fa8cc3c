package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/dauphindash/internal/calendar"
	"github.com/dukerupert/dauphindash/internal/dashboard"
	"github.com/dukerupert/dauphindash/internal/model"
)

const (
	maxChartWeeks   = 104
	maxCalendarStep = 1200
)

// ViewHandler serves the read-only view models and the goals behind them.
type ViewHandler struct {
	dash   *dashboard.Dashboard
	logger *slog.Logger
}

func NewViewHandler(d *dashboard.Dashboard, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{dash: d, logger: logger}
}

// Calendar serves ?view=month|quarter|year. Month and quarter views start on
// today's period; year and index pick another one and step moves from there.
func (h *ViewHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	view := calendar.Kind(r.URL.Query().Get("view"))
	if view == "" {
		view = calendar.KindMonth
	}
	if view == "year" {
		writeJSON(w, http.StatusOK, h.dash.YearCalendar())
		return
	}

	nav, err := h.dash.Navigator(view)
	if err != nil {
		writeError(w, http.StatusBadRequest, "view must be month, quarter or year")
		return
	}
	if nav.Year, err = queryInt(r, "year", nav.Year); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if nav.Index, err = queryInt(r, "index", nav.Index); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	step, err := queryInt(r, "step", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if step < -maxCalendarStep || step > maxCalendarStep {
		writeError(w, http.StatusBadRequest, "step must be between -1200 and 1200")
		return
	}
	if !nav.Valid() {
		writeError(w, http.StatusBadRequest, "index or year out of range")
		return
	}
	nav.Step(step)
	if !nav.Valid() {
		writeError(w, http.StatusBadRequest, "year out of range")
		return
	}

	cv, err := h.dash.Calendar(nav)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cv)
}

func (h *ViewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dash.Stats())
}

func (h *ViewHandler) Charts(w http.ResponseWriter, r *http.Request) {
	weeks, err := queryInt(r, "weeks", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if weeks < 0 || weeks > maxChartWeeks {
		writeError(w, http.StatusBadRequest, "weeks must be between 1 and 104")
		return
	}
	writeJSON(w, http.StatusOK, h.dash.Charts(weeks))
}

func (h *ViewHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dash.Goals())
}

// UpdateGoals accepts a partial update; omitted fields keep their value.
func (h *ViewHandler) UpdateGoals(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight          *float64 `json:"goal_weight"`
		WorkoutsPerWeek *int     `json:"workouts_per_week"`
		CodingCapPerDay *int     `json:"coding_cap_per_day"`
	}
	if err := decodeJSON(w, r, maxDayBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g := h.dash.Goals()
	if req.Weight != nil {
		g.Weight = *req.Weight
	}
	if req.WorkoutsPerWeek != nil {
		g.WorkoutsPerWeek = *req.WorkoutsPerWeek
	}
	if req.CodingCapPerDay != nil {
		g.CodingCapPerDay = *req.CodingCapPerDay
	}
	if !validGoals(g) {
		writeError(w, http.StatusBadRequest, "weight and coding cap must be positive, workouts per week 1 to 7")
		return
	}

	if err := h.dash.SetGoals(g); err != nil {
		h.logger.Error("failed to save goals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save goals")
		return
	}
	writeJSON(w, http.StatusOK, h.dash.Goals())
}

func validGoals(g model.Goals) bool {
	return g.Weight > 0 && g.WorkoutsPerWeek >= 1 && g.WorkoutsPerWeek <= 7 && g.CodingCapPerDay > 0
}
