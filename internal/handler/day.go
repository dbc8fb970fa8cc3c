package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/dauphindash/internal/dashboard"
	"github.com/dukerupert/dauphindash/internal/datekey"
	"github.com/dukerupert/dauphindash/internal/model"
)

type DayHandler struct {
	dash   *dashboard.Dashboard
	logger *slog.Logger
}

func NewDayHandler(d *dashboard.Dashboard, logger *slog.Logger) *DayHandler {
	return &DayHandler{dash: d, logger: logger}
}

// flexString accepts a JSON string or number, so form values and typed
// clients both decode.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

type dayRequest struct {
	Weight   flexString `json:"weight"`
	LeetCode flexString `json:"leetcode"`
	Workout  bool       `json:"workout"`
}

type dayResponse struct {
	Date   string          `json:"date"`
	Record model.DayRecord `json:"record"`
	Shade  model.Shade     `json:"shade"`
}

func (h *DayHandler) response(key string, rec model.DayRecord) dayResponse {
	return dayResponse{Date: key, Record: rec, Shade: h.dash.Policy().Shade(rec)}
}

// Export returns the whole store. ?download=1 serves it as a dated file.
func (h *DayHandler) Export(w http.ResponseWriter, r *http.Request) {
	st := h.dash.Snapshot()
	if r.URL.Query().Get("download") != "" {
		name := fmt.Sprintf("dauphindash-backup-%s.json", h.dash.TodayKey())
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *DayHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("date")
	if key == "today" {
		key = h.dash.TodayKey()
	}
	if !datekey.Valid(key) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, h.response(key, h.dash.Record(key)))
}

// Put overwrites one day. Fields follow form semantics: an empty or
// non-positive weight clears it and leetcode never goes negative.
func (h *DayHandler) Put(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("date")
	if key == "today" {
		key = h.dash.TodayKey()
	}
	if !datekey.Valid(key) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	var req dayRequest
	if err := decodeJSON(w, r, maxDayBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := model.ParseDayInput(string(req.Weight), string(req.LeetCode), req.Workout)
	if err := h.dash.SaveForDate(key, rec); err != nil {
		if errors.Is(err, dashboard.ErrInvalidDate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to save day", "date", key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save day")
		return
	}
	writeJSON(w, http.StatusOK, h.response(key, rec))
}

// Import shallow-merges an uploaded store; uploaded days win.
func (h *DayHandler) Import(w http.ResponseWriter, r *http.Request) {
	var st model.Store
	if err := decodeJSON(w, r, maxImportBody, &st); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := h.dash.Import(st)
	if err != nil {
		if errors.Is(err, dashboard.ErrInvalidDate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to import", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to import data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"merged": n, "total": h.dash.Len()})
}
