package handler

import (
	"context"
	"net/http"

	"github.com/dukerupert/dauphindash/internal/weather"
)

type weatherSource interface {
	GetWeather(ctx context.Context) weather.WeatherData
}

type WeatherHandler struct {
	svc weatherSource
}

func NewWeatherHandler(svc weatherSource) *WeatherHandler {
	return &WeatherHandler{svc: svc}
}

// Get returns cached conditions. An unavailable upstream is reported in the
// body, not the status.
func (h *WeatherHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.GetWeather(r.Context()))
}
