package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/dauphindash/internal/dashboard"
	"github.com/dukerupert/dauphindash/internal/remote"
)

// ConnectionTest checks a provider's credentials without syncing.
type ConnectionTest func(ctx context.Context) (bool, error)

type SyncHandler struct {
	dash    *dashboard.Dashboard
	testers map[string]ConnectionTest
	logger  *slog.Logger
}

func NewSyncHandler(d *dashboard.Dashboard, testers map[string]ConnectionTest, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{dash: d, testers: testers, logger: logger}
}

// syncError maps a sync failure to a status code.
func syncError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrUnknownProvider):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, remote.ErrNotConfigured):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dash.SyncStatus())
}

func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	n, err := h.dash.Pull(r.Context(), provider)
	if err != nil {
		syncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"provider": provider, "merged": n})
}

// PullAll pulls every configured provider. Partial failures still return the
// counts of the providers that succeeded.
func (h *SyncHandler) PullAll(w http.ResponseWriter, r *http.Request) {
	counts, err := h.dash.PullAll(r.Context())
	resp := map[string]any{"merged": counts, "status": h.dash.SyncStatus()}
	if err != nil {
		resp["error"] = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	if err := h.dash.Push(r.Context(), provider); err != nil {
		syncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"provider": provider, "pushed": h.dash.Len()})
}

func (h *SyncHandler) Test(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	test, ok := h.testers[provider]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown provider")
		return
	}
	ok, err := test(r.Context())
	if err != nil {
		if !errors.Is(err, remote.ErrNotConfigured) {
			h.logger.Warn("connection test failed", "provider", provider, "error", err)
		}
		syncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"provider": provider, "ok": ok})
}
