package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/dauphindash/internal/backup"
	"github.com/dukerupert/dauphindash/internal/model"
)

const backupListLimit = 50

type backupManager interface {
	Status() backup.Status
	List(limit int) ([]model.Backup, error)
	RunNow(ctx context.Context) (*model.Backup, error)
	Restore(ctx context.Context, id int64) (int, error)
}

type BackupHandler struct {
	mgr    backupManager
	logger *slog.Logger
}

func NewBackupHandler(mgr backupManager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{mgr: mgr, logger: logger}
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.mgr.List(backupListLimit)
	if err != nil {
		h.logger.Error("failed to list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": h.mgr.Status(), "backups": backups})
}

func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	b, err := h.mgr.RunNow(r.Context())
	if err != nil {
		if errors.Is(err, backup.ErrDisabled) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("backup failed", "error", err)
		writeError(w, http.StatusBadGateway, "backup failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	n, err := h.mgr.Restore(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "restored": n})
	case errors.Is(err, backup.ErrDisabled):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, backup.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, backup.ErrDecrypt):
		writeError(w, http.StatusBadRequest, "backup could not be decrypted with the configured passphrase")
	default:
		h.logger.Error("restore failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "restore failed")
	}
}
