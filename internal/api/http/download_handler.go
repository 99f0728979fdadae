package http

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/storage"

	"github.com/gorilla/mux"
)

// download streams a stored report. Keys are random, so knowing one is the
// only credential; it stops working once the expiry in the key has passed.
func (h *handler) download(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		writeMessage(w, http.StatusBadRequest, "missing key")
		return
	}
	expiresAt, ok := storage.ReportExpiry(key)
	if !ok {
		writeMessage(w, http.StatusNotFound, "file not found")
		return
	}
	if !time.Now().Before(expiresAt) {
		writeMessage(w, http.StatusGone, "download link has expired")
		return
	}

	exists, _, err := h.svc.Storage.FileExists(r.Context(), key)
	switch {
	case errors.Is(err, storage.ErrInvalidKey):
		writeMessage(w, http.StatusBadRequest, "invalid key")
		return
	case err != nil:
		writeError(w, r, domain.NewStoreError("stat report", err))
		return
	case !exists:
		writeMessage(w, http.StatusNotFound, "file not found")
		return
	}

	file, err := h.svc.Storage.ReadFile(r.Context(), key)
	if err != nil {
		logger.DebugContext(r.Context(), "Download miss", "key", key, "error", err)
		writeMessage(w, http.StatusNotFound, "file not found")
		return
	}
	defer file.Close()

	// Determine content type from file extension
	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		contentType = "text/csv"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(key)+`"`)
	w.Header().Set("Cache-Control", "private, max-age=300")

	if _, err := io.Copy(w, file); err != nil {
		logger.WarnContext(r.Context(), "Download interrupted", "key", key, "error", err)
	}
}
