package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/langinsight/internal/dataset"
	"github.com/mind-engage/langinsight/internal/interpret"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps service errors onto status codes.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dataset.ErrNoDataset):
		writeError(w, http.StatusServiceUnavailable, "no dataset loaded")
	case errors.Is(err, dataset.ErrStudentNotFound):
		writeError(w, http.StatusNotFound, "student not found")
	case errors.Is(err, interpret.ErrBadAudience), errors.Is(err, dataset.ErrIngest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
