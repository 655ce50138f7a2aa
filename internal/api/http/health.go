package http

import (
	"net/http"

	"github.com/mind-engage/langinsight/internal/dataset"
)

func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// ReadyzHandler is ready once a dataset is loaded.
func ReadyzHandler(svc *dataset.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !svc.Ready() {
			writeError(w, http.StatusServiceUnavailable, "no dataset loaded")
			return
		}
		_, _ = w.Write([]byte("ready"))
	}
}
