package http

import (
	"net/http"
	"strconv"

	"github.com/mind-engage/langinsight/internal/eventlog"
)

// GET /api/admin/events?after=<seq>&limit=<n>
func AdminEventsHandler(repo *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		after, err := parseIntParam(q.Get("after"), 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad after")
			return
		}
		limit, err := parseIntParam(q.Get("limit"), 100)
		if err != nil || limit > 1000 {
			writeError(w, http.StatusBadRequest, "bad limit")
			return
		}
		events, err := repo.Since(r.Context(), after, int(limit))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func parseIntParam(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
