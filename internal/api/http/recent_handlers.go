package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/langinsight/internal/auth/middleware"
	"github.com/mind-engage/langinsight/internal/dataset"
	"github.com/mind-engage/langinsight/internal/recent"
)

// GET /api/recent
func ListRecentHandler(list *recent.List) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := list.IDs(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
	}
}

// POST /api/recent/{studentID}
func TouchRecentHandler(list *recent.List, svc *dataset.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "studentID")
		if _, err := svc.Assessments(id); err != nil {
			writeErr(w, err)
			return
		}
		ids, err := list.Touch(r.Context(), authmw.SubjectFromContext(r.Context()), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
	}
}
