package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/langinsight/internal/auth/middleware"
	"github.com/mind-engage/langinsight/internal/dataset"
	"github.com/mind-engage/langinsight/internal/insights"
	"github.com/mind-engage/langinsight/internal/report"
)

const noMatches = "no matching interpretations"

// GET /api/students
func ListStudentsHandler(svc *dataset.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		students, err := svc.Students()
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, students)
	}
}

// GET /api/students/{studentID}/assessments
func AssessmentsHandler(svc *dataset.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.Assessments(chi.URLParam(r, "studentID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

type reportResponse struct {
	report.Report
	Message string `json:"message,omitempty"`
}

// GET /api/students/{studentID}/report?audience=clinician|family
func ReportHandler(svc *dataset.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aud, err := audienceFor(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		rep, err := svc.Report(chi.URLParam(r, "studentID"), aud)
		if err != nil {
			writeErr(w, err)
			return
		}
		out := reportResponse{Report: rep}
		if rep.TotalRetrieved == 0 {
			out.Message = noMatches
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /api/students/{studentID}/insights
func InsightsHandler(svc *dataset.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ins, err := svc.Insights(chi.URLParam(r, "studentID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		out := struct {
			Insights []insights.Insight `json:"insights"`
			Message  string             `json:"message,omitempty"`
		}{Insights: ins}
		if len(ins) == 0 {
			out.Insights = []insights.Insight{}
			out.Message = "no insights for this student"
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /api/students/{studentID}/export
func ExportHandler(svc *dataset.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		name, err := svc.Export(r.Context(), &buf, chi.URLParam(r, "studentID"), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		_, _ = buf.WriteTo(w)
	}
}
