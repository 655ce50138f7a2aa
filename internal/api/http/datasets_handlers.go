package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	authmw "github.com/mind-engage/langinsight/internal/auth/middleware"
	"github.com/mind-engage/langinsight/internal/dataset"
	"github.com/mind-engage/langinsight/internal/storage"
)

const maxUploadBytes = 32 << 20

// GET /api/datasets/current
func CurrentDatasetHandler(svc *dataset.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.Current()
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

// POST /api/datasets  (multipart file= or raw text/csv body)
func UploadDatasetHandler(svc *dataset.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		var (
			src    io.Reader = r.Body
			source           = "upload"
		)
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			f, hdr, err := r.FormFile("file")
			if err != nil {
				writeError(w, http.StatusBadRequest, "file required")
				return
			}
			defer f.Close()
			src = f
			source = "upload:" + hdr.Filename
		}
		sum, err := svc.Load(r.Context(), src, source, authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sum)
	}
}

// GET /api/datasets/current/raw streams the persisted CSV of the current dataset.
func RawDatasetHandler(svc *dataset.Service, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.Current()
		if err != nil {
			writeErr(w, err)
			return
		}
		if sum.BlobKey == "" || bs == nil {
			writeError(w, http.StatusNotFound, "dataset was not persisted")
			return
		}
		rc, err := bs.Get(r.Context(), sum.BlobKey)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found: "+sum.BlobKey)
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = io.Copy(w, rc)
	}
}
