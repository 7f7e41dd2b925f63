package api

import (
	"net/http"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/document"
	"github.com/dgallion1/pdfextract/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleDocument returns a completed job's document as JSON, Markdown or HTML.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = config.FormatJSON
	}
	if document.ContentType(format) == "" {
		jsonError(w, "unsupported format: "+format, http.StatusBadRequest)
		return
	}

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
	case pipeline.StatusFailed:
		jsonError(w, "job failed: "+lastError(snap), http.StatusUnprocessableEntity)
		return
	default:
		jsonError(w, "job not finished: "+string(snap.Status), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", document.ContentType(format))
	if err := document.Render(w, job.Result(), format); err != nil {
		s.log.Error("render document", "job_id", snap.ID, "format", format, "error", err)
	}
}

func lastError(snap pipeline.JobSnapshot) string {
	if n := len(snap.Progress.Errors); n > 0 {
		return snap.Progress.Errors[n-1]
	}
	return "unknown error"
}
