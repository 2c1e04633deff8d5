package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"video-download-service/internal/domain"
	"video-download-service/internal/infra/storage"

	"github.com/go-chi/chi/v5"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStartDownload(w http.ResponseWriter, r *http.Request) {
	url := r.FormValue("url")
	format := r.FormValue("format")
	if format == "" {
		format = "mp4"
	}

	fileID, err := s.downloadUC.Submit(r.Context(), url, format, clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidURL):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid URL provided"})
		case errors.Is(err, domain.ErrUnsupportedFormat):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("Unsupported format: %s", format)})
		case errors.Is(err, domain.ErrServerBusy):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Server busy, please try again later"})
		default:
			s.log.Error().Err(err).Msg("submit failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to start download"})
		}
		return
	}

	writeJSON(w, http.StatusOK, struct {
		FileID string `json:"file_id"`
	}{FileID: fileID})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	view, err := s.downloadUC.Status(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, struct {
				Status string `json:"status"`
			}{Status: "unknown"})
			return
		}
		s.log.Error().Err(err).Str("job_id", fileID).Msg("status lookup failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to get status"})
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !storage.ValidFilename(filename) {
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return
	}

	path := filepath.Join(s.dir, filename)
	info, err := os.Stat(path)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if !info.Mode().IsRegular() {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}

	s.log.Info().Str("file", filename).Msg("serving file")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// clientIP returns the remote host; middleware.RealIP has already folded
// X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
