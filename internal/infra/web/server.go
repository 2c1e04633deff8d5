package web

import (
	"net/http"

	"video-download-service/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server exposes the download API.
type Server struct {
	downloadUC *usecase.DownloadUseCase
	dir        string
	log        *zerolog.Logger
}

func NewServer(downloadUC *usecase.DownloadUseCase, dir string, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{downloadUC: downloadUC, dir: dir, log: &l}
}

// Router builds the chi router with all routes attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/start-download", s.handleStartDownload)
	r.Get("/status/{fileID}", s.handleStatus)
	r.Get("/download/{filename}", s.handleDownloadFile)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Msg("request")
	})
}
