package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an http.Handler exposing all routes of the logo
// manager.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /setup", s.handleSetupForm)
	mux.HandleFunc("POST /setup", s.handleSetupSave)

	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /api/logos", s.handleListLogos)
	mux.HandleFunc("DELETE /api/logos/{id}", s.handleDeleteLogo)

	mux.HandleFunc("GET /cached-image/{id}", s.handleCachedImage)
	mux.HandleFunc("GET /download/{id}/{format}", s.handleDownload)
	mux.HandleFunc("GET /backup", s.handleBackup)
	mux.HandleFunc("GET /clear-cache", s.handleClearCache)

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return LogRequest(Recoverer(s.requireSetup(SlashFix(mux))))
}
