// Package server wires the HTTP surface of the logo manager: upload,
// listing, deletion, cache-backed image serving, format conversion,
// backup export and the setup flow.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"logodepot/internal/blob"
	"logodepot/internal/cache"
	"logodepot/internal/catalog"
	"logodepot/internal/config"
)

// Config holds the collaborators for a Server.
type Config struct {
	Store   *catalog.Store
	Backend blob.Backend
	Cache   *cache.Cache

	// Credentials gates the app behind the setup form when the storage
	// backend needs provider credentials. Nil disables the setup flow.
	Credentials *config.Manager

	// UploadDir receives raw uploads before normalization.
	UploadDir string

	// Version is shown on the index page.
	Version string

	// Registry receives the server's metrics collectors. A private
	// registry is created when unset.
	Registry *prometheus.Registry
}

// Server handles all HTTP routes of the logo manager.
type Server struct {
	store     *catalog.Store
	backend   blob.Backend
	cache     *cache.Cache
	creds     *config.Manager
	uploadDir string
	version   string
	metrics   *metrics
	registry  *prometheus.Registry
}

// New validates cfg and returns a ready Server.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil || cfg.Backend == nil || cfg.Cache == nil {
		return nil, fmt.Errorf("store, backend and cache must be configured")
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &Server{
		store:     cfg.Store,
		backend:   cfg.Backend,
		cache:     cfg.Cache,
		creds:     cfg.Credentials,
		uploadDir: cfg.UploadDir,
		version:   cfg.Version,
		metrics:   newMetrics(registry),
		registry:  registry,
	}, nil
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

// errorBody is the uniform JSON error payload.
type errorBody struct {
	Error string `json:"error"`
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename reduces a client-supplied filename to a safe basename.
// It returns "" when nothing usable remains.
func sanitizeFilename(name string) string {
	// Normalize Windows separators so Base strips directories either way.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._ ")
	if name == "." || name == ".." {
		return ""
	}
	return name
}
