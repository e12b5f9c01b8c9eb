package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"logodepot/internal/blob"
	"logodepot/internal/picture"
)

func (s *Server) handleCachedImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Image not found in database.", http.StatusNotFound)
		return
	}

	// A cache hit is served as-is: no catalog lookup, no freshness check.
	if data, ok := s.cache.Get(id); ok {
		s.metrics.cacheLookupsTotal.WithLabelValues("hit").Inc()
		w.Header().Set("X-Cache", "HIT")
		serveImage(w, data)
		return
	}

	rec, ok := s.store.Get(id)
	if !ok || (rec.URL == "" && rec.PublicID == "") {
		s.metrics.cacheLookupsTotal.WithLabelValues("not_found").Inc()
		http.Error(w, "Image not found in database.", http.StatusNotFound)
		return
	}

	obj := blob.Object{URL: rec.URL, Key: rec.PublicID}
	data, hit, err := s.cache.Fetch(id, func() ([]byte, error) {
		return s.backend.Resolve(r.Context(), obj)
	})
	if err != nil {
		slog.Error("Unable to fetch image from provider", "id", id, "url", rec.URL, "err", err)

		// Degrade instead of failing: when the image has a public URL the
		// client can fetch it from the provider directly.
		if rec.URL != "" {
			s.metrics.cacheLookupsTotal.WithLabelValues("degraded").Inc()
			http.Redirect(w, r, rec.URL, http.StatusFound)
			return
		}

		s.metrics.cacheLookupsTotal.WithLabelValues("error").Inc()
		http.Error(w, "Image not found in database.", http.StatusNotFound)
		return
	}

	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	s.metrics.cacheLookupsTotal.WithLabelValues(outcome).Inc()

	w.Header().Set("X-Cache", map[bool]string{true: "HIT", false: "MISS"}[hit])
	serveImage(w, data)
}

func serveImage(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write image response", "err", err)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	if format != "png" && format != "webp" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid format"})
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Logo not found"})
		return
	}

	rec, ok := s.store.Get(id)
	if !ok || (rec.URL == "" && rec.PublicID == "") {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Logo not found"})
		return
	}

	obj := blob.Object{URL: rec.URL, Key: rec.PublicID}
	data, _, err := s.cache.Fetch(id, func() ([]byte, error) {
		return s.backend.Resolve(r.Context(), obj)
	})
	if errors.Is(err, blob.ErrNotExist) {
		slog.Error("Backing image is gone at provider", "id", id, "key", rec.PublicID)
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Logo not found"})
		return
	}
	if err != nil {
		slog.Error("Unable to fetch image for download", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Unable to fetch stored image"})
		return
	}

	converted, contentType, err := picture.Reencode(data, format)
	if err != nil {
		slog.Error("Unable to convert image", "id", id, "format", format, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Unable to convert stored image"})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%d.%s", id, format)))
	w.Header().Set("Content-Length", strconv.Itoa(len(converted)))
	if _, err := w.Write(converted); err != nil {
		slog.Error("Unable to write download response", "err", err)
	}
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	removed := s.cache.Clear()
	slog.Info("Image cache cleared", "removed", removed)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
