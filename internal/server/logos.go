package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"logodepot/internal/blob"
)

// logoInfo is one entry of the GET /api/logos response.
type logoInfo struct {
	ID           int    `json:"id"`
	OriginalName string `json:"original_name"`
	URL          string `json:"url"`
}

// publicURL is where clients can fetch the logo: the provider URL when
// one exists, otherwise the app's own cache route.
func publicURL(id int, url string) string {
	if url != "" {
		return url
	}
	return fmt.Sprintf("/cached-image/%d", id)
}

func (s *Server) handleListLogos(w http.ResponseWriter, _ *http.Request) {
	records, err := s.store.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	logos := make([]logoInfo, 0, len(records))
	for _, rec := range records {
		logos = append(logos, logoInfo{
			ID:           rec.ID,
			OriginalName: rec.OriginalName,
			URL:          publicURL(rec.ID, rec.URL),
		})
	}

	writeJSON(w, http.StatusOK, logos)
}

func (s *Server) handleDeleteLogo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Logo not found"})
		return
	}

	rec, ok := s.store.Get(id)
	if !ok {
		s.metrics.deletesTotal.WithLabelValues("not_found").Inc()
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Logo not found"})
		return
	}

	removed, err := s.store.Remove(id)
	if err != nil {
		s.metrics.deletesTotal.WithLabelValues("failure").Inc()
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	if !removed {
		// The record vanished between Get and Remove.
		s.metrics.deletesTotal.WithLabelValues("not_found").Inc()
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Logo not found"})
		return
	}

	// Remote deletion is best-effort: a dead provider must never leave
	// the local catalog pointing at an image the user asked to delete.
	if err := s.backend.Delete(r.Context(), blob.Object{URL: rec.URL, Key: rec.PublicID}); err != nil {
		slog.Error("Unable to delete image at provider, continuing", "id", id, "key", rec.PublicID, "err", err)
	}

	// The cache entry goes last, after the record is unreachable, so a
	// read racing this delete cannot refill it from a still-live record.
	if err := s.cache.Remove(id); err != nil {
		slog.Error("Unable to delete cache entry, continuing", "id", id, "err", err)
	}

	slog.Info("Logo deleted", "id", id, "name", rec.OriginalName)
	s.metrics.deletesTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logo deleted"})
}
