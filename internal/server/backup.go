package server

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"logodepot/internal/blob"
)

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(records) == 0 {
		http.Error(w, "No logos to back up.", http.StatusNotFound)
		return
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	// A record whose image cannot be fetched is logged and skipped; the
	// archive as a whole still succeeds.
	for _, rec := range records {
		obj := blob.Object{URL: blob.CanonicalPNGURL(rec.URL), Key: rec.PublicID}
		data, err := s.backend.Resolve(r.Context(), obj)
		if err != nil {
			slog.Error("Unable to fetch image for backup, skipping", "id", rec.ID, "url", rec.URL, "err", err)
			continue
		}

		baseName := strings.TrimSuffix(rec.OriginalName, filepath.Ext(rec.OriginalName))
		entry, err := zw.Create(fmt.Sprintf("%d_%s.png", rec.ID, baseName))
		if err != nil {
			slog.Error("Unable to create archive entry, skipping", "id", rec.ID, "err", err)
			continue
		}
		if _, err := entry.Write(data); err != nil {
			http.Error(w, fmt.Sprintf("building archive: %v", err), http.StatusInternalServerError)
			return
		}
	}

	if err := zw.Close(); err != nil {
		http.Error(w, fmt.Sprintf("finishing archive: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.backupsTotal.Inc()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="tv_logos_backup.zip"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Unable to write backup response", "err", err)
	}
}
