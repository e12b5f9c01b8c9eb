package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"logodepot/internal/catalog"
	"logodepot/internal/picture"
)

// Caps a single multipart request; anything beyond spills to disk.
const maxUploadMemory = 32 << 20

// uploadResult is the per-file outcome: either {message,id,url} or
// {error}.
type uploadResult struct {
	Message string `json:"message,omitempty"`
	ID      int    `json:"id,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No file part"})
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No file part"})
		return
	}

	allEmpty := true
	for _, fh := range files {
		if fh.Filename != "" {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No files selected"})
		return
	}

	// Files are processed strictly in submission order and in isolation:
	// one broken file never aborts the rest of the batch.
	results := make([]uploadResult, 0, len(files))
	succeeded := 0
	for _, fh := range files {
		result := s.processUpload(r.Context(), fh)
		if result.Error == "" {
			succeeded++
			s.metrics.uploadsTotal.WithLabelValues("success").Inc()
		} else {
			s.metrics.uploadsTotal.WithLabelValues("failure").Inc()
		}
		results = append(results, result)
	}

	status := http.StatusOK
	if succeeded == 0 {
		status = http.StatusInternalServerError
	}

	if len(results) == 1 {
		writeJSON(w, status, results[0])
		return
	}
	writeJSON(w, status, results)
}

// processUpload runs a single file through the pipeline: sanitize,
// stage to a temp file, normalize, push to the storage provider and
// record the result in the catalog.
func (s *Server) processUpload(ctx context.Context, fh *multipart.FileHeader) uploadResult {
	name := sanitizeFilename(fh.Filename)
	if name == "" {
		return uploadResult{Error: "Upload rejected: empty or invalid filename"}
	}

	tempPath, err := s.stageUpload(fh)
	if err != nil {
		slog.Error("Unable to stage upload", "name", name, "err", err)
		return uploadResult{Error: fmt.Sprintf("Upload failed for %s: %v", name, err)}
	}
	// The temp file is removed no matter how processing ends.
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Unable to remove temp upload", "path", tempPath, "err", err)
		}
	}()

	img, err := picture.NormalizeFile(tempPath)
	if err != nil {
		slog.Error("Unable to normalize upload", "name", name, "err", err)
		return uploadResult{Error: fmt.Sprintf("Upload failed for %s: %v", name, err)}
	}

	data, err := picture.EncodePNG(img)
	if err != nil {
		slog.Error("Unable to encode normalized image", "name", name, "err", err)
		return uploadResult{Error: fmt.Sprintf("Upload failed for %s: %v", name, err)}
	}

	storedName := strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	obj, err := s.backend.Put(ctx, storedName, data)
	if err != nil {
		slog.Error("Unable to store image at provider", "name", name, "err", err)
		return uploadResult{Error: fmt.Sprintf("Upload failed for %s: %v", name, err)}
	}

	rec, err := s.store.Insert(catalog.Record{
		OriginalName: name,
		URL:          obj.URL,
		PublicID:     obj.Key,
	})
	if err != nil {
		slog.Error("Unable to record uploaded logo", "name", name, "err", err)
		// The remote copy is orphaned now; try to take it back down.
		if delErr := s.backend.Delete(ctx, obj); delErr != nil {
			slog.Warn("Unable to remove orphaned remote image", "key", obj.Key, "err", delErr)
		}
		return uploadResult{Error: fmt.Sprintf("Upload failed for %s: %v", name, err)}
	}

	slog.Info("Logo uploaded", "id", rec.ID, "name", name, "url", rec.URL)
	return uploadResult{Message: "File uploaded", ID: rec.ID, URL: rec.URL}
}

// stageUpload copies the incoming part to a uniquely named temp file in
// the upload directory.
func (s *Server) stageUpload(fh *multipart.FileHeader) (retPath string, retErr error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload part: %w", err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	tempPath := filepath.Join(s.uploadDir, "upload_"+uuid.NewString())
	dst, err := os.Create(tempPath) //nolint:gosec // app-generated unique path
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tempPath, nil
}
