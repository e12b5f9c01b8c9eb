// Package config resolves media-provider credentials. Environment
// variables take priority; a JSON credentials file written by the setup
// form is the fallback and is hot-reloaded when it changes on disk.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Environment variables overriding the credentials file.
const (
	EnvCloudName = "CLOUDINARY_CLOUD_NAME"
	EnvAPIKey    = "CLOUDINARY_API_KEY"
	EnvAPISecret = "CLOUDINARY_API_SECRET"
)

// Credentials is the media-provider account configuration. The JSON field
// names match the credentials file written by earlier deployments.
type Credentials struct {
	CloudName string `json:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `json:"CLOUDINARY_API_KEY"`
	APISecret string `json:"CLOUDINARY_API_SECRET"`
}

func (c Credentials) complete() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Manager caches the file-based credentials and keeps them fresh through
// a filesystem watcher. Resolve is safe for concurrent use.
type Manager struct {
	path    string
	watcher *fsnotify.Watcher

	mu   sync.RWMutex
	file Credentials
}

// NewManager loads the credentials file at path (if present) and starts
// watching its directory for changes. The directory is created if needed.
func NewManager(path string) (*Manager, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	m := &Manager{path: path}
	m.reload()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	// Watch the directory, not the file: editors and the atomic Save
	// below replace the file, which drops a direct file watch.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	m.watcher = watcher

	go m.watch()

	return m, nil
}

func (m *Manager) watch() {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Name != m.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				slog.Debug("Credentials file changed, reloading", "path", m.path, "op", event.Op.String())
				m.reload()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", "err", err)
		}
	}
}

// Resolve returns the active credentials: complete environment variables
// win, otherwise the credentials file. The second return value reports
// whether a complete set was found.
func (m *Manager) Resolve() (Credentials, bool) {
	env := Credentials{
		CloudName: os.Getenv(EnvCloudName),
		APIKey:    os.Getenv(EnvAPIKey),
		APISecret: os.Getenv(EnvAPISecret),
	}
	if env.complete() {
		return env, true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.file, m.file.complete()
}

// Save writes creds to the credentials file and makes them active
// immediately.
func (m *Manager) Save(creds Credentials) error {
	data, err := json.MarshalIndent(creds, "", "    ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".config-*.json")
	if err != nil {
		return fmt.Errorf("create credentials temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close credentials file: %w", err)
	}

	if err := os.Rename(tmp.Name(), m.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace credentials file: %w", err)
	}

	m.mu.Lock()
	m.file = creds
	m.mu.Unlock()

	return nil
}

// Close stops the filesystem watcher.
func (m *Manager) Close() error {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Close()
}

// reload reads the credentials file. A missing file clears the cached
// credentials; a corrupt file is logged and treated the same way.
func (m *Manager) reload() {
	var creds Credentials

	data, err := os.ReadFile(m.path)
	switch {
	case os.IsNotExist(err):
		// No file yet, run unconfigured.

	case err != nil:
		slog.Warn("Unable to read credentials file", "path", m.path, "err", err)

	default:
		if err := json.Unmarshal(data, &creds); err != nil {
			slog.Warn("Credentials file is corrupt, ignoring", "path", m.path, "err", err)
			creds = Credentials{}
		}
	}

	m.mu.Lock()
	m.file = creds
	m.mu.Unlock()
}
