package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local is a Backend that keeps images on the local filesystem. It is the
// zero-configuration deployment variant: no credentials, no network, and
// Resolve reads straight from disk. Stored objects have no public URL, so
// clients are always served through the application itself.
type Local struct {
	dir string
}

// NewLocal creates a Local backend rooted at dir.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Put(_ context.Context, name string, data []byte) (Object, error) {
	// A random prefix keeps repeated uploads of the same filename apart.
	key := uuid.NewString() + "_" + filepath.Base(name)

	if err := os.WriteFile(filepath.Join(l.dir, key), data, 0o644); err != nil {
		return Object{}, fmt.Errorf("write image file: %w", err)
	}
	return Object{Key: key}, nil
}

func (l *Local) Delete(_ context.Context, obj Object) error {
	if obj.Key == "" {
		return nil
	}

	err := os.Remove(l.objectPath(obj.Key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}

func (l *Local) Resolve(_ context.Context, obj Object) ([]byte, error) {
	data, err := os.ReadFile(l.objectPath(obj.Key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("read image file %q: %w", obj.Key, ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("read image file: %w", err)
	}
	return data, nil
}

// objectPath confines keys to the storage directory even if a stored
// locator was tampered with.
func (l *Local) objectPath(key string) string {
	key = filepath.Base(strings.ReplaceAll(key, "\\", "/"))
	return filepath.Join(l.dir, key)
}
