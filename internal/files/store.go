// Package files stores uploaded attachments on local disk.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
)

// allowedExtensions is the closed set of accepted upload types.
var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".pdf":  {},
}

// Store writes uploads under a single root directory. Stored names are
// generated, never caller-supplied, so the root cannot be escaped.
type Store struct {
	root     string
	maxBytes int64
}

// NewStore creates the root directory when missing.
func NewStore(root string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("files: create root: %w", err)
	}
	return &Store{root: root, maxBytes: maxBytes}, nil
}

// Save persists the upload under a fresh uuid-based name and returns that
// name. The original name only contributes its extension.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("file type %q not allowed: %w", ext, httpx.ErrValidation)
	}

	name := uuid.NewString() + ext
	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", fmt.Errorf("files: create: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("files: write: %w", err)
	}
	if n > s.maxBytes {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("file exceeds %d bytes: %w", s.maxBytes, httpx.ErrValidation)
	}
	return name, nil
}

// Open returns a stored file by name. Names resolving outside the root are
// reported as missing rather than revealing the layout.
func (s *Store) Open(name string) (*os.File, error) {
	path := filepath.Join(s.root, filepath.Clean("/"+name))
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, httpx.ErrNotFound
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("files: open: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("files: stat: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, httpx.ErrNotFound
	}
	return f, nil
}

// Remove deletes a stored file, ignoring names that are already gone.
func (s *Store) Remove(name string) error {
	f, err := s.Open(name)
	if err != nil {
		if err == httpx.ErrNotFound {
			return nil
		}
		return err
	}
	path := f.Name()
	_ = f.Close()
	return os.Remove(path)
}
