package leads

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Backend moves the raw store document. Read returns fs.ErrNotExist when
// there is nothing stored yet.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, b []byte) error
	Path() string
}

type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Path() string { return f.path }

func (f *FileBackend) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(f.path)
}

// Write replaces the file via a temp file in the same directory so readers
// never see a half-written document.
func (f *FileBackend) Write(ctx context.Context, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path)
}

// MemoryBackend keeps the document in memory. The zero value holds no document.
type MemoryBackend struct {
	mu      sync.Mutex
	data    []byte
	present bool
	writes  int

	// WriteErr, when set, is returned by every Write.
	WriteErr error
}

func NewMemoryBackend(doc []byte) *MemoryBackend {
	m := &MemoryBackend{}
	if doc != nil {
		m.data = append([]byte(nil), doc...)
		m.present = true
	}
	return m
}

func (m *MemoryBackend) Path() string { return "memory" }

func (m *MemoryBackend) Read(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return nil, fs.ErrNotExist
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryBackend) Write(ctx context.Context, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.data = append([]byte(nil), b...)
	m.present = true
	m.writes++
	return nil
}

// Bytes returns the stored document, or nil when nothing was stored.
func (m *MemoryBackend) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return nil
	}
	return append([]byte(nil), m.data...)
}

// Writes counts successful writes.
func (m *MemoryBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
